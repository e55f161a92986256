package models

// Huawei Cloud resource kinds.
const (
	ResourceKindHuaweiOBSBucket = "HUAWEI_OBS_BUCKET"
)

// HuaweiOBSBucket is the normalized snapshot of an OBS bucket.
// PublicRead/PublicWrite reflect ACL grants to the Everyone group.
type HuaweiOBSBucket struct {
	Name              string `json:"name"`
	Region            string `json:"region,omitempty"`
	PublicRead        bool   `json:"public_read"`
	PublicWrite       bool   `json:"public_write"`
	VersioningEnabled bool   `json:"versioning_enabled"`
	LoggingEnabled    bool   `json:"logging_enabled"`
	CollectionError   string `json:"collection_error,omitempty"`
}

func (b HuaweiOBSBucket) ResourceID() string       { return b.Name }
func (b HuaweiOBSBucket) ResourceKind() string     { return ResourceKindHuaweiOBSBucket }
func (b HuaweiOBSBucket) CollectionFailed() string { return b.CollectionError }
