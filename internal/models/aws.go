package models

import "time"

// AWS resource kinds.
const (
	ResourceKindS3Bucket    = "S3_BUCKET"
	ResourceKindEC2Instance = "EC2_INSTANCE"
	ResourceKindIAMUser     = "IAM_USER"
	ResourceKindRDSInstance = "RDS_INSTANCE"
)

// S3Bucket is the normalized snapshot of an AWS S3 bucket.
// ACL.IsPublic is true when the bucket ACL grants read access to AllUsers or
// AuthenticatedUsers; PolicyIsPublic is true when GetBucketPolicyStatus
// reports IsPublic. Versioning.Status is the raw API value ("Enabled",
// "Suspended", or empty when versioning was never configured).
type S3Bucket struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	ACL    struct {
		IsPublic bool `json:"is_public"`
	} `json:"acl"`
	PolicyIsPublic bool `json:"policy_is_public"`
	Versioning     struct {
		Status string `json:"status"`
	} `json:"versioning"`
	Logging struct {
		Enabled bool `json:"enabled"`
	} `json:"logging"`
	Encryption struct {
		Enabled bool `json:"enabled"`
	} `json:"encryption"`
	CollectionError string `json:"collection_error,omitempty"`
}

func (b S3Bucket) ResourceID() string       { return b.Name }
func (b S3Bucket) ResourceKind() string     { return ResourceKindS3Bucket }
func (b S3Bucket) CollectionFailed() string { return b.CollectionError }

// EC2Instance is the normalized snapshot of an EC2 instance.
// OpenIngressPorts lists ports reachable from 0.0.0.0/0 through any attached
// security group, pre-resolved by the collector.
type EC2Instance struct {
	InstanceID       string `json:"instance_id"`
	Region           string `json:"region,omitempty"`
	PublicIP         string `json:"public_ip,omitempty"`
	IMDSv1Allowed    bool   `json:"imdsv1_allowed"`
	OpenIngressPorts []int  `json:"open_ingress_ports,omitempty"`
	CollectionError  string `json:"collection_error,omitempty"`
}

func (i EC2Instance) ResourceID() string       { return i.InstanceID }
func (i EC2Instance) ResourceKind() string     { return ResourceKindEC2Instance }
func (i EC2Instance) CollectionFailed() string { return i.CollectionError }

// AccessKey is one IAM access key belonging to a user.
// LastUsedAt is nil when the key has never been used.
type AccessKey struct {
	KeyID      string     `json:"key_id"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// IAMUser is the normalized snapshot of an IAM user. IsRoot is supplied
// explicitly by the collector; the engine never derives root identity from
// the username or user id.
type IAMUser struct {
	UserName         string      `json:"user_name"`
	UserID           string      `json:"user_id,omitempty"`
	IsRoot           bool        `json:"is_root"`
	MFAEnabled       bool        `json:"mfa_enabled"`
	HasConsoleAccess bool        `json:"has_console_access"`
	AccessKeys       []AccessKey `json:"access_keys,omitempty"`
	CollectionError  string      `json:"collection_error,omitempty"`
}

func (u IAMUser) ResourceID() string       { return u.UserName }
func (u IAMUser) ResourceKind() string     { return ResourceKindIAMUser }
func (u IAMUser) CollectionFailed() string { return u.CollectionError }

// RDSInstance is the normalized snapshot of an RDS database instance.
type RDSInstance struct {
	InstanceID          string `json:"instance_id"`
	Region              string `json:"region,omitempty"`
	Engine              string `json:"engine,omitempty"`
	BackupRetentionDays int    `json:"backup_retention_days"`
	StorageEncrypted    bool   `json:"storage_encrypted"`
	PubliclyAccessible  bool   `json:"publicly_accessible"`
	CollectionError     string `json:"collection_error,omitempty"`
}

func (d RDSInstance) ResourceID() string       { return d.InstanceID }
func (d RDSInstance) ResourceKind() string     { return ResourceKindRDSInstance }
func (d RDSInstance) CollectionFailed() string { return d.CollectionError }
