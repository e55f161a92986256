package models

import "fmt"

// GCP resource kinds.
const (
	ResourceKindGCPIAMBinding = "GCP_IAM_BINDING"
	ResourceKindGCSBucket     = "GCS_BUCKET"
	ResourceKindGCPFirewall   = "GCP_FIREWALL"
)

// GCPIAMBinding is one role binding from a project IAM policy.
type GCPIAMBinding struct {
	ProjectID       string   `json:"project_id"`
	Role            string   `json:"role"`
	Members         []string `json:"members"`
	CollectionError string   `json:"collection_error,omitempty"`
}

func (b GCPIAMBinding) ResourceID() string {
	return fmt.Sprintf("%s/%s", b.ProjectID, b.Role)
}
func (b GCPIAMBinding) ResourceKind() string     { return ResourceKindGCPIAMBinding }
func (b GCPIAMBinding) CollectionFailed() string { return b.CollectionError }

// GCSBucket is the normalized snapshot of a Cloud Storage bucket.
// PublicAccess is true when the bucket IAM policy grants access to allUsers
// or allAuthenticatedUsers.
type GCSBucket struct {
	Name              string `json:"name"`
	Location          string `json:"location,omitempty"`
	PublicAccess      bool   `json:"public_access"`
	UniformAccess     bool   `json:"uniform_access"`
	VersioningEnabled bool   `json:"versioning_enabled"`
	CollectionError   string `json:"collection_error,omitempty"`
}

func (b GCSBucket) ResourceID() string       { return b.Name }
func (b GCSBucket) ResourceKind() string     { return ResourceKindGCSBucket }
func (b GCSBucket) CollectionFailed() string { return b.CollectionError }

// GCPFirewall is the normalized snapshot of a VPC firewall rule.
// AllowedPorts lists the TCP ports the rule opens; SourceRanges are the
// permitted ingress CIDRs.
type GCPFirewall struct {
	Name            string   `json:"name"`
	Network         string   `json:"network,omitempty"`
	Direction       string   `json:"direction,omitempty"`
	Disabled        bool     `json:"disabled"`
	SourceRanges    []string `json:"source_ranges,omitempty"`
	AllowedPorts    []int    `json:"allowed_ports,omitempty"`
	CollectionError string   `json:"collection_error,omitempty"`
}

func (f GCPFirewall) ResourceID() string       { return f.Name }
func (f GCPFirewall) ResourceKind() string     { return ResourceKindGCPFirewall }
func (f GCPFirewall) CollectionFailed() string { return f.CollectionError }
