package models

import "time"

// Provider identifiers accepted in analysis requests.
const (
	ProviderAWS             = "aws"
	ProviderGCP             = "gcp"
	ProviderAzure           = "azure"
	ProviderHuawei          = "huawei"
	ProviderM365            = "m365"
	ProviderGoogleWorkspace = "google_workspace"
)

// Resource is a provider-normalized configuration snapshot of one cloud
// resource. Concrete variants are a closed set, one per (provider, service)
// pair; collectors produce them and the evaluator consumes them read-only.
//
// A resource whose CollectionFailed returns a non-empty message is excluded
// from evaluation entirely: an upstream collection failure must not produce
// false positives or false negatives.
type Resource interface {
	// ResourceID returns the provider-native identifier (name, ARN, id).
	ResourceID() string

	// ResourceKind returns the stable resource kind label (e.g. "S3_BUCKET").
	ResourceKind() string

	// CollectionFailed returns the collector's error message, or "" when the
	// snapshot was collected successfully.
	CollectionFailed() string
}

// Asset is the lightweight inventory record upserted for every resource seen
// in an analysis request. Keyed by AssetID, last-write-wins. Consumed by
// attack-path analysis, not by the evaluator.
type Asset struct {
	AssetID       string    `json:"asset_id"`
	AssetType     string    `json:"asset_type"`
	Provider      string    `json:"provider"`
	AccountID     string    `json:"account_id,omitempty"`
	Region        string    `json:"region,omitempty"`
	Configuration []byte    `json:"configuration,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
