package models

import "fmt"

// Azure resource kinds.
const (
	ResourceKindAzureStorageAccount = "AZURE_STORAGE_ACCOUNT"
	ResourceKindAzureNSGRule        = "AZURE_NSG_RULE"
)

// AzureStorageAccount is the normalized snapshot of a storage account.
type AzureStorageAccount struct {
	Name                  string `json:"name"`
	ResourceGroup         string `json:"resource_group,omitempty"`
	AllowBlobPublicAccess bool   `json:"allow_blob_public_access"`
	HTTPSOnly             bool   `json:"https_only"`
	MinimumTLSVersion     string `json:"minimum_tls_version,omitempty"`
	CollectionError       string `json:"collection_error,omitempty"`
}

func (a AzureStorageAccount) ResourceID() string       { return a.Name }
func (a AzureStorageAccount) ResourceKind() string     { return ResourceKindAzureStorageAccount }
func (a AzureStorageAccount) CollectionFailed() string { return a.CollectionError }

// AzureNSGRule is one inbound rule of a network security group.
// SourcePrefix carries the raw prefix; "*", "Internet" and "0.0.0.0/0" all
// mean any source.
type AzureNSGRule struct {
	NSGName         string `json:"nsg_name"`
	RuleName        string `json:"rule_name"`
	Direction       string `json:"direction"`
	Access          string `json:"access"`
	Port            int    `json:"port"`
	SourcePrefix    string `json:"source_prefix"`
	CollectionError string `json:"collection_error,omitempty"`
}

func (r AzureNSGRule) ResourceID() string {
	return fmt.Sprintf("%s/%s", r.NSGName, r.RuleName)
}
func (r AzureNSGRule) ResourceKind() string     { return ResourceKindAzureNSGRule }
func (r AzureNSGRule) CollectionFailed() string { return r.CollectionError }
