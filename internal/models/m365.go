package models

// Microsoft 365 resource kinds.
const (
	ResourceKindM365ConditionalAccessPolicy = "M365_CONDITIONAL_ACCESS_POLICY"
)

// Conditional access policy states as reported by the Graph API.
const (
	M365PolicyStateEnabled    = "enabled"
	M365PolicyStateDisabled   = "disabled"
	M365PolicyStateReportOnly = "enabledForReportingButNotEnforced"
)

// M365ConditionalAccessPolicy is the normalized snapshot of an Entra ID
// conditional access policy.
type M365ConditionalAccessPolicy struct {
	ID               string `json:"id"`
	DisplayName      string `json:"display_name"`
	State            string `json:"state"`
	BlocksLegacyAuth bool   `json:"blocks_legacy_auth"`
	CollectionError  string `json:"collection_error,omitempty"`
}

func (p M365ConditionalAccessPolicy) ResourceID() string { return p.ID }
func (p M365ConditionalAccessPolicy) ResourceKind() string {
	return ResourceKindM365ConditionalAccessPolicy
}
func (p M365ConditionalAccessPolicy) CollectionFailed() string { return p.CollectionError }
