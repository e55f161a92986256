package models

// Google Workspace resource kinds.
const (
	ResourceKindGoogleWorkspaceUser = "GOOGLE_WORKSPACE_USER"
)

// GoogleWorkspaceUser is the normalized snapshot of a Workspace directory
// user. TwoSVEnrolled reflects isEnrolledIn2Sv from the Directory API.
type GoogleWorkspaceUser struct {
	Email           string `json:"email"`
	IsAdmin         bool   `json:"is_admin"`
	Suspended       bool   `json:"suspended"`
	TwoSVEnrolled   bool   `json:"two_sv_enrolled"`
	CollectionError string `json:"collection_error,omitempty"`
}

func (u GoogleWorkspaceUser) ResourceID() string       { return u.Email }
func (u GoogleWorkspaceUser) ResourceKind() string     { return ResourceKindGoogleWorkspaceUser }
func (u GoogleWorkspaceUser) CollectionFailed() string { return u.CollectionError }
