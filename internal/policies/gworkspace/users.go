// Package gworkspace provides the Google Workspace policy pack.
package gworkspace

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// Register wires all Google Workspace checks into the catalog.
func Register(c *policy.Catalog) {
	c.Register("google_workspace", "users", UserChecks()...)
}

// UserChecks returns the checks evaluated against google_workspace/users
// resources. Suspended users are never flagged.
func UserChecks() []policy.Check {
	return []policy.Check{
		admin2SVDisabled(),
		user2SVDisabled(),
	}
}

// admin2SVDisabled flags super admins without 2-step verification.
func admin2SVDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "GWS_Admin_2SV_Disabled",
		Title:          "Workspace admin without 2-step verification",
		Description:    "An administrator account is not enrolled in 2-step verification; a phished admin password compromises the whole domain.",
		Severity:       models.SeverityCritical,
		Recommendation: "Enforce 2-step verification for all admin accounts, preferably with security keys.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		u := res.(models.GoogleWorkspaceUser)
		if u.Suspended || !u.IsAdmin || u.TwoSVEnrolled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"user": u.Email}
		return d, nil
	}
	return c
}

// user2SVDisabled flags regular users without 2-step verification.
func user2SVDisabled() policy.Check {
	c := policy.Check{
		PolicyID:       "GWS_User_2SV_Disabled",
		Title:          "Workspace user without 2-step verification",
		Description:    "The user account is not enrolled in 2-step verification.",
		Severity:       models.SeverityMedium,
		Recommendation: "Enforce 2-step verification for the organizational unit.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		u := res.(models.GoogleWorkspaceUser)
		if u.Suspended || u.IsAdmin || u.TwoSVEnrolled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"user": u.Email}
		return d, nil
	}
	return c
}
