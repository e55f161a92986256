package gcp

import (
	"strings"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// External principals that make a binding world-accessible.
var externalPrincipals = map[string]struct{}{
	"allUsers":              {},
	"allAuthenticatedUsers": {},
}

// IAMChecks returns the checks evaluated against gcp/iam resources.
func IAMChecks() []policy.Check {
	return []policy.Check{
		iamExternalPrincipalBinding(),
	}
}

// privilegedRole reports whether role grants broad write or administrative
// access. Owner, editor, and any *Admin role qualify.
func privilegedRole(role string) bool {
	switch role {
	case "roles/owner", "roles/editor":
		return true
	}
	return strings.Contains(strings.ToLower(role), "admin")
}

// iamExternalPrincipalBinding flags project IAM bindings that grant a role to
// allUsers or allAuthenticatedUsers. Privileged roles are rated CRITICAL;
// read-only roles such as roles/viewer are downgraded to HIGH.
func iamExternalPrincipalBinding() policy.Check {
	c := policy.Check{
		PolicyID:       "GCP_IAM_External_Principal_Binding",
		Title:          "Project IAM binding grants access to external principals",
		Description:    "A project-level IAM binding grants a role to allUsers or allAuthenticatedUsers, making the project accessible outside the organization.",
		Severity:       models.SeverityCritical,
		Recommendation: "Remove allUsers/allAuthenticatedUsers from the binding and grant access to specific identities or groups.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		b := res.(models.GCPIAMBinding)
		var external []string
		for _, m := range b.Members {
			if _, ok := externalPrincipals[m]; ok {
				external = append(external, m)
			}
		}
		if len(external) == 0 {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{
			"project_id": b.ProjectID,
			"role":       b.Role,
			"members":    external,
		}
		if !privilegedRole(b.Role) {
			d.Severity = models.SeverityHigh
		}
		return d, nil
	}
	return c
}
