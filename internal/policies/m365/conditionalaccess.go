// Package m365 provides the Microsoft 365 policy pack.
package m365

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// Register wires all Microsoft 365 checks into the catalog.
func Register(c *policy.Catalog) {
	c.Register("m365", "conditional_access", ConditionalAccessChecks()...)
}

// ConditionalAccessChecks returns the checks evaluated against
// m365/conditional_access resources.
func ConditionalAccessChecks() []policy.Check {
	return []policy.Check{
		caPolicyNotEnforced(),
		caLegacyAuthAllowed(),
	}
}

// caPolicyNotEnforced flags conditional access policies that exist but are
// disabled or stuck in report-only mode.
func caPolicyNotEnforced() policy.Check {
	c := policy.Check{
		PolicyID:       "M365_CA_Policy_Not_Enforced",
		Title:          "Conditional access policy not enforced",
		Description:    "The conditional access policy is disabled or in report-only mode, so the controls it defines are not applied to sign-ins.",
		Severity:       models.SeverityMedium,
		Recommendation: "Review the policy and set its state to enabled, or delete it if no longer needed.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		p := res.(models.M365ConditionalAccessPolicy)
		if p.State == models.M365PolicyStateEnabled {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"policy": p.DisplayName, "state": p.State}
		return d, nil
	}
	return c
}

// caLegacyAuthAllowed flags enabled policies that do not block legacy
// authentication protocols. Legacy auth bypasses MFA entirely.
func caLegacyAuthAllowed() policy.Check {
	c := policy.Check{
		PolicyID:       "M365_Legacy_Auth_Allowed",
		Title:          "Conditional access does not block legacy authentication",
		Description:    "The policy does not block legacy authentication clients; basic-auth protocols such as IMAP/SMTP bypass MFA.",
		Severity:       models.SeverityHigh,
		Recommendation: "Add a condition blocking legacy authentication clients, or create a dedicated block policy.",
	}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		p := res.(models.M365ConditionalAccessPolicy)
		if p.State != models.M365PolicyStateEnabled || p.BlocksLegacyAuth {
			return nil, nil
		}
		d := c.NewDraft(res, acct)
		d.Details = map[string]any{"policy": p.DisplayName}
		return d, nil
	}
	return c
}
