package m365

import (
	"testing"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

func findCheck(t *testing.T, policyID string) policy.Check {
	t.Helper()
	for _, c := range ConditionalAccessChecks() {
		if c.PolicyID == policyID {
			return c
		}
	}
	t.Fatalf("check %q not registered", policyID)
	return policy.Check{}
}

func m365Acct() policy.AccountContext {
	return policy.AccountContext{Provider: models.ProviderM365, AccountID: "tenant-1"}
}

func TestCAPolicyNotEnforced(t *testing.T) {
	c := findCheck(t, "M365_CA_Policy_Not_Enforced")

	t.Run("enabled policy passes", func(t *testing.T) {
		p := models.M365ConditionalAccessPolicy{
			ID: "p1", DisplayName: "Require MFA", State: models.M365PolicyStateEnabled,
		}
		if d, _ := c.Func(p, m365Acct()); d != nil {
			t.Errorf("expected nil draft, got %+v", d)
		}
	})

	for _, state := range []string{models.M365PolicyStateDisabled, models.M365PolicyStateReportOnly} {
		t.Run("state "+state, func(t *testing.T) {
			p := models.M365ConditionalAccessPolicy{ID: "p1", DisplayName: "Require MFA", State: state}
			d, err := c.Func(p, m365Acct())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d == nil || d.Severity != models.SeverityMedium {
				t.Errorf("expected MEDIUM draft, got %+v", d)
			}
			if d.Details["state"] != state {
				t.Errorf("state detail = %v; want %s", d.Details["state"], state)
			}
		})
	}
}

func TestCALegacyAuthAllowed(t *testing.T) {
	c := findCheck(t, "M365_Legacy_Auth_Allowed")

	t.Run("enabled policy blocking legacy auth passes", func(t *testing.T) {
		p := models.M365ConditionalAccessPolicy{
			ID: "p1", State: models.M365PolicyStateEnabled, BlocksLegacyAuth: true,
		}
		if d, _ := c.Func(p, m365Acct()); d != nil {
			t.Errorf("expected nil draft, got %+v", d)
		}
	})

	t.Run("enabled policy without legacy auth block is HIGH", func(t *testing.T) {
		p := models.M365ConditionalAccessPolicy{ID: "p1", State: models.M365PolicyStateEnabled}
		d, _ := c.Func(p, m365Acct())
		if d == nil || d.Severity != models.SeverityHigh {
			t.Errorf("expected HIGH draft, got %+v", d)
		}
	})

	t.Run("disabled policy is covered by the enforcement check instead", func(t *testing.T) {
		p := models.M365ConditionalAccessPolicy{ID: "p1", State: models.M365PolicyStateDisabled}
		if d, _ := c.Func(p, m365Acct()); d != nil {
			t.Errorf("expected nil draft, got %+v", d)
		}
	})
}
