package aws

import (
	"testing"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

func findCheck(t *testing.T, checks []policy.Check, policyID string) policy.Check {
	t.Helper()
	for _, c := range checks {
		if c.PolicyID == policyID {
			return c
		}
	}
	t.Fatalf("check %q not registered", policyID)
	return policy.Check{}
}

func testAcct() policy.AccountContext {
	return policy.AccountContext{
		Provider:  models.ProviderAWS,
		AccountID: "111122223333",
		Region:    "us-east-1",
	}
}

// mustEvaluate runs the check and fails the test on an unexpected error.
func mustEvaluate(t *testing.T, c policy.Check, res models.Resource, acct policy.AccountContext) *models.AlertDraft {
	t.Helper()
	d, err := c.Func(res, acct)
	if err != nil {
		t.Fatalf("%s returned error: %v", c.PolicyID, err)
	}
	return d
}
