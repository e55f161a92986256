package gcp

import (
	"testing"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

func externalBindingCheck(t *testing.T) policy.Check {
	t.Helper()
	for _, c := range IAMChecks() {
		if c.PolicyID == "GCP_IAM_External_Principal_Binding" {
			return c
		}
	}
	t.Fatal("GCP_IAM_External_Principal_Binding not registered")
	return policy.Check{}
}

func gcpAcct() policy.AccountContext {
	return policy.AccountContext{Provider: models.ProviderGCP, AccountID: "proj-123"}
}

func TestIAMExternalPrincipalBinding(t *testing.T) {
	c := externalBindingCheck(t)

	t.Run("internal members only is not flagged", func(t *testing.T) {
		b := models.GCPIAMBinding{
			ProjectID: "proj-123",
			Role:      "roles/owner",
			Members:   []string{"user:alice@example.com", "group:ops@example.com"},
		}
		d, err := c.Func(b, gcpAcct())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != nil {
			t.Errorf("expected nil draft, got %+v", d)
		}
	})

	t.Run("allUsers on a privileged role is CRITICAL", func(t *testing.T) {
		for _, role := range []string{"roles/owner", "roles/editor", "roles/storage.admin"} {
			b := models.GCPIAMBinding{
				ProjectID: "proj-123",
				Role:      role,
				Members:   []string{"allUsers"},
			}
			d, err := c.Func(b, gcpAcct())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d == nil {
				t.Fatalf("role %s: expected a draft", role)
			}
			if d.Severity != models.SeverityCritical {
				t.Errorf("role %s: Severity = %s; want CRITICAL", role, d.Severity)
			}
		}
	})

	t.Run("allAuthenticatedUsers on a read-only role is HIGH", func(t *testing.T) {
		b := models.GCPIAMBinding{
			ProjectID: "proj-123",
			Role:      "roles/viewer",
			Members:   []string{"allAuthenticatedUsers", "user:alice@example.com"},
		}
		d, err := c.Func(b, gcpAcct())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d == nil {
			t.Fatal("expected a draft")
		}
		if d.Severity != models.SeverityHigh {
			t.Errorf("Severity = %s; want HIGH", d.Severity)
		}
		members, _ := d.Details["members"].([]string)
		if len(members) != 1 || members[0] != "allAuthenticatedUsers" {
			t.Errorf("members detail = %v; want only allAuthenticatedUsers", d.Details["members"])
		}
	})
}

func TestPrivilegedRole(t *testing.T) {
	cases := map[string]bool{
		"roles/owner":          true,
		"roles/editor":         true,
		"roles/storage.admin":  true,
		"roles/compute.Admin":  true,
		"roles/viewer":         false,
		"roles/storage.viewer": false,
	}
	for role, want := range cases {
		if got := privilegedRole(role); got != want {
			t.Errorf("privilegedRole(%q) = %v; want %v", role, got, want)
		}
	}
}
