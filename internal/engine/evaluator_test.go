package engine

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

func passingCheck(id string) policy.Check {
	c := policy.Check{PolicyID: id, Title: id, Severity: models.SeverityLow}
	c.Func = func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
		return c.NewDraft(res, acct), nil
	}
	return c
}

func failingCheck(id string) policy.Check {
	return policy.Check{
		PolicyID: id, Title: id, Severity: models.SeverityLow,
		Func: func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
			return nil, errors.New("boom")
		},
	}
}

func panickingCheck(id string) policy.Check {
	return policy.Check{
		PolicyID: id, Title: id, Severity: models.SeverityLow,
		Func: func(res models.Resource, acct policy.AccountContext) (*models.AlertDraft, error) {
			panic("unexpected variant")
		},
	}
}

func newTestEvaluator(checks ...policy.Check) *Evaluator {
	catalog := policy.NewCatalog()
	catalog.Register("aws", "s3", checks...)
	return NewEvaluator(catalog, zerolog.Nop())
}

func bucket(name string) models.S3Bucket {
	var b models.S3Bucket
	b.Name = name
	return b
}

func TestEvaluateNoChecksForPair(t *testing.T) {
	e := newTestEvaluator(passingCheck("A"))
	drafts := e.Evaluate("aws", "lambda", []models.Resource{bucket("b")}, policy.AccountContext{})
	if drafts != nil {
		t.Errorf("expected nil drafts for an unregistered service, got %d", len(drafts))
	}
}

func TestEvaluateSkipsCollectionFailures(t *testing.T) {
	e := newTestEvaluator(passingCheck("A"))

	failed := bucket("broken")
	failed.CollectionError = "throttled"
	drafts := e.Evaluate("aws", "s3", []models.Resource{failed, bucket("ok")}, policy.AccountContext{})

	if len(drafts) != 1 {
		t.Fatalf("got %d drafts; want 1", len(drafts))
	}
	if drafts[0].ResourceID != "ok" {
		t.Errorf("draft for %q; want ok", drafts[0].ResourceID)
	}
}

func TestEvaluateCheckFailureIsolation(t *testing.T) {
	// A failing check must not suppress results from the checks around it.
	e := newTestEvaluator(passingCheck("A"), failingCheck("B"), passingCheck("C"))

	drafts := e.Evaluate("aws", "s3", []models.Resource{bucket("b1")}, policy.AccountContext{})
	if len(drafts) != 3 {
		t.Fatalf("got %d drafts; want 3 (two findings plus one engine error)", len(drafts))
	}

	if drafts[0].PolicyID != "A" || drafts[2].PolicyID != "C" {
		t.Errorf("surrounding checks not preserved: %s, %s", drafts[0].PolicyID, drafts[2].PolicyID)
	}

	errDraft := drafts[1]
	if errDraft.PolicyID != PolicyEngineErrorID {
		t.Fatalf("PolicyID = %q; want %s", errDraft.PolicyID, PolicyEngineErrorID)
	}
	if errDraft.Severity != models.SeverityMedium {
		t.Errorf("Severity = %s; want MEDIUM", errDraft.Severity)
	}
	if errDraft.Details["failed_policy_id"] != "B" {
		t.Errorf("failed_policy_id = %v; want B", errDraft.Details["failed_policy_id"])
	}
	if errDraft.Details["error"] != "boom" {
		t.Errorf("error detail = %v; want boom", errDraft.Details["error"])
	}
}

func TestEvaluatePanicIsolation(t *testing.T) {
	e := newTestEvaluator(panickingCheck("B"), passingCheck("C"))

	drafts := e.Evaluate("aws", "s3", []models.Resource{bucket("b1")}, policy.AccountContext{})
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts; want 2", len(drafts))
	}
	if drafts[0].PolicyID != PolicyEngineErrorID {
		t.Errorf("PolicyID = %q; want %s", drafts[0].PolicyID, PolicyEngineErrorID)
	}
	if drafts[1].PolicyID != "C" {
		t.Errorf("check after the panic did not run: %s", drafts[1].PolicyID)
	}
}

func TestEvaluateMultipleResources(t *testing.T) {
	e := newTestEvaluator(passingCheck("A"), passingCheck("B"))

	drafts := e.Evaluate("aws", "s3",
		[]models.Resource{bucket("b1"), bucket("b2")}, policy.AccountContext{})
	if len(drafts) != 4 {
		t.Fatalf("got %d drafts; want 4", len(drafts))
	}
	// Catalog order within each resource, resources in input order.
	want := []struct{ res, pol string }{
		{"b1", "A"}, {"b1", "B"}, {"b2", "A"}, {"b2", "B"},
	}
	for i, w := range want {
		if drafts[i].ResourceID != w.res || drafts[i].PolicyID != w.pol {
			t.Errorf("drafts[%d] = (%s, %s); want (%s, %s)",
				i, drafts[i].ResourceID, drafts[i].PolicyID, w.res, w.pol)
		}
	}
}
