package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
)

// PolicyEngineErrorID is the policy ID stamped on synthetic drafts produced
// when a check fails, so operators can detect broken rules instead of
// silently losing coverage.
const PolicyEngineErrorID = "POLICY_ENGINE_ERROR"

// Evaluator runs the applicable catalog checks over a batch of resources.
// It holds no per-request state and is safe for concurrent use: the catalog
// is read-only after startup and checks are pure.
type Evaluator struct {
	catalog *policy.Catalog
	log     zerolog.Logger
}

// NewEvaluator returns an evaluator bound to the given catalog.
func NewEvaluator(catalog *policy.Catalog, log zerolog.Logger) *Evaluator {
	return &Evaluator{catalog: catalog, log: log}
}

// Evaluate runs each applicable check against each resource in catalog order
// and returns the concatenated drafts. Resources whose collection failed are
// skipped entirely. A check failure (error or panic) is replaced by a single
// POLICY_ENGINE_ERROR draft and never stops the remaining checks or
// resources.
func (e *Evaluator) Evaluate(provider, service string, resources []models.Resource, acct policy.AccountContext) []models.AlertDraft {
	checks := e.catalog.Lookup(provider, service)
	if len(checks) == 0 {
		return nil
	}

	var drafts []models.AlertDraft
	for _, res := range resources {
		if msg := res.CollectionFailed(); msg != "" {
			e.log.Debug().
				Str("provider", provider).
				Str("service", service).
				Str("resource_id", res.ResourceID()).
				Str("collection_error", msg).
				Msg("skipping resource with collection error")
			continue
		}
		for _, chk := range checks {
			if d := e.runCheck(chk, res, acct); d != nil {
				drafts = append(drafts, *d)
			}
		}
	}
	return drafts
}

// runCheck invokes one check with panic isolation.
func (e *Evaluator) runCheck(chk policy.Check, res models.Resource, acct policy.AccountContext) (draft *models.AlertDraft) {
	defer func() {
		if r := recover(); r != nil {
			draft = e.engineErrorDraft(chk, res, acct, fmt.Sprintf("panic: %v", r))
		}
	}()

	d, err := chk.Func(res, acct)
	if err != nil {
		return e.engineErrorDraft(chk, res, acct, err.Error())
	}
	return d
}

func (e *Evaluator) engineErrorDraft(chk policy.Check, res models.Resource, acct policy.AccountContext, errMsg string) *models.AlertDraft {
	e.log.Error().
		Str("policy_id", chk.PolicyID).
		Str("resource_id", res.ResourceID()).
		Str("error", errMsg).
		Msg("policy check failed")

	return &models.AlertDraft{
		ResourceID:     res.ResourceID(),
		ResourceType:   res.ResourceKind(),
		Provider:       acct.Provider,
		AccountID:      acct.AccountID,
		Region:         acct.Region,
		Severity:       models.SeverityMedium,
		Title:          "Policy engine check failure",
		Description:    fmt.Sprintf("Policy %s failed while evaluating resource %s.", chk.PolicyID, res.ResourceID()),
		PolicyID:       PolicyEngineErrorID,
		Details: map[string]any{
			"failed_policy_id": chk.PolicyID,
			"error":            errMsg,
		},
		Recommendation: "Inspect the engine logs for the failing policy and file a rule bug; coverage for this resource is degraded until fixed.",
	}
}
