package policy

import (
	"github.com/devsec-labs/cloudsentry/internal/models"
)

// AccountContext scopes one analysis request to an account (or subscription,
// project, tenant domain) and region. It is the only per-request state a
// check may read.
type AccountContext struct {
	Provider  string
	AccountID string
	Region    string

	// Params holds configured threshold overrides. Nil means all defaults;
	// checks must go through Params.Threshold which is nil-safe.
	Params *Params
}

// CheckFunc inspects one resource and returns an alert draft when the
// resource violates the policy, or nil when it is compliant.
//
// The resource is always the variant the check was registered for; the
// catalog dispatches by (provider, service), so a mismatched variant is a
// programming error. Checks must be side-effect-free and deterministic and
// must never hold state between invocations. A returned error (or a panic)
// is converted by the evaluator into a POLICY_ENGINE_ERROR draft; it never
// aborts the batch.
type CheckFunc func(res models.Resource, acct AccountContext) (*models.AlertDraft, error)

// Check is a single policy rule: immutable metadata plus a pure predicate.
type Check struct {
	// PolicyID is the globally unique identifier (e.g. "S3_Public_Read_ACL").
	PolicyID string

	// Title is a short human-readable summary of the violation.
	Title string

	// Description explains what was detected and why it matters.
	Description string

	// Severity is the default severity of drafts produced by this check.
	// Checks may downgrade or upgrade it on the draft itself.
	Severity models.Severity

	// Recommendation is the remediation text attached to drafts.
	Recommendation string

	// Func is the predicate. See CheckFunc.
	Func CheckFunc
}

// NewDraft builds an alert draft pre-filled from the check's metadata and the
// request scope. Checks adjust Severity, Description or Details afterwards
// when the violation warrants it.
func (c Check) NewDraft(res models.Resource, acct AccountContext) *models.AlertDraft {
	return &models.AlertDraft{
		ResourceID:     res.ResourceID(),
		ResourceType:   res.ResourceKind(),
		Provider:       acct.Provider,
		AccountID:      acct.AccountID,
		Region:         acct.Region,
		Severity:       c.Severity,
		Title:          c.Title,
		Description:    c.Description,
		PolicyID:       c.PolicyID,
		Recommendation: c.Recommendation,
	}
}
