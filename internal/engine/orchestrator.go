// Package engine contains the policy engine core: the resource codec, the
// evaluator, and the orchestrator that drives one analysis request from
// validation through asset upsert, evaluation, alert persistence and
// notification dispatch.
package engine

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devsec-labs/cloudsentry/internal/models"
	"github.com/devsec-labs/cloudsentry/internal/policy"
	"github.com/devsec-labs/cloudsentry/internal/storage"
)

// AnalyzeRequest is one evaluation request as received from the API gateway.
// Data is decoded per (Provider, Service) into the registered resource
// variant.
type AnalyzeRequest struct {
	Provider  string          `json:"provider"`
	Service   string          `json:"service"`
	AccountID string          `json:"account_id,omitempty"`
	Region    string          `json:"region,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Notifier accepts fire-and-forget notification payloads. Enqueue must not
// block; it reports false when the payload was dropped.
type Notifier interface {
	Enqueue(p models.NotificationPayload) bool
}

// Engine orchestrates analysis requests. All collaborators are injected at
// construction; the engine owns no lifecycle.
//
// Failure policy per stage: asset upsert and alert persistence failures are
// logged and skipped (partial success is expected under load); check
// failures are absorbed inside the evaluator; notification delivery is
// best-effort. Only a ValidationError reaches the caller.
type Engine struct {
	evaluator *Evaluator
	alerts    storage.AlertStore
	assets    storage.AssetStore
	notifier  Notifier
	params    *policy.Params
	log       zerolog.Logger
}

// New constructs an Engine wired to the supplied evaluator, stores and
// notifier. notifier may be nil when dispatch is disabled.
func New(
	evaluator *Evaluator,
	alerts storage.AlertStore,
	assets storage.AssetStore,
	notifier Notifier,
	params *policy.Params,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		evaluator: evaluator,
		alerts:    alerts,
		assets:    assets,
		notifier:  notifier,
		params:    params,
		log:       log,
	}
}

// Analyze runs one request end to end and returns every alert touched by it,
// both newly created and refreshed, regardless of per-stage partial
// failures.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) ([]models.Alert, error) {
	if req.Provider == "" || req.Service == "" {
		return nil, ValidationErrorf("provider and service are required")
	}
	resources, err := DecodeResources(req.Provider, req.Service, req.Data)
	if err != nil {
		return nil, err
	}

	log := e.log.With().
		Str("run_id", uuid.NewString()).
		Str("provider", req.Provider).
		Str("service", req.Service).
		Str("account_id", req.AccountID).
		Logger()

	e.upsertAssets(ctx, req, resources, log)

	acct := policy.AccountContext{
		Provider:  req.Provider,
		AccountID: req.AccountID,
		Region:    req.Region,
		Params:    e.params,
	}
	drafts := e.evaluator.Evaluate(req.Provider, req.Service, resources, acct)

	touched := make([]models.Alert, 0, len(drafts))
	for _, draft := range drafts {
		alert, err := e.alerts.UpsertAlert(ctx, draft)
		if err != nil {
			log.Error().Err(err).
				Str("policy_id", draft.PolicyID).
				Str("resource_id", draft.ResourceID).
				Msg("failed to persist alert; continuing with remaining drafts")
			continue
		}
		touched = append(touched, alert)
		e.dispatch(alert, log)
	}

	log.Info().
		Int("resources", len(resources)).
		Int("drafts", len(drafts)).
		Int("alerts", len(touched)).
		Msg("analysis completed")
	return touched, nil
}

// upsertAssets records every successfully collected resource in the asset
// inventory. The inventory is a best-effort side index: failures are logged
// and never abort evaluation.
func (e *Engine) upsertAssets(ctx context.Context, req AnalyzeRequest, resources []models.Resource, log zerolog.Logger) {
	if e.assets == nil {
		return
	}
	for _, res := range resources {
		if res.CollectionFailed() != "" {
			continue
		}
		blob, err := json.Marshal(res)
		if err != nil {
			log.Warn().Err(err).Str("asset_id", res.ResourceID()).Msg("failed to encode asset configuration")
			continue
		}
		asset := models.Asset{
			AssetID:       res.ResourceID(),
			AssetType:     res.ResourceKind(),
			Provider:      req.Provider,
			AccountID:     req.AccountID,
			Region:        req.Region,
			Configuration: blob,
		}
		if err := e.assets.UpsertAsset(ctx, asset); err != nil {
			log.Warn().Err(err).Str("asset_id", asset.AssetID).Msg("asset upsert failed")
		}
	}
}

// dispatch enqueues a notification for CRITICAL and HIGH alerts.
func (e *Engine) dispatch(alert models.Alert, log zerolog.Logger) {
	if e.notifier == nil || !notificationQualifies(alert.Severity) {
		return
	}
	if !e.notifier.Enqueue(models.NotificationFromAlert(alert)) {
		log.Warn().
			Int64("alert_id", alert.ID).
			Str("severity", string(alert.Severity)).
			Msg("notification queue full; payload dropped")
	}
}

func notificationQualifies(s models.Severity) bool {
	return s == models.SeverityCritical || s == models.SeverityHigh
}
