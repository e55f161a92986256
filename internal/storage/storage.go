// Package storage provides the alert and asset stores. The Postgres
// implementation is authoritative; the in-memory implementation backs tests
// and local development and honours the same contracts.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/devsec-labs/cloudsentry/internal/models"
)

// ErrNotFound is returned by CRUD operations referencing a nonexistent alert.
var ErrNotFound = errors.New("alert not found")

// List pagination bounds.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// sortColumns whitelists the columns ListAlerts may sort by.
var sortColumns = map[string]struct{}{
	"id":           {},
	"provider":     {},
	"resource_id":  {},
	"policy_id":    {},
	"severity":     {},
	"status":       {},
	"created_at":   {},
	"updated_at":   {},
	"last_seen_at": {},
}

// AlertFilter narrows and pages an alert listing. Zero values mean "no
// constraint". ResourceID matches as a case-insensitive substring; all other
// fields match exactly.
type AlertFilter struct {
	Provider    string
	Severity    models.Severity
	Status      models.AlertStatus
	ResourceID  string
	PolicyID    string
	AccountID   string
	Region      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Skip        int
	Limit       int
	SortBy      string
	SortDesc    bool
}

// Normalize clamps pagination to [1, MaxListLimit] and falls back to sorting
// by created_at descending when SortBy is absent or not whitelisted.
func (f *AlertFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		f.SortBy = "created_at"
		f.SortDesc = true
	}
}

// AlertPatch updates an alert's mutable fields. Nil pointers leave the
// corresponding field untouched; a non-nil Details replaces the whole map.
type AlertPatch struct {
	Severity       *models.Severity
	Title          *string
	Description    *string
	Details        map[string]any
	Recommendation *string
}

// AlertStore is the persistence contract for alerts.
//
// UpsertAlert implements the dedup/merge algorithm: when an OPEN alert with
// the same (provider, resource_id, policy_id) exists, its mutable fields are
// refreshed and last_seen_at advances; otherwise a new OPEN alert is created
// with all lifecycle timestamps set to now. At most one OPEN row per dedup
// key may exist at any time, even under concurrent upserts.
type AlertStore interface {
	UpsertAlert(ctx context.Context, draft models.AlertDraft) (models.Alert, error)
	GetAlert(ctx context.Context, id int64) (models.Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error)
	UpdateAlertStatus(ctx context.Context, id int64, status models.AlertStatus) (models.Alert, error)
	UpdateAlertDetails(ctx context.Context, id int64, patch AlertPatch) (models.Alert, error)
	DeleteAlert(ctx context.Context, id int64) (models.Alert, error)
}

// AssetStore is the persistence contract for the asset inventory side index.
// Upserts are keyed by asset_id, last-write-wins.
type AssetStore interface {
	UpsertAsset(ctx context.Context, asset models.Asset) error
}
