package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devsec-labs/cloudsentry/internal/models"
)

// MemoryStore is an in-memory AlertStore/AssetStore with the same contract
// semantics as the Postgres store. It backs unit tests and the "memory"
// storage driver for local development; state does not survive restarts.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	alerts map[int64]models.Alert
	assets map[string]models.Asset
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		alerts: make(map[int64]models.Alert),
		assets: make(map[string]models.Asset),
	}
}

// UpsertAlert implements AlertStore. The store mutex serializes the
// check-then-act, so the single-OPEN-row invariant holds under concurrency.
func (s *MemoryStore) UpsertAlert(_ context.Context, draft models.AlertDraft) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for id, a := range s.alerts {
		if a.Status == models.AlertStatusOpen &&
			a.Provider == draft.Provider &&
			a.ResourceID == draft.ResourceID &&
			a.PolicyID == draft.PolicyID {
			a.Severity = draft.Severity
			a.Title = draft.Title
			a.Description = draft.Description
			a.Details = draft.Details
			a.Recommendation = draft.Recommendation
			a.UpdatedAt = now
			a.LastSeenAt = now
			s.alerts[id] = a
			return a, nil
		}
	}

	a := models.Alert{
		ID:             s.nextID,
		ResourceID:     draft.ResourceID,
		ResourceType:   draft.ResourceType,
		Provider:       draft.Provider,
		PolicyID:       draft.PolicyID,
		AccountID:      draft.AccountID,
		Region:         draft.Region,
		Severity:       draft.Severity,
		Title:          draft.Title,
		Description:    draft.Description,
		Status:         models.AlertStatusOpen,
		Details:        draft.Details,
		Recommendation: draft.Recommendation,
		CreatedAt:      now,
		UpdatedAt:      now,
		FirstSeenAt:    now,
		LastSeenAt:     now,
	}
	s.nextID++
	s.alerts[a.ID] = a
	return a, nil
}

// GetAlert implements AlertStore.
func (s *MemoryStore) GetAlert(_ context.Context, id int64) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	return a, nil
}

// ListAlerts implements AlertStore.
func (s *MemoryStore) ListAlerts(_ context.Context, filter AlertFilter) ([]models.Alert, error) {
	filter.Normalize()

	s.mu.Lock()
	matched := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if matches(a, filter) {
			matched = append(matched, a)
		}
	}
	s.mu.Unlock()

	sortAlerts(matched, filter.SortBy, filter.SortDesc)

	if filter.Skip >= len(matched) {
		return []models.Alert{}, nil
	}
	matched = matched[filter.Skip:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// UpdateAlertStatus implements AlertStore.
func (s *MemoryStore) UpdateAlertStatus(_ context.Context, id int64, status models.AlertStatus) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	s.alerts[id] = a
	return a, nil
}

// UpdateAlertDetails implements AlertStore.
func (s *MemoryStore) UpdateAlertDetails(_ context.Context, id int64, patch AlertPatch) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	if patch.Severity != nil {
		a.Severity = *patch.Severity
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Details != nil {
		a.Details = patch.Details
	}
	if patch.Recommendation != nil {
		a.Recommendation = *patch.Recommendation
	}
	a.UpdatedAt = time.Now().UTC()
	s.alerts[id] = a
	return a, nil
}

// DeleteAlert implements AlertStore.
func (s *MemoryStore) DeleteAlert(_ context.Context, id int64) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	delete(s.alerts, id)
	return a, nil
}

// UpsertAsset implements AssetStore.
func (s *MemoryStore) UpsertAsset(_ context.Context, asset models.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset.UpdatedAt = time.Now().UTC()
	s.assets[asset.AssetID] = asset
	return nil
}

// Asset returns the stored asset and whether it exists. Test helper.
func (s *MemoryStore) Asset(assetID string) (models.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[assetID]
	return a, ok
}

func matches(a models.Alert, f AlertFilter) bool {
	if f.Provider != "" && a.Provider != f.Provider {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.ResourceID != "" && !strings.Contains(strings.ToLower(a.ResourceID), strings.ToLower(f.ResourceID)) {
		return false
	}
	if f.PolicyID != "" && a.PolicyID != f.PolicyID {
		return false
	}
	if f.AccountID != "" && a.AccountID != f.AccountID {
		return false
	}
	if f.Region != "" && a.Region != f.Region {
		return false
	}
	if f.CreatedFrom != nil && a.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && a.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

func sortAlerts(alerts []models.Alert, sortBy string, desc bool) {
	less := func(a, b models.Alert) bool {
		switch sortBy {
		case "id":
			return a.ID < b.ID
		case "provider":
			return a.Provider < b.Provider
		case "resource_id":
			return a.ResourceID < b.ResourceID
		case "policy_id":
			return a.PolicyID < b.PolicyID
		case "severity":
			return a.Severity.Rank() < b.Severity.Rank()
		case "status":
			return a.Status < b.Status
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "last_seen_at":
			return a.LastSeenAt.Before(b.LastSeenAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if less(a, b) != less(b, a) {
			if desc {
				return less(b, a)
			}
			return less(a, b)
		}
		// Equal on the sort key; fall back to id for a stable total order.
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}
