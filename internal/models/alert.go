package models

import "time"

// Severity represents the risk level of an alert.
type Severity string

const (
	SeverityCritical      Severity = "CRITICAL"
	SeverityHigh          Severity = "HIGH"
	SeverityMedium        Severity = "MEDIUM"
	SeverityLow           Severity = "LOW"
	SeverityInformational Severity = "INFORMATIONAL"
)

var severityRank = map[Severity]int{
	SeverityCritical:      5,
	SeverityHigh:          4,
	SeverityMedium:        3,
	SeverityLow:           2,
	SeverityInformational: 1,
}

// Rank returns a numeric weight for sorting; higher means more severe.
// Unknown severities rank below INFORMATIONAL.
func (s Severity) Rank() int { return severityRank[s] }

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool { return severityRank[s] != 0 }

// AlertStatus is the operator-facing lifecycle state of an alert.
// OPEN is the initial state; operators may move alerts freely between states.
type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "OPEN"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusResolved     AlertStatus = "RESOLVED"
	AlertStatusIgnored      AlertStatus = "IGNORED"
)

// Valid reports whether s is one of the known alert statuses.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusOpen, AlertStatusAcknowledged, AlertStatusResolved, AlertStatusIgnored:
		return true
	}
	return false
}

// AlertDraft is the ephemeral output of a single policy check. It is not
// persisted directly; the alert store either merges it into an existing OPEN
// alert or creates a new one.
type AlertDraft struct {
	ResourceID     string         `json:"resource_id"`
	ResourceType   string         `json:"resource_type"`
	Provider       string         `json:"provider"`
	AccountID      string         `json:"account_id,omitempty"`
	Region         string         `json:"region,omitempty"`
	Severity       Severity       `json:"severity"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	PolicyID       string         `json:"policy_id"`
	Details        map[string]any `json:"details,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
}

// Alert is the persisted record of a detected policy violation.
//
// ResourceID, ResourceType, Provider, PolicyID, AccountID and Region are
// immutable after creation. At most one row with Status == OPEN may exist for
// a given (Provider, ResourceID, PolicyID) tuple; the store enforces this.
type Alert struct {
	ID             int64          `json:"id"`
	ResourceID     string         `json:"resource_id"`
	ResourceType   string         `json:"resource_type"`
	Provider       string         `json:"provider"`
	PolicyID       string         `json:"policy_id"`
	AccountID      string         `json:"account_id,omitempty"`
	Region         string         `json:"region,omitempty"`
	Severity       Severity       `json:"severity"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Status         AlertStatus    `json:"status"`
	Details        map[string]any `json:"details,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	FirstSeenAt    time.Time      `json:"first_seen_at"`
	LastSeenAt     time.Time      `json:"last_seen_at"`
}

// NotificationPayload mirrors an alert's public fields for fire-and-forget
// delivery to the notification service.
type NotificationPayload struct {
	AlertID                int64          `json:"alert_id"`
	ResourceID             string         `json:"resource_id"`
	ResourceType           string         `json:"resource_type"`
	Provider               string         `json:"provider"`
	PolicyID               string         `json:"policy_id"`
	AccountID              string         `json:"account_id,omitempty"`
	Region                 string         `json:"region,omitempty"`
	Severity               Severity       `json:"severity"`
	Title                  string         `json:"title"`
	Description            string         `json:"description"`
	Details                map[string]any `json:"details,omitempty"`
	Recommendation         string         `json:"recommendation,omitempty"`
	OriginalAlertCreatedAt time.Time      `json:"original_alert_created_at"`
}

// NotificationFromAlert builds the outbound payload for a touched alert.
func NotificationFromAlert(a Alert) NotificationPayload {
	return NotificationPayload{
		AlertID:                a.ID,
		ResourceID:             a.ResourceID,
		ResourceType:           a.ResourceType,
		Provider:               a.Provider,
		PolicyID:               a.PolicyID,
		AccountID:              a.AccountID,
		Region:                 a.Region,
		Severity:               a.Severity,
		Title:                  a.Title,
		Description:            a.Description,
		Details:                a.Details,
		Recommendation:         a.Recommendation,
		OriginalAlertCreatedAt: a.CreatedAt,
	}
}
