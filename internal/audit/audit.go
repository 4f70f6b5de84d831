// Package audit records ministerial actions in a tamper-evident trail.
// Every entry carries a digital signature computed over its canonical
// form, so after-the-fact edits to the stored row are detectable.
package audit

import "time"

// EventType identifies what kind of event an entry records.
type EventType string

const (
	EventMinisterialAction   EventType = "ministerial_action"
	EventDecisionExecution   EventType = "decision_execution"
	EventDataAccess          EventType = "data_access"
	EventSystemModification  EventType = "system_modification"
	EventUserInteraction     EventType = "user_interaction"
	EventErrorOccurrence     EventType = "error_occurrence"
	EventConfigurationChange EventType = "configuration_change"
)

// ComplianceLevel grades an audited action.
type ComplianceLevel string

const (
	ComplianceCompliant ComplianceLevel = "compliant"
	ComplianceWarning   ComplianceLevel = "warning"
	ComplianceViolation ComplianceLevel = "violation"
	ComplianceCritical  ComplianceLevel = "critical"
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	EventType  EventType         `json:"event_type"`
	Minister   string            `json:"minister"`
	Action     string            `json:"action"`
	Target     string            `json:"target"`
	Compliance ComplianceLevel   `json:"compliance"`
	Signature  string            `json:"signature"`
	Details    map[string]string `json:"details"`
	SessionID  string            `json:"session_id,omitempty"`
}

// Report summarises audited actions over a timeframe.
type Report struct {
	GeneratedAt    time.Time                `json:"generated_at"`
	TimeframeHours int                      `json:"timeframe_hours"`
	MinisterFilter string                   `json:"minister_filter,omitempty"`
	TotalAudited   int                      `json:"total_audited"`
	ByCompliance   map[string]int           `json:"by_compliance"`
	ByMinister     map[string]MinisterStats `json:"by_minister"`
}

// MinisterStats aggregates one minister's audited actions.
type MinisterStats struct {
	TotalActions   int     `json:"total_actions"`
	Violations     int     `json:"violations"`
	ComplianceRate float64 `json:"compliance_rate"`
}
