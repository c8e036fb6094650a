// Package alert implements engine-generated clinical alerts: creation,
// severity classification and acknowledgement.
package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/medsafe/internal/domain/interaction"
)

// Type classifies the condition that raised an alert.
type Type string

const (
	TypeInteraction     Type = "interaction"
	TypeMissedDose      Type = "missed_dose"
	TypeSideEffect      Type = "side_effect"
	TypeDiscontinuation Type = "discontinuation"
	TypeOther           Type = "other"
)

var validTypes = map[Type]bool{
	TypeInteraction: true, TypeMissedDose: true, TypeSideEffect: true,
	TypeDiscontinuation: true, TypeOther: true,
}

// Valid reports whether t is a known alert type.
func (t Type) Valid() bool { return validTypes[t] }

// Severity is the urgency tier of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var validSeverities = map[Severity]bool{
	SeverityLow: true, SeverityMedium: true,
	SeverityHigh: true, SeverityCritical: true,
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool { return validSeverities[s] }

// SeverityForInteraction maps an interaction risk tier to an alert
// severity. All callers go through this mapping so the severity
// vocabulary stays consistent.
func SeverityForInteraction(s interaction.Severity) Severity {
	switch s {
	case interaction.SeverityContraindicated:
		return SeverityCritical
	case interaction.SeverityMajor:
		return SeverityHigh
	case interaction.SeverityModerate:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Alert is an acknowledgeable notice of a safety-relevant condition.
// Acknowledgement is the only permitted mutation after creation.
type Alert struct {
	ID             uuid.UUID  `json:"id"`
	PatientID      uuid.UUID  `json:"patient_id"`
	MedicationID   *uuid.UUID `json:"medication_id,omitempty"`
	Type           Type       `json:"type"`
	Severity       Severity   `json:"severity"`
	Message        string     `json:"message"`
	RequiredAction string     `json:"required_action,omitempty"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
