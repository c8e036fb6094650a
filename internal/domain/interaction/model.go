// Package interaction implements the drug-interaction reference table
// and the pairwise interaction check.
package interaction

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the clinical risk tier of combining two medications.
type Severity string

const (
	SeverityMinor           Severity = "minor"
	SeverityModerate        Severity = "moderate"
	SeverityMajor           Severity = "major"
	SeverityContraindicated Severity = "contraindicated"
)

var validSeverities = map[Severity]bool{
	SeverityMinor: true, SeverityModerate: true,
	SeverityMajor: true, SeverityContraindicated: true,
}

// Valid reports whether s is a known severity tier.
func (s Severity) Valid() bool { return validSeverities[s] }

// Interaction is a reference-data pair of medication names. Lookup is
// symmetric: (A,B) and (B,A) describe the same interaction.
type Interaction struct {
	ID             uuid.UUID `json:"id"`
	MedicationA    string    `json:"medication_a"`
	MedicationB    string    `json:"medication_b"`
	Severity       Severity  `json:"severity"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}
