package interaction

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository is the persistence collaborator for the reference table.
type Repository interface {
	// FindPair returns active interactions matching the (a,b) pair in
	// either ordering, case-insensitively.
	FindPair(ctx context.Context, a, b string) ([]*Interaction, error)
	// Insert adds a reference row.
	Insert(ctx context.Context, in *Interaction) error
	// Count returns the number of reference rows, active or not.
	Count(ctx context.Context) (int, error)
}

// Checker performs pairwise interaction lookups for a candidate
// medication against a patient's active medications.
type Checker struct {
	repo   Repository
	logger *zap.Logger
}

// NewChecker creates a checker over the given reference table.
func NewChecker(repo Repository, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{repo: repo, logger: logger}
}

// Check returns every active reference-table match between the candidate
// medication name and each of the other names. No duplicate suppression:
// three active medications that each pairwise-interact with the candidate
// yield three results.
func (c *Checker) Check(ctx context.Context, candidate string, activeOthers []string) ([]*Interaction, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, nil
	}

	var found []*Interaction
	for _, other := range activeOthers {
		other = strings.TrimSpace(other)
		if other == "" || strings.EqualFold(other, candidate) {
			continue
		}
		matches, err := c.repo.FindPair(ctx, candidate, other)
		if err != nil {
			return nil, err
		}
		found = append(found, matches...)
	}

	if len(found) > 0 {
		c.logger.Info("drug interactions detected",
			zap.String("candidate", candidate),
			zap.Int("count", len(found)))
	}
	return found, nil
}

// builtinPairs is the minimal built-in reference table. Production
// deployments replace or extend it from an external formulary.
var builtinPairs = []Interaction{
	{MedicationA: "Warfarin", MedicationB: "Aspirin", Severity: SeverityMajor,
		Description:    "Increased risk of bleeding",
		Recommendation: "Monitor INR closely; consider gastroprotection"},
	{MedicationA: "Metformin", MedicationB: "Insulin", Severity: SeverityModerate,
		Description:    "Increased risk of hypoglycemia",
		Recommendation: "Monitor blood glucose; adjust dosing as needed"},
	{MedicationA: "Lisinopril", MedicationB: "Spironolactone", Severity: SeverityModerate,
		Description:    "Increased risk of hyperkalemia",
		Recommendation: "Monitor serum potassium and renal function"},
	{MedicationA: "Simvastatin", MedicationB: "Clarithromycin", Severity: SeverityMajor,
		Description:    "Increased risk of myopathy and rhabdomyolysis",
		Recommendation: "Suspend statin during the antibiotic course"},
	{MedicationA: "Digoxin", MedicationB: "Amiodarone", Severity: SeverityMajor,
		Description:    "Elevated digoxin levels and toxicity risk",
		Recommendation: "Reduce digoxin dose; monitor serum levels"},
	{MedicationA: "Sildenafil", MedicationB: "Nitroglycerin", Severity: SeverityContraindicated,
		Description:    "Severe hypotension when combined",
		Recommendation: "Do not co-administer"},
	{MedicationA: "Methotrexate", MedicationB: "Trimethoprim", Severity: SeverityMajor,
		Description:    "Additive antifolate effect; risk of bone marrow suppression",
		Recommendation: "Avoid combination; monitor full blood count"},
	{MedicationA: "Tramadol", MedicationB: "Sertraline", Severity: SeverityModerate,
		Description:    "Increased risk of serotonin syndrome",
		Recommendation: "Watch for agitation, tremor and hyperthermia"},
}

// Seed populates the reference table with the built-in pairs. Idempotent:
// a non-empty table is left untouched.
func (c *Checker) Seed(ctx context.Context) error {
	n, err := c.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for _, pair := range builtinPairs {
		row := pair
		row.ID = uuid.New()
		row.Active = true
		row.CreatedAt = time.Now().UTC()
		if err := c.repo.Insert(ctx, &row); err != nil {
			return err
		}
	}
	c.logger.Info("seeded built-in interaction table", zap.Int("pairs", len(builtinPairs)))
	return nil
}
