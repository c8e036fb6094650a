package interaction

import (
	"context"
	"strings"
	"testing"
)

type memRepo struct {
	rows []*Interaction
}

func (r *memRepo) FindPair(_ context.Context, a, b string) ([]*Interaction, error) {
	var out []*Interaction
	for _, row := range r.rows {
		if !row.Active {
			continue
		}
		if (strings.EqualFold(row.MedicationA, a) && strings.EqualFold(row.MedicationB, b)) ||
			(strings.EqualFold(row.MedicationA, b) && strings.EqualFold(row.MedicationB, a)) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memRepo) Insert(_ context.Context, in *Interaction) error {
	cp := *in
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memRepo) Count(context.Context) (int, error) {
	return len(r.rows), nil
}

func seededChecker(t *testing.T) (*Checker, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	c := NewChecker(repo, nil)
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return c, repo
}

func TestCheckFindsKnownPair(t *testing.T) {
	c, _ := seededChecker(t)

	found, err := c.Check(context.Background(), "Warfarin", []string{"Aspirin", "Metformin"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d interactions, want 1", len(found))
	}
	if found[0].Severity != SeverityMajor {
		t.Errorf("severity = %s, want %s", found[0].Severity, SeverityMajor)
	}
}

func TestCheckIsCaseInsensitive(t *testing.T) {
	c, _ := seededChecker(t)

	found, err := c.Check(context.Background(), "warfarin", []string{"ASPIRIN"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("found %d interactions, want 1", len(found))
	}
}

func TestCheckSkipsSelfAndBlank(t *testing.T) {
	c, _ := seededChecker(t)

	found, err := c.Check(context.Background(), "Warfarin", []string{"warfarin", "  ", ""})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("found %d interactions, want 0", len(found))
	}
}

func TestCheckEmptyCandidate(t *testing.T) {
	c, _ := seededChecker(t)

	found, err := c.Check(context.Background(), "   ", []string{"Aspirin"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if found != nil {
		t.Fatal("blank candidate must yield no interactions")
	}
}

func TestCheckReportsEachPairSeparately(t *testing.T) {
	repo := &memRepo{}
	c := NewChecker(repo, nil)
	ctx := context.Background()

	for _, other := range []string{"B", "C", "D"} {
		repo.rows = append(repo.rows, &Interaction{
			MedicationA: "A", MedicationB: other,
			Severity: SeverityModerate, Active: true,
		})
	}

	found, err := c.Check(ctx, "A", []string{"B", "C", "D"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("found %d interactions, want 3", len(found))
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	c, repo := seededChecker(t)

	before := len(repo.rows)
	if before == 0 {
		t.Fatal("seed inserted nothing")
	}
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if len(repo.rows) != before {
		t.Fatalf("second seed grew the table from %d to %d rows", before, len(repo.rows))
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityMinor, SeverityModerate, SeverityMajor, SeverityContraindicated} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Severity("fatal").Valid() {
		t.Error("unknown severity should be invalid")
	}
}
