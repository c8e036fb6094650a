package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/carelink/medsafe/internal/domain/interaction"
)

type memRepo struct {
	alerts map[uuid.UUID]*Alert
}

func newMemRepo() *memRepo {
	return &memRepo{alerts: make(map[uuid.UUID]*Alert)}
}

func (r *memRepo) Create(_ context.Context, a *Alert) error {
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*Alert, error) {
	a, ok := r.alerts[id]
	if !ok {
		return nil, errors.New("alert not found")
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) UpdateAck(_ context.Context, a *Alert) error {
	stored, ok := r.alerts[a.ID]
	if !ok {
		return errors.New("alert not found")
	}
	stored.Acknowledged = a.Acknowledged
	stored.AcknowledgedBy = a.AcknowledgedBy
	stored.AcknowledgedAt = a.AcknowledgedAt
	return nil
}

func (r *memRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Alert, error) {
	var out []*Alert
	for _, a := range r.alerts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) ListUnacknowledged(_ context.Context, patientID uuid.UUID) ([]*Alert, error) {
	var out []*Alert
	for _, a := range r.alerts {
		if a.PatientID == patientID && !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out, nil
}

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) Notify(context.Context, *Alert) error {
	n.calls++
	return errors.New("bus unreachable")
}

func TestCreateSurvivesNotifierFailure(t *testing.T) {
	repo := newMemRepo()
	notifier := &failingNotifier{}
	m := NewManager(repo, notifier, nil)

	a, err := m.Create(context.Background(), CreateInput{
		PatientID: uuid.New(),
		Type:      TypeMissedDose,
		Severity:  SeverityMedium,
		Message:   "dose missed",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}
	if _, ok := repo.alerts[a.ID]; !ok {
		t.Fatal("alert not persisted despite notifier failure")
	}
	if a.Acknowledged {
		t.Fatal("new alert must start unacknowledged")
	}
}

func TestCreateValidation(t *testing.T) {
	m := NewManager(newMemRepo(), nil, nil)
	ctx := context.Background()

	cases := []CreateInput{
		{Type: TypeOther, Severity: SeverityLow, Message: "x"},                                // no patient
		{PatientID: uuid.New(), Type: "bogus", Severity: SeverityLow, Message: "x"},           // bad type
		{PatientID: uuid.New(), Type: TypeOther, Severity: "shrug", Message: "x"},             // bad severity
		{PatientID: uuid.New(), Type: TypeOther, Severity: SeverityLow},                       // no message
	}
	for i, in := range cases {
		if _, err := m.Create(ctx, in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	m := NewManager(repo, nil, nil)
	ctx := context.Background()

	a, err := m.Create(ctx, CreateInput{
		PatientID: uuid.New(),
		Type:      TypeInteraction,
		Severity:  SeverityHigh,
		Message:   "interaction found",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := m.Acknowledge(ctx, a.ID, "nurse-1")
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if !first.Acknowledged || first.AcknowledgedBy != "nurse-1" || first.AcknowledgedAt == nil {
		t.Fatalf("acknowledgement not recorded: %+v", first)
	}

	second, err := m.Acknowledge(ctx, a.ID, "nurse-1")
	if err != nil {
		t.Fatalf("second Acknowledge: %v", err)
	}
	if !second.AcknowledgedAt.Equal(*first.AcknowledgedAt) {
		t.Fatal("repeat acknowledgement by the same actor must not move the timestamp")
	}
}

func TestAcknowledgeRequiresActor(t *testing.T) {
	m := NewManager(newMemRepo(), nil, nil)
	if _, err := m.Acknowledge(context.Background(), uuid.New(), ""); err == nil {
		t.Fatal("expected validation error for empty actor")
	}
}

func TestSeverityForInteraction(t *testing.T) {
	cases := map[interaction.Severity]Severity{
		interaction.SeverityContraindicated: SeverityCritical,
		interaction.SeverityMajor:           SeverityHigh,
		interaction.SeverityModerate:        SeverityMedium,
		interaction.SeverityMinor:           SeverityLow,
	}
	for in, want := range cases {
		if got := SeverityForInteraction(in); got != want {
			t.Errorf("SeverityForInteraction(%s) = %s, want %s", in, got, want)
		}
	}
}
