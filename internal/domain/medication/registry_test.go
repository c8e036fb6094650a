package medication

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/domain/interaction"
	"github.com/carelink/medsafe/internal/errs"
)

type memMedRepo struct {
	meds map[uuid.UUID]*Medication
}

func newMemMedRepo() *memMedRepo {
	return &memMedRepo{meds: make(map[uuid.UUID]*Medication)}
}

func (r *memMedRepo) Create(_ context.Context, m *Medication) error {
	cp := *m
	r.meds[m.ID] = &cp
	return nil
}

func (r *memMedRepo) Get(_ context.Context, id uuid.UUID) (*Medication, error) {
	m, ok := r.meds[id]
	if !ok {
		return nil, errs.NotFound("medication", id)
	}
	cp := *m
	return &cp, nil
}

func (r *memMedRepo) Update(_ context.Context, m *Medication) error {
	if _, ok := r.meds[m.ID]; !ok {
		return errs.NotFound("medication", m.ID)
	}
	cp := *m
	r.meds[m.ID] = &cp
	return nil
}

func (r *memMedRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Medication, error) {
	var out []*Medication
	for _, m := range r.meds {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMedRepo) ListActiveByPatient(_ context.Context, patientID uuid.UUID) ([]*Medication, error) {
	var out []*Medication
	for _, m := range r.meds {
		if m.PatientID == patientID && m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

type memSchedRepo struct {
	scheds []*Schedule
}

func (r *memSchedRepo) Create(_ context.Context, s *Schedule) error {
	cp := *s
	cp.Times = append([]string(nil), s.Times...)
	r.scheds = append(r.scheds, &cp)
	return nil
}

func (r *memSchedRepo) ActiveByMedication(_ context.Context, medicationID uuid.UUID) (*Schedule, error) {
	for i := len(r.scheds) - 1; i >= 0; i-- {
		if r.scheds[i].MedicationID == medicationID && r.scheds[i].Active {
			cp := *r.scheds[i]
			return &cp, nil
		}
	}
	return nil, errs.NotFound("schedule", medicationID)
}

func (r *memSchedRepo) DeactivateByMedication(_ context.Context, medicationID uuid.UUID) error {
	for _, s := range r.scheds {
		if s.MedicationID == medicationID {
			s.Active = false
		}
	}
	return nil
}

// passTx runs fn directly; lock behavior is covered by the postgres
// implementation.
type passTx struct{}

func (passTx) InPatientTx(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memAlertRepo struct {
	alerts []*alert.Alert
}

func (r *memAlertRepo) Create(_ context.Context, a *alert.Alert) error {
	cp := *a
	r.alerts = append(r.alerts, &cp)
	return nil
}

func (r *memAlertRepo) Get(_ context.Context, id uuid.UUID) (*alert.Alert, error) {
	for _, a := range r.alerts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, errs.NotFound("alert", id)
}

func (r *memAlertRepo) UpdateAck(_ context.Context, a *alert.Alert) error {
	for _, stored := range r.alerts {
		if stored.ID == a.ID {
			stored.Acknowledged = a.Acknowledged
			stored.AcknowledgedBy = a.AcknowledgedBy
			stored.AcknowledgedAt = a.AcknowledgedAt
			return nil
		}
	}
	return errs.NotFound("alert", a.ID)
}

func (r *memAlertRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*alert.Alert, error) {
	var out []*alert.Alert
	for _, a := range r.alerts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAlertRepo) ListUnacknowledged(_ context.Context, patientID uuid.UUID) ([]*alert.Alert, error) {
	var out []*alert.Alert
	for _, a := range r.alerts {
		if a.PatientID == patientID && !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out, nil
}

type memInteractionRepo struct {
	rows []*interaction.Interaction
}

func (r *memInteractionRepo) FindPair(_ context.Context, a, b string) ([]*interaction.Interaction, error) {
	var out []*interaction.Interaction
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

func (r *memInteractionRepo) Insert(_ context.Context, in *interaction.Interaction) error {
	cp := *in
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memInteractionRepo) Count(context.Context) (int, error) {
	return len(r.rows), nil
}

type registryFixture struct {
	registry *Registry
	meds     *memMedRepo
	scheds   *memSchedRepo
	alerts   *memAlertRepo
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()

	interactions := &memInteractionRepo{}
	checker := interaction.NewChecker(interactions, nil)
	if err := checker.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	meds := newMemMedRepo()
	scheds := &memSchedRepo{}
	alertRepo := &memAlertRepo{}
	manager := alert.NewManager(alertRepo, nil, nil)

	return &registryFixture{
		registry: NewRegistry(meds, scheds, passTx{}, checker, manager, nil),
		meds:     meds,
		scheds:   scheds,
		alerts:   alertRepo,
	}
}

func createInput(patientID uuid.UUID, name string, freq Frequency) CreateInput {
	return CreateInput{
		PatientID:    patientID,
		PrescriberID: uuid.New(),
		Name:         name,
		Dosage:       "5mg",
		Frequency:    freq,
		Route:        RouteOral,
		Instructions: "Take with food",
		CreatedBy:    "dr-smith",
	}
}

func TestCreateGeneratesSchedule(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	result, err := f.registry.Create(ctx, createInput(uuid.New(), "Metformin", FrequencyTwiceDaily))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !result.Medication.Active {
		t.Error("new medication must be active")
	}
	if result.Medication.Priority != PriorityRoutine {
		t.Errorf("priority = %s, want default routine", result.Medication.Priority)
	}
	if result.Schedule == nil {
		t.Fatal("non-PRN medication must get a schedule")
	}
	want := []string{"08:00", "20:00"}
	if len(result.Schedule.Times) != 2 || result.Schedule.Times[0] != want[0] || result.Schedule.Times[1] != want[1] {
		t.Errorf("schedule times = %v, want %v", result.Schedule.Times, want)
	}
	if len(result.Interactions) != 0 {
		t.Errorf("unexpected interactions: %v", result.Interactions)
	}
}

func TestCreatePRNSkipsSchedule(t *testing.T) {
	f := newRegistryFixture(t)

	in := createInput(uuid.New(), "Ibuprofen", FrequencyAsNeeded)
	in.IsPRN = true

	result, err := f.registry.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Schedule != nil {
		t.Fatal("PRN medication must not get a schedule")
	}
	if len(f.scheds.scheds) != 0 {
		t.Fatal("no schedule rows expected for PRN")
	}
}

func TestCreateDetectsInteractionAndRaisesAlert(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()
	patientID := uuid.New()

	if _, err := f.registry.Create(ctx, createInput(patientID, "Warfarin", FrequencyOnceDaily)); err != nil {
		t.Fatalf("create warfarin: %v", err)
	}

	result, err := f.registry.Create(ctx, createInput(patientID, "Aspirin", FrequencyOnceDaily))
	if err != nil {
		t.Fatalf("create aspirin: %v", err)
	}

	if len(result.Interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(result.Interactions))
	}
	if result.Interactions[0].Severity != interaction.SeverityMajor {
		t.Errorf("severity = %s, want major", result.Interactions[0].Severity)
	}
	if len(result.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(result.Alerts))
	}
	a := result.Alerts[0]
	if a.Type != alert.TypeInteraction {
		t.Errorf("alert type = %s, want interaction", a.Type)
	}
	if a.Severity != alert.SeverityHigh {
		t.Errorf("alert severity = %s, want high", a.Severity)
	}
	if a.MedicationID == nil || *a.MedicationID != result.Medication.ID {
		t.Error("alert must reference the new medication")
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	bad := []CreateInput{
		createInput(uuid.Nil, "Metformin", FrequencyOnceDaily),
		func() CreateInput {
			in := createInput(uuid.New(), "Metformin", FrequencyOnceDaily)
			in.PrescriberID = uuid.Nil
			return in
		}(),
		createInput(uuid.New(), "   ", FrequencyOnceDaily),
		func() CreateInput {
			in := createInput(uuid.New(), "Metformin", FrequencyOnceDaily)
			in.Dosage = ""
			return in
		}(),
		func() CreateInput {
			in := createInput(uuid.New(), "Metformin", FrequencyOnceDaily)
			in.Instructions = " "
			return in
		}(),
	}
	for i, in := range bad {
		if _, err := f.registry.Create(ctx, in); !errs.IsValidation(err) {
			t.Errorf("case %d: got %v, want validation error", i, err)
		}
	}
}

func TestUpdateFrequencyRegeneratesSchedule(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	result, err := f.registry.Create(ctx, createInput(uuid.New(), "Metformin", FrequencyOnceDaily))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	freq := FrequencyThreeTimesDaily
	med, err := f.registry.Update(ctx, result.Medication.ID, UpdateInput{Frequency: &freq}, "nurse-2")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if med.Frequency != FrequencyThreeTimesDaily {
		t.Errorf("frequency = %s, want three_times_daily", med.Frequency)
	}
	if med.UpdatedBy != "nurse-2" {
		t.Errorf("updated_by = %s, want nurse-2", med.UpdatedBy)
	}

	sched, err := f.scheds.ActiveByMedication(ctx, med.ID)
	if err != nil {
		t.Fatalf("ActiveByMedication: %v", err)
	}
	if len(sched.Times) != 3 {
		t.Fatalf("active schedule has %d slots, want 3", len(sched.Times))
	}

	active := 0
	for _, s := range f.scheds.scheds {
		if s.MedicationID == med.ID && s.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active schedules = %d, want exactly 1", active)
	}
}

func TestUpdateRejectsEmptyDosage(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	result, err := f.registry.Create(ctx, createInput(uuid.New(), "Metformin", FrequencyOnceDaily))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	empty := "  "
	if _, err := f.registry.Update(ctx, result.Medication.ID, UpdateInput{Dosage: &empty}, "x"); !errs.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestDiscontinue(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()
	patientID := uuid.New()

	result, err := f.registry.Create(ctx, createInput(patientID, "Metformin", FrequencyTwiceDaily))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := result.Medication.ID

	before := time.Now().UTC()
	med, err := f.registry.Discontinue(ctx, id, "dr-jones", "adverse reaction")
	if err != nil {
		t.Fatalf("Discontinue: %v", err)
	}

	if med.Active {
		t.Error("discontinued medication must be inactive")
	}
	if med.EndDate == nil || med.EndDate.Before(before) {
		t.Error("end date must be stamped at discontinuation")
	}
	if !strings.Contains(med.Notes, "Discontinued: adverse reaction") {
		t.Errorf("notes = %q, want discontinuation note", med.Notes)
	}

	if _, err := f.scheds.ActiveByMedication(ctx, id); !errs.IsNotFound(err) {
		t.Error("schedule must be deactivated with the medication")
	}

	alerts, _ := f.alerts.ListByPatient(ctx, patientID)
	var found bool
	for _, a := range alerts {
		if a.Type == alert.TypeDiscontinuation && a.Severity == alert.SeverityMedium {
			found = true
		}
	}
	if !found {
		t.Error("expected a medium discontinuation alert")
	}
}

func TestDiscontinueAppendsToExistingNotes(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	result, err := f.registry.Create(ctx, createInput(uuid.New(), "Metformin", FrequencyOnceDaily))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored := f.meds.meds[result.Medication.ID]
	stored.Notes = "tolerates well"

	med, err := f.registry.Discontinue(ctx, result.Medication.ID, "dr-jones", "course complete")
	if err != nil {
		t.Fatalf("Discontinue: %v", err)
	}
	if !strings.HasPrefix(med.Notes, "tolerates well\n") {
		t.Errorf("notes = %q, prior notes must be preserved", med.Notes)
	}
}
