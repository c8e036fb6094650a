package administration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/errs"
)

type memEventRepo struct {
	events []*Administration
}

func (r *memEventRepo) Append(_ context.Context, a *Administration) error {
	cp := *a
	r.events = append(r.events, &cp)
	return nil
}

func (r *memEventRepo) ListByMedication(_ context.Context, medicationID uuid.UUID) ([]*Administration, error) {
	var out []*Administration
	for _, e := range r.events {
		if e.MedicationID == medicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) ListByMedicationSince(_ context.Context, medicationID uuid.UUID, since time.Time) ([]*Administration, error) {
	var out []*Administration
	for _, e := range r.events {
		if e.MedicationID == medicationID && !e.ScheduledTime.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEventRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Administration, error) {
	var out []*Administration
	for _, e := range r.events {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
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
	return nil, errs.NotFound("alert", id)
}

func (r *memAlertRepo) UpdateAck(_ context.Context, a *alert.Alert) error { return nil }

func (r *memAlertRepo) ListByPatient(_ context.Context, _ uuid.UUID) ([]*alert.Alert, error) {
	return r.alerts, nil
}

func (r *memAlertRepo) ListUnacknowledged(_ context.Context, _ uuid.UUID) ([]*alert.Alert, error) {
	return r.alerts, nil
}

func fixture() (*Recorder, *memEventRepo, *memAlertRepo) {
	events := &memEventRepo{}
	alerts := &memAlertRepo{}
	return NewRecorder(events, alert.NewManager(alerts, nil, nil), nil), events, alerts
}

func input(status Status) RecordInput {
	return RecordInput{
		MedicationID:  uuid.New(),
		PatientID:     uuid.New(),
		ScheduledTime: time.Now().UTC().Truncate(time.Minute),
		Status:        status,
		DosageGiven:   "5mg",
	}
}

func TestRecordAdministeredRaisesNoAlert(t *testing.T) {
	rec, events, alerts := fixture()

	ev, err := rec.Record(context.Background(), input(StatusAdministered))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(events.events))
	}
	if len(alerts.alerts) != 0 {
		t.Fatalf("alerts = %d, want 0", len(alerts.alerts))
	}
	if ev.ID == uuid.Nil {
		t.Error("event must get an id")
	}
}

func TestRecordMissedRaisesOneAlert(t *testing.T) {
	rec, _, alerts := fixture()

	in := input(StatusMissed)
	in.Notes = "patient asleep"
	if _, err := rec.Record(context.Background(), in); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(alerts.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts.alerts))
	}
	a := alerts.alerts[0]
	if a.Type != alert.TypeMissedDose {
		t.Errorf("alert type = %s, want missed_dose", a.Type)
	}
	if a.Severity != alert.SeverityMedium {
		t.Errorf("alert severity = %s, want medium", a.Severity)
	}
}

func TestRecordRefusedDefaultsReason(t *testing.T) {
	rec, _, alerts := fixture()

	if _, err := rec.Record(context.Background(), input(StatusRefused)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(alerts.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts.alerts))
	}
	msg := alerts.alerts[0].Message
	if want := "No reason provided"; !strings.Contains(msg, want) {
		t.Errorf("message = %q, want it to contain %q", msg, want)
	}
}

func TestRecordAllowsRepeatedSlotEntries(t *testing.T) {
	rec, events, _ := fixture()
	ctx := context.Background()

	in := input(StatusPartial)
	if _, err := rec.Record(ctx, in); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	in.Status = StatusAdministered
	if _, err := rec.Record(ctx, in); err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if len(events.events) != 2 {
		t.Fatalf("events = %d, want 2; the log is append-only", len(events.events))
	}
}

func TestRecordValidation(t *testing.T) {
	rec, _, _ := fixture()
	ctx := context.Background()

	bad := input(StatusAdministered)
	bad.MedicationID = uuid.Nil
	if _, err := rec.Record(ctx, bad); !errs.IsValidation(err) {
		t.Errorf("missing medication: got %v", err)
	}

	bad = input(StatusAdministered)
	bad.ScheduledTime = time.Time{}
	if _, err := rec.Record(ctx, bad); !errs.IsValidation(err) {
		t.Errorf("missing scheduled time: got %v", err)
	}

	bad = input(Status("swallowed"))
	if _, err := rec.Record(ctx, bad); !errs.IsValidation(err) {
		t.Errorf("unknown status: got %v", err)
	}

	six := 6
	bad = input(StatusAdministered)
	bad.PatientResponse = &six
	if _, err := rec.Record(ctx, bad); !errs.IsValidation(err) {
		t.Errorf("out-of-range response: got %v", err)
	}
}
