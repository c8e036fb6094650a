package symptom

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/errs"
)

type memReportRepo struct {
	reports map[uuid.UUID]*Report
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: make(map[uuid.UUID]*Report)}
}

func (r *memReportRepo) Create(_ context.Context, rep *Report) error {
	cp := *rep
	r.reports[rep.ID] = &cp
	return nil
}

func (r *memReportRepo) Get(_ context.Context, id uuid.UUID) (*Report, error) {
	rep, ok := r.reports[id]
	if !ok {
		return nil, errs.NotFound("symptom report", id)
	}
	cp := *rep
	return &cp, nil
}

func (r *memReportRepo) Update(_ context.Context, rep *Report) error {
	if _, ok := r.reports[rep.ID]; !ok {
		return errs.NotFound("symptom report", rep.ID)
	}
	cp := *rep
	r.reports[rep.ID] = &cp
	return nil
}

func (r *memReportRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Report, error) {
	var out []*Report
	for _, rep := range r.reports {
		if rep.PatientID == patientID {
			out = append(out, rep)
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

func (r *memAlertRepo) UpdateAck(context.Context, *alert.Alert) error { return nil }

func (r *memAlertRepo) ListByPatient(context.Context, uuid.UUID) ([]*alert.Alert, error) {
	return r.alerts, nil
}

func (r *memAlertRepo) ListUnacknowledged(context.Context, uuid.UUID) ([]*alert.Alert, error) {
	return r.alerts, nil
}

func fixture() (*Intake, *memReportRepo, *memAlertRepo) {
	reports := newMemReportRepo()
	alerts := &memAlertRepo{}
	return NewIntake(reports, alert.NewManager(alerts, nil, nil), nil), reports, alerts
}

func reportInput(severity int) ReportInput {
	return ReportInput{
		PatientID: uuid.New(),
		Symptoms:  []string{"nausea", "dizziness"},
		Severity:  severity,
	}
}

func TestReportLowSeverity(t *testing.T) {
	intake, _, alerts := fixture()

	rep, err := intake.Report(context.Background(), reportInput(2))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.FollowUpRequired {
		t.Error("severity 2 must not require follow-up")
	}
	if len(alerts.alerts) != 0 {
		t.Errorf("alerts = %d, want 0", len(alerts.alerts))
	}
	if rep.StartedAt.IsZero() {
		t.Error("started_at must default to the report time")
	}
}

func TestReportSeverityThreeRequiresFollowUp(t *testing.T) {
	intake, _, alerts := fixture()

	rep, err := intake.Report(context.Background(), reportInput(3))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !rep.FollowUpRequired {
		t.Error("severity 3 must require follow-up")
	}
	if len(alerts.alerts) != 0 {
		t.Error("severity 3 must not raise an alert")
	}
}

func TestReportSeverityFourRaisesHighAlert(t *testing.T) {
	intake, _, alerts := fixture()

	if _, err := intake.Report(context.Background(), reportInput(4)); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(alerts.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts.alerts))
	}
	a := alerts.alerts[0]
	if a.Type != alert.TypeSideEffect || a.Severity != alert.SeverityHigh {
		t.Errorf("alert = %s/%s, want side_effect/high", a.Type, a.Severity)
	}
}

func TestReportSeverityFiveRaisesCriticalAlert(t *testing.T) {
	intake, _, alerts := fixture()

	if _, err := intake.Report(context.Background(), reportInput(5)); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(alerts.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts.alerts))
	}
	if alerts.alerts[0].Severity != alert.SeverityCritical {
		t.Errorf("alert severity = %s, want critical", alerts.alerts[0].Severity)
	}
	if alerts.alerts[0].RequiredAction != "Immediate medical review required" {
		t.Errorf("required action = %q", alerts.alerts[0].RequiredAction)
	}
}

func TestReportValidation(t *testing.T) {
	intake, _, _ := fixture()
	ctx := context.Background()

	in := reportInput(3)
	in.PatientID = uuid.Nil
	if _, err := intake.Report(ctx, in); !errs.IsValidation(err) {
		t.Errorf("missing patient: got %v", err)
	}

	for _, sev := range []int{0, 6, -1} {
		if _, err := intake.Report(ctx, reportInput(sev)); !errs.IsValidation(err) {
			t.Errorf("severity %d: got %v, want validation error", sev, err)
		}
	}

	in = reportInput(3)
	in.Symptoms = nil
	if _, err := intake.Report(ctx, in); !errs.IsValidation(err) {
		t.Errorf("no symptoms: got %v", err)
	}
}

func TestReviewResolves(t *testing.T) {
	intake, _, _ := fixture()
	ctx := context.Background()

	rep, err := intake.Report(ctx, reportInput(3))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	followUp := time.Now().UTC().AddDate(0, 0, 3)
	reviewed, err := intake.Review(ctx, rep.ID, ReviewInput{
		Reviewer:     "dr-lee",
		Notes:        "likely transient",
		ActionTaken:  "dose reduced",
		IsResolved:   true,
		FollowUpDate: &followUp,
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if !reviewed.IsResolved || reviewed.ResolvedAt == nil {
		t.Error("resolved review must stamp resolution")
	}
	if reviewed.ReviewedBy != "dr-lee" || reviewed.ReviewedAt == nil {
		t.Error("review audit fields must be stamped")
	}
}

func TestReviewUnresolvedKeepsOpen(t *testing.T) {
	intake, _, _ := fixture()
	ctx := context.Background()

	rep, err := intake.Report(ctx, reportInput(4))
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	reviewed, err := intake.Review(ctx, rep.ID, ReviewInput{Reviewer: "dr-lee"})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.IsResolved || reviewed.ResolvedAt != nil {
		t.Error("review without resolution must keep the report open")
	}
}

func TestReviewRequiresReviewer(t *testing.T) {
	intake, _, _ := fixture()
	if _, err := intake.Review(context.Background(), uuid.New(), ReviewInput{}); !errs.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}
