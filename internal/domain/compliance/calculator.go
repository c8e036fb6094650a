// Package compliance computes time-windowed adherence statistics from
// the dose-event log and the active schedule. Pure read side: repeated
// calls over the same log return identical results.
package compliance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/administration"
	"github.com/carelink/medsafe/internal/domain/medication"
	"github.com/carelink/medsafe/internal/errs"
)

// Window is the adherence lookback period.
type Window string

const (
	Window24Hours Window = "24h"
	Window7Days   Window = "7d"
	Window30Days  Window = "30d"
	Window90Days  Window = "90d"
)

var windowDays = map[Window]int{
	Window24Hours: 1,
	Window7Days:   7,
	Window30Days:  30,
	Window90Days:  90,
}

// Valid reports whether w is a supported window.
func (w Window) Valid() bool { _, ok := windowDays[w]; return ok }

// Days returns the window length in days.
func (w Window) Days() int { return windowDays[w] }

// MissedDose is one missed slot, for display.
type MissedDose struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// Report is the adherence summary for one medication over a window.
type Report struct {
	PatientID         uuid.UUID    `json:"patient_id"`
	MedicationID      uuid.UUID    `json:"medication_id"`
	Window            Window       `json:"window"`
	WindowStart       time.Time    `json:"window_start"`
	TotalScheduled    int          `json:"total_scheduled"`
	TotalAdministered int          `json:"total_administered"`
	TotalMissed       int          `json:"total_missed"`
	TotalRefused      int          `json:"total_refused"`
	ComplianceRate    float64      `json:"compliance_rate"`
	MissedDoses       []MissedDose `json:"missed_doses"`
}

// Calculator answers adherence queries. It has no side effects.
type Calculator struct {
	schedules medication.ScheduleRepository
	events    administration.Repository
	logger    *zap.Logger
}

// NewCalculator creates a calculator.
func NewCalculator(schedules medication.ScheduleRepository, events administration.Repository, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{schedules: schedules, events: events, logger: logger}
}

// Calculate computes the adherence report for a medication. Compliance
// is undefined for PRN or unscheduled medications and returns a
// ScheduleUndefinedError.
//
// totalScheduled is daysInWindow × slots-per-day, a uniform-density
// approximation rather than a per-day calendar walk. A schedule change
// mid-window is therefore not reflected slot by slot; this matches the
// numbers the portal has always reported and is kept deliberately.
func (c *Calculator) Calculate(ctx context.Context, patientID, medicationID uuid.UUID, window Window) (*Report, error) {
	if !window.Valid() {
		return nil, errs.Validation("window", "must be one of 24h, 7d, 30d, 90d")
	}

	sched, err := c.schedules.ActiveByMedication(ctx, medicationID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, &errs.ScheduleUndefinedError{MedicationID: medicationID}
		}
		return nil, err
	}

	now := time.Now().UTC()
	windowStart := now.Add(-time.Duration(window.Days()) * 24 * time.Hour)

	events, err := c.events.ListByMedicationSince(ctx, medicationID, windowStart)
	if err != nil {
		return nil, err
	}

	report := &Report{
		PatientID:      patientID,
		MedicationID:   medicationID,
		Window:         window,
		WindowStart:    windowStart,
		TotalScheduled: window.Days() * len(sched.Times),
		MissedDoses:    []MissedDose{},
	}

	for _, ev := range events {
		switch ev.Status {
		case administration.StatusAdministered, administration.StatusPartial:
			report.TotalAdministered++
		case administration.StatusMissed:
			report.TotalMissed++
			report.MissedDoses = append(report.MissedDoses, missedDose(ev))
		case administration.StatusRefused:
			report.TotalRefused++
			report.MissedDoses = append(report.MissedDoses, missedDose(ev))
		}
	}

	if report.TotalScheduled > 0 {
		report.ComplianceRate = float64(report.TotalAdministered) / float64(report.TotalScheduled) * 100
	}

	return report, nil
}

func missedDose(ev *administration.Administration) MissedDose {
	reason := ev.Notes
	if reason == "" {
		reason = "No reason provided"
	}
	return MissedDose{
		Date:   ev.ScheduledTime.Format("2006-01-02"),
		Time:   ev.ScheduledTime.Format("15:04"),
		Reason: reason,
	}
}
