package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/administration"
	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/observability/metrics"
	"github.com/carelink/medsafe/pkg/idempotency"
)

// AdministrationHandler handles dose-event endpoints. Recording runs
// through the idempotency inbox so a retried submission from a flaky
// caregiver connection does not double-append.
type AdministrationHandler struct {
	recorder *administration.Recorder
	inbox    *idempotency.Inbox
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAdministrationHandler creates a new handler. inbox may be nil, in
// which case every submission is recorded as-is.
func NewAdministrationHandler(recorder *administration.Recorder, inbox *idempotency.Inbox, m *metrics.Metrics, logger *zap.Logger) *AdministrationHandler {
	return &AdministrationHandler{recorder: recorder, inbox: inbox, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *AdministrationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Record)
	return r
}

// RecordRequest is the request body for a dose event.
type RecordRequest struct {
	MedicationID    string     `json:"medication_id"`
	PatientID       string     `json:"patient_id"`
	ScheduledTime   time.Time  `json:"scheduled_time"`
	ActualTime      *time.Time `json:"actual_time,omitempty"`
	Status          string     `json:"status"`
	DosageGiven     string     `json:"dosage_given,omitempty"`
	SideEffects     []string   `json:"side_effects,omitempty"`
	PatientResponse *int       `json:"patient_response,omitempty"`
	Witness         string     `json:"witness,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// Record handles POST /administrations.
func (h *AdministrationHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	medicationID, err := uuid.Parse(req.MedicationID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "medication_id must be a valid UUID")
		return
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "patient_id must be a valid UUID")
		return
	}

	in := administration.RecordInput{
		MedicationID:    medicationID,
		PatientID:       patientID,
		ScheduledTime:   req.ScheduledTime,
		ActualTime:      req.ActualTime,
		Status:          administration.Status(req.Status),
		DosageGiven:     req.DosageGiven,
		SideEffects:     req.SideEffects,
		PatientResponse: req.PatientResponse,
		Witness:         req.Witness,
		Notes:           req.Notes,
	}

	if h.inbox == nil {
		event, err := h.recorder.Record(ctx, in)
		if err != nil {
			respondDomainError(w, h.logger, err)
			return
		}
		h.countDose(event.Status)
		respondJSON(w, http.StatusCreated, event)
		return
	}

	key := r.Header.Get("X-Idempotency-Key")
	if key == "" {
		key = idempotency.GenerateKey(req.PatientID, req.MedicationID, req.Status, req.ScheduledTime)
	}

	payload, _ := json.Marshal(req)
	result, err := h.inbox.Process(ctx, key, "record_administration", payload,
		func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
			event, err := h.recorder.Record(ctx, in)
			if err != nil {
				return nil, err
			}
			h.countDose(event.Status)
			return json.Marshal(event)
		})
	if err != nil {
		if errors.Is(err, idempotency.ErrSubmissionInProgress) {
			respondError(w, http.StatusConflict, "submission already in progress")
			return
		}
		respondDomainError(w, h.logger, err)
		return
	}

	code := http.StatusCreated
	if !result.IsNew {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(result.Result)
}

// ListByMedication handles GET /medications/{id}/administrations.
func (h *AdministrationHandler) ListByMedication(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	events, err := h.recorder.ListByMedication(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// ListByPatient handles GET /patients/{patientID}/administrations.
func (h *AdministrationHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "patientID must be a valid UUID")
		return
	}

	events, err := h.recorder.ListByPatient(r.Context(), patientID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *AdministrationHandler) countDose(status administration.Status) {
	if h.metrics != nil {
		h.metrics.DosesRecorded.WithLabelValues(string(status)).Inc()
		if status == administration.StatusMissed || status == administration.StatusRefused {
			h.metrics.AlertsRaised.WithLabelValues(string(alert.TypeMissedDose)).Inc()
		}
	}
}
