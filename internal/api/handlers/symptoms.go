package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/api/middleware"
	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/domain/symptom"
	"github.com/carelink/medsafe/internal/observability/metrics"
)

// SymptomHandler handles symptom intake and review endpoints.
type SymptomHandler struct {
	intake  *symptom.Intake
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSymptomHandler creates a new handler.
func NewSymptomHandler(intake *symptom.Intake, m *metrics.Metrics, logger *zap.Logger) *SymptomHandler {
	return &SymptomHandler{intake: intake, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *SymptomHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Report)
	r.Post("/{id}/review", h.Review)
	return r
}

// ReportRequest is the request body for a symptom report.
type ReportRequest struct {
	PatientID    string     `json:"patient_id"`
	MedicationID *string    `json:"medication_id,omitempty"`
	Symptoms     []string   `json:"symptoms"`
	Severity     int        `json:"severity"`
	Description  string     `json:"description,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
}

// Report handles POST /symptoms.
func (h *SymptomHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "patient_id must be a valid UUID")
		return
	}

	in := symptom.ReportInput{
		PatientID:   patientID,
		Symptoms:    req.Symptoms,
		Severity:    req.Severity,
		Description: req.Description,
	}
	if req.MedicationID != nil {
		medID, err := uuid.Parse(*req.MedicationID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "medication_id must be a valid UUID")
			return
		}
		in.MedicationID = &medID
	}
	if req.StartedAt != nil {
		in.StartedAt = *req.StartedAt
	}

	rep, err := h.intake.Report(r.Context(), in)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SymptomReports.Inc()
		if rep.Severity >= 4 {
			h.metrics.AlertsRaised.WithLabelValues(string(alert.TypeSideEffect)).Inc()
		}
	}
	respondJSON(w, http.StatusCreated, rep)
}

// ReviewRequest is the request body for a clinical review.
type ReviewRequest struct {
	Reviewer     string     `json:"reviewer,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	ActionTaken  string     `json:"action_taken,omitempty"`
	IsResolved   bool       `json:"is_resolved"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
}

// Review handles POST /symptoms/{id}/review.
func (h *SymptomHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reviewer := req.Reviewer
	if reviewer == "" {
		reviewer = middleware.GetCaller(ctx)
	}

	rep, err := h.intake.Review(ctx, id, symptom.ReviewInput{
		Reviewer:     reviewer,
		Notes:        req.Notes,
		ActionTaken:  req.ActionTaken,
		IsResolved:   req.IsResolved,
		FollowUpDate: req.FollowUpDate,
	})
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, rep)
}

// ListByPatient handles GET /patients/{patientID}/symptoms.
func (h *SymptomHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "patientID must be a valid UUID")
		return
	}

	reps, err := h.intake.ListByPatient(r.Context(), patientID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, reps)
}
