package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/api/middleware"
	"github.com/carelink/medsafe/internal/domain/medication"
	"github.com/carelink/medsafe/internal/observability/metrics"
)

// MedicationHandler handles prescription lifecycle endpoints.
type MedicationHandler struct {
	registry *medication.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewMedicationHandler creates a new handler.
func NewMedicationHandler(registry *medication.Registry, m *metrics.Metrics, logger *zap.Logger) *MedicationHandler {
	return &MedicationHandler{registry: registry, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *MedicationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/discontinue", h.Discontinue)
	return r
}

// CreateMedicationRequest is the request body for prescribing.
type CreateMedicationRequest struct {
	PatientID    string     `json:"patient_id"`
	PrescriberID string     `json:"prescriber_id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Frequency    string     `json:"frequency"`
	Route        string     `json:"route"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	IsPRN        bool       `json:"is_prn"`
	Priority     string     `json:"priority,omitempty"`
	Instructions string     `json:"instructions"`
}

// Create handles POST /medications.
func (h *MedicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("medication-handler")
	ctx, span := tracer.Start(ctx, "create_medication")
	defer span.End()

	var req CreateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "patient_id must be a valid UUID")
		return
	}
	prescriberID, err := uuid.Parse(req.PrescriberID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "prescriber_id must be a valid UUID")
		return
	}

	in := medication.CreateInput{
		PatientID:    patientID,
		PrescriberID: prescriberID,
		Name:         req.Name,
		Dosage:       req.Dosage,
		Frequency:    medication.Frequency(req.Frequency),
		Route:        medication.Route(req.Route),
		IsPRN:        req.IsPRN,
		Priority:     medication.Priority(req.Priority),
		Instructions: req.Instructions,
		CreatedBy:    middleware.GetCaller(ctx),
	}
	if req.StartDate != nil {
		in.StartDate = *req.StartDate
	}

	result, err := h.registry.Create(ctx, in)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	span.SetAttributes(
		attribute.String("medication_id", result.Medication.ID.String()),
		attribute.Int("interactions", len(result.Interactions)),
	)

	if h.metrics != nil {
		h.metrics.MedicationsCreated.Inc()
		for _, ix := range result.Interactions {
			h.metrics.InteractionsDetected.WithLabelValues(string(ix.Severity)).Inc()
		}
		for _, a := range result.Alerts {
			h.metrics.AlertsRaised.WithLabelValues(string(a.Type)).Inc()
		}
	}

	respondJSON(w, http.StatusCreated, result)
}

// Get handles GET /medications/{id}.
func (h *MedicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	med, err := h.registry.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, med)
}

// UpdateMedicationRequest carries partial changes. Absent fields are
// left untouched.
type UpdateMedicationRequest struct {
	Dosage       *string `json:"dosage,omitempty"`
	Frequency    *string `json:"frequency,omitempty"`
	Route        *string `json:"route,omitempty"`
	Priority     *string `json:"priority,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// Update handles PUT /medications/{id}.
func (h *MedicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	var req UpdateMedicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := medication.UpdateInput{
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
	}
	if req.Frequency != nil {
		f := medication.Frequency(*req.Frequency)
		in.Frequency = &f
	}
	if req.Route != nil {
		rt := medication.Route(*req.Route)
		in.Route = &rt
	}
	if req.Priority != nil {
		p := medication.Priority(*req.Priority)
		in.Priority = &p
	}

	med, err := h.registry.Update(ctx, id, in, middleware.GetCaller(ctx))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, med)
}

// DiscontinueRequest is the request body for discontinuation.
type DiscontinueRequest struct {
	Reason string `json:"reason"`
}

// Discontinue handles POST /medications/{id}/discontinue.
func (h *MedicationHandler) Discontinue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	var req DiscontinueRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	med, err := h.registry.Discontinue(ctx, id, middleware.GetCaller(ctx), req.Reason)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.MedicationsDiscontinued.Inc()
	}
	respondJSON(w, http.StatusOK, med)
}

// ListByPatient handles GET /patients/{patientID}/medications.
func (h *MedicationHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "patientID must be a valid UUID")
		return
	}

	meds, err := h.registry.ListByPatient(r.Context(), patientID)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}
