package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/api/middleware"
	"github.com/carelink/medsafe/internal/domain/alert"
	"github.com/carelink/medsafe/internal/observability/metrics"
)

// AlertHandler exposes the alert feed and acknowledgement.
type AlertHandler struct {
	manager *alert.Manager
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAlertHandler creates a new handler.
func NewAlertHandler(manager *alert.Manager, m *metrics.Metrics, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{manager: manager, metrics: m, logger: logger}
}

// Routes returns the handler routes.
func (h *AlertHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}/acknowledge", h.Acknowledge)
	return r
}

// AcknowledgeRequest names the caregiver acknowledging the alert. When
// empty, the authenticated caller identity is used.
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

// Acknowledge handles POST /alerts/{id}/acknowledge.
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	var req AcknowledgeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	actor := req.AcknowledgedBy
	if actor == "" {
		actor = middleware.GetCaller(ctx)
	}

	a, err := h.manager.Acknowledge(ctx, id, actor)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AlertsAcknowledged.Inc()
	}
	respondJSON(w, http.StatusOK, a)
}

// ListByPatient handles GET /patients/{patientID}/alerts. The
// unacknowledged=true query parameter narrows to open alerts.
func (h *AlertHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "patientID must be a valid UUID")
		return
	}

	var (
		alerts []*alert.Alert
	)
	if r.URL.Query().Get("unacknowledged") == "true" {
		alerts, err = h.manager.ListUnacknowledged(r.Context(), patientID)
	} else {
		alerts, err = h.manager.ListByPatient(r.Context(), patientID)
	}
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}
