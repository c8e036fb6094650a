package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carelink/medsafe/internal/domain/compliance"
	"github.com/carelink/medsafe/internal/observability/metrics"
)

// ComplianceHandler answers adherence queries.
type ComplianceHandler struct {
	calc    *compliance.Calculator
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewComplianceHandler creates a new handler.
func NewComplianceHandler(calc *compliance.Calculator, m *metrics.Metrics, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{calc: calc, metrics: m, logger: logger}
}

// Report handles GET /patients/{patientID}/medications/{medicationID}/compliance.
// The window query parameter defaults to 7d.
func (h *ComplianceHandler) Report(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "patientID must be a valid UUID")
		return
	}
	medicationID, err := uuid.Parse(chi.URLParam(r, "medicationID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "medicationID must be a valid UUID")
		return
	}

	window := compliance.Window(r.URL.Query().Get("window"))
	if window == "" {
		window = compliance.Window7Days
	}

	report, err := h.calc.Calculate(r.Context(), patientID, medicationID, window)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ComplianceQueries.Inc()
	}
	respondJSON(w, http.StatusOK, report)
}
