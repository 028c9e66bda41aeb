package behavior

import (
	"net/http"

	"go.uber.org/zap"

	"zodiac_backend/internal/api"
	"zodiac_backend/internal/converter"
	"zodiac_backend/internal/service"
	"zodiac_backend/pkg/resp"
)

type HandlerDeps struct {
	Serv   service.ComplianceService
	Logger *zap.Logger
}

type Handler struct {
	serv   service.ComplianceService
	logger *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, logger: deps.Logger}
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.serv.BehaviorMetrics(r.Context(), service.PlayerIDFromContext(r.Context()))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBehaviorMetricsResponse(metrics))
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.serv.BehaviorAlerts(r.Context(), service.PlayerIDFromContext(r.Context()))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBehaviorAlertsResponse(alerts))
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	data, err := h.serv.BehaviorAudit(r.Context(), service.PlayerIDFromContext(r.Context()))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBehaviorAuditResponse(data))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.serv.ResetBehavior(r.Context(), service.PlayerIDFromContext(r.Context())); err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
