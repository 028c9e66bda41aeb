package audit

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"zodiac_backend/internal/api"
	dto "zodiac_backend/internal/api/dto/audit"
	"zodiac_backend/internal/converter"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/service"
	"zodiac_backend/pkg/req"
	"zodiac_backend/pkg/resp"
)

const (
	defaultLogsLimit = 100
	maxLogsLimit     = 1000
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

// LogEvent Клиентское событие (feature_used, settings_change, page_view, balance_change)
func (h *Handler) LogEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.EventRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.serv.LogEvent(r.Context(), playerID(r), model.AuditAction(payload.Action), payload.Data)
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Logs ?limit=N, по умолчанию 100
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			resp.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLogsLimit)
	}

	entries, err := h.serv.RecentLogs(r.Context(), playerID(r), limit)
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToLogEntriesResponse(entries))
}

// RTP ?timeframe=1h, без параметра за всю историю
func (h *Handler) RTP(w http.ResponseWriter, r *http.Request) {
	var timeframe time.Duration
	if raw := r.URL.Query().Get("timeframe"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			resp.WriteError(w, http.StatusBadRequest, "timeframe must be a positive duration")
			return
		}
		timeframe = d
	}

	analysis, err := h.serv.AnalyzeRTP(r.Context(), playerID(r), timeframe)
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToRTPResponse(analysis))
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.serv.ComplianceReport(r.Context(), playerID(r))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToReportResponse(report))
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.serv.SessionMetrics(r.Context(), playerID(r))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSessionMetricsResponse(metrics))
}

func playerID(r *http.Request) string {
	return service.PlayerIDFromContext(r.Context())
}
