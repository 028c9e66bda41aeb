package session

import (
	"net/http"

	"go.uber.org/zap"

	"zodiac_backend/internal/api"
	dto "zodiac_backend/internal/api/dto/session"
	"zodiac_backend/internal/converter"
	"zodiac_backend/internal/service"
	"zodiac_backend/pkg/req"
	"zodiac_backend/pkg/resp"
)

type HandlerDeps struct {
	Identity   service.IdentityService
	Compliance service.ComplianceService
	Logger     *zap.Logger
}

type Handler struct {
	identity   service.IdentityService
	compliance service.ComplianceService
	logger     *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		identity:   deps.Identity,
		compliance: deps.Compliance,
		logger:     deps.Logger,
	}
}

// Start открывает анонимную игровую сессию и возвращает access_token
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	requestBody, err := req.Decode[dto.StartRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.identity.StartSession(
		r.Context(),
		requestBody.DeviceID,
		converter.ToDeviceInfo(requestBody, r.UserAgent()),
	)
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToStartResponse(*session))
}

// End закрывает сессию: итоги уходят в аудит
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.compliance.EndSession(r.Context(), service.PlayerIDFromContext(r.Context()))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSessionMetricsResponse(metrics))
}
