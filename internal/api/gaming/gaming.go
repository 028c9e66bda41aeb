package gaming

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"zodiac_backend/internal/api"
	dto "zodiac_backend/internal/api/dto/gaming"
	"zodiac_backend/internal/converter"
	"zodiac_backend/internal/service"
	"zodiac_backend/pkg/req"
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

// Spin прогоняет спин через проверки. Отказ - это 200 с allowed=false
func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.SpinRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Bet <= 0 || payload.WinAmount < 0 {
		resp.WriteError(w, http.StatusBadRequest, "bet must be positive and win_amount non-negative")
		return
	}

	outcome, err := h.serv.RecordSpinAttempt(r.Context(), playerID(r), converter.ToSpinAttempt(payload))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToSpinResponse(outcome))
}

func (h *Handler) RequestConfirmation(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.ConfirmationRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Amount <= 0 {
		resp.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	c, err := h.serv.RequestConfirmation(r.Context(), playerID(r), payload.Amount)
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if c.Required {
		status = http.StatusCreated
	}
	resp.WriteJSONResponse(w, status, converter.ToConfirmationResponse(c))
}

func (h *Handler) ResolveConfirmation(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.ResolveConfirmationRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.serv.ResolveConfirmation(r.Context(), playerID(r), chi.URLParam(r, "id"), payload.Approved)
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToConfirmationResponse(c))
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.serv.GamingState(r.Context(), playerID(r))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(state))
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.serv.GamingAlerts(r.Context(), playerID(r))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToGameAlertsResponse(alerts))
}

// DismissAlert Обязательные алерты не закрываются, ответ всё равно 204
func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	err := h.serv.DismissAlert(r.Context(), playerID(r), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TakeBreak(w http.ResponseWriter, r *http.Request) {
	state, err := h.serv.TakeMandatoryBreak(r.Context(), playerID(r))
	if err != nil {
		api.WriteServiceError(w, h.logger, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(state))
}

func playerID(r *http.Request) string {
	return service.PlayerIDFromContext(r.Context())
}
