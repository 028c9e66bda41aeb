// Package stream pushes compliance alerts to the client over a websocket.
package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"zodiac_backend/internal/converter"
	"zodiac_backend/internal/model"
	"zodiac_backend/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

const (
	MessageBehaviorAlert = "behavior_alert"
	MessageGamingAlerts  = "gaming_alerts"
)

type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type HandlerDeps struct {
	Serv           service.ComplianceService
	AllowedOrigins []string
	Logger         *zap.Logger
}

type Handler struct {
	serv     service.ComplianceService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{serv: deps.Serv, logger: deps.Logger}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(deps.AllowedOrigins)}
	return h
}

// Alerts GET /alerts/stream. Пока соединение живо, клиент получает алерты своего игрока
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	playerID := service.PlayerIDFromContext(r.Context())

	// Подписка до апгрейда: после рукопожатия клиент не теряет алерты
	events, unsubscribe := h.serv.SubscribeAlerts(playerID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	done := make(chan struct{})

	go readPump(conn, done)
	h.writePump(conn, events, done)

	unsubscribe()
	_ = conn.Close()
}

func (h *Handler) writePump(conn *websocket.Conn, events <-chan model.AlertEvent, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(toMessage(ev)); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readPump Клиент ничего не шлёт, читаем только чтобы заметить закрытие
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func toMessage(ev model.AlertEvent) WSMessage {
	if ev.Source == model.AlertSourceBehavior && ev.Behavior != nil {
		return WSMessage{Type: MessageBehaviorAlert, Payload: converter.ToBehaviorAlertResponse(*ev.Behavior)}
	}
	return WSMessage{Type: MessageGamingAlerts, Payload: converter.ToGameAlertsResponse(ev.Gaming)}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
