package compliance

import (
	"sync"

	"zodiac_backend/internal/model"
)

// streamBuffer Размер буфера канала подписчика
const streamBuffer = 64

// hub fans alert events out to per-player stream subscribers. A subscriber
// that cannot keep up loses events instead of blocking the pipeline.
type hub struct {
	mtx    sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]chan model.AlertEvent
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[uint64]chan model.AlertEvent)}
}

func (h *hub) subscribe(playerID string) (<-chan model.AlertEvent, func()) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan model.AlertEvent, streamBuffer)
	if h.subs[playerID] == nil {
		h.subs[playerID] = make(map[uint64]chan model.AlertEvent)
	}
	h.subs[playerID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mtx.Lock()
			defer h.mtx.Unlock()
			if player, ok := h.subs[playerID]; ok {
				if c, ok := player[id]; ok {
					delete(player, id)
					close(c)
				}
				if len(player) == 0 {
					delete(h.subs, playerID)
				}
			}
		})
	}
}

func (h *hub) publish(playerID string, ev model.AlertEvent) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	for _, ch := range h.subs[playerID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// closePlayer ends every stream of playerID.
func (h *hub) closePlayer(playerID string) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	for _, ch := range h.subs[playerID] {
		close(ch)
	}
	delete(h.subs, playerID)
}
