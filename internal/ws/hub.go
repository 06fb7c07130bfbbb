package ws

import (
	"encoding/json"
	"sync"

	"agent_shopping/internal/domain"
	"agent_shopping/pkg/logger"
)

// Session — живое подключение участника комнаты. Реализуется Client;
// в тестах подменяется фейком.
type Session interface {
	Deliver(payload []byte)
	Kick()
}

// Hub держит членство комнат. Комната = привязка; после Evict комната
// закрыта навсегда, повторный вход невозможен. Надгробия в evicted не
// чистятся: идентификаторы привязок не переиспользуются, а запись —
// десятки байт на разрыв за время жизни процесса.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[Session]bool
	evicted map[string]bool
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[Session]bool),
		evicted: make(map[string]bool),
		log:     log,
	}
}

// Join регистрирует сессию в комнате и рассылает системное сообщение о входе
// всем участникам, включая вошедшего. Авторизацию по привязке выполняет
// вызывающая сторона до Join; здесь отсекаются только закрытые комнаты.
func (h *Hub) Join(roomID string, displayName string, s Session) bool {
	h.mu.Lock()
	if h.evicted[roomID] {
		h.mu.Unlock()
		return false
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[Session]bool)
	}
	h.rooms[roomID][s] = true
	h.mu.Unlock()

	h.Broadcast(roomID, domain.ChatEvent{
		Type:    domain.EventTypeSystem,
		RoomID:  roomID,
		Sender:  "system",
		Content: displayName + " joined",
	})

	return true
}

// Leave убирает сессию из комнаты; вызывается при разрыве соединения
func (h *Hub) Leave(roomID string, s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members := h.rooms[roomID]; members != nil {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Evict закрывает комнату после удаления привязки: все живые сессии
// отключаются, новые Join и Broadcast в эту комнату не принимаются
func (h *Hub) Evict(roomID string) {
	h.mu.Lock()
	members := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.evicted[roomID] = true
	h.mu.Unlock()

	for s := range members {
		s.Kick()
	}

	h.log.Info("Chat room evicted", "room_id", roomID)
}

// Broadcast рассылает событие всем участникам комнаты
func (h *Hub) Broadcast(roomID string, event domain.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to marshal chat event", "error", err, "room_id", roomID)
		return
	}

	h.mu.RLock()
	if h.evicted[roomID] {
		h.mu.RUnlock()
		return
	}
	members := make([]Session, 0, len(h.rooms[roomID]))
	for s := range h.rooms[roomID] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	for _, s := range members {
		s.Deliver(payload)
	}
}
