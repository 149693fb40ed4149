package ws

import (
	"sync"

	"github.com/wedding-dream/messaging-service/internal/domain"
)

type Conn interface {
	Deliver(msg *domain.Message) error
	Close() error
	UserID() int64
	ThreadID() string
}

// Hub держит runtime-отображение thread -> живые подключения. Состояние не
// персистится: после рестарта клиенты переподключаются и переподписываются.
type Hub struct {
	mu      sync.RWMutex
	threads map[string]map[Conn]struct{} // threadID -> set of connections
}

func NewHub() *Hub {
	return &Hub{threads: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ts, ok := h.threads[c.ThreadID()]
	if !ok {
		ts = make(map[Conn]struct{})
		h.threads[c.ThreadID()] = ts
	}
	ts[c] = struct{}{}
}

// Remove идемпотентен: безопасно звать на уже снятом подключении.
func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ts, ok := h.threads[c.ThreadID()]; ok {
		delete(ts, c)
		if len(ts) == 0 {
			delete(h.threads, c.ThreadID())
		}
	}
}

// Broadcast доставляет сообщение каждому подписчику треда, включая другие
// подключения самого отправителя. Ошибка доставки одному подключению не
// мешает остальным: сбойное снимается с подписки и закрывается.
func (h *Hub) Broadcast(threadID string, msg *domain.Message) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.threads[threadID]))
	for c := range h.threads[threadID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.Deliver(msg); err != nil {
			h.Remove(c)
			_ = c.Close()
		}
	}
}

// Subscribers — текущий размер broadcast-группы треда.
func (h *Hub) Subscribers(threadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.threads[threadID])
}
