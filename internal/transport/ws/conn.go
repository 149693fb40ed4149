package ws

import (
	"strconv"
	"sync"
	"time"

	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn      *websocket.Conn
	threadID  string
	userID    int64
	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWSConn(c *websocket.Conn, threadID string, userID int64) *wsConn {
	return &wsConn{
		conn:     c,
		threadID: threadID,
		userID:   userID,
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

// Deliver сериализует сообщение для этого получателя: sender — «me», если
// отправитель совпадает с identity подключения, иначе «other».
func (c *wsConn) Deliver(msg *domain.Message) error {
	sender := SenderOther
	if msg.SenderID == c.userID {
		sender = SenderMe
	}
	return c.writeJSON(OutboundFrame{
		Event: EventMessage,
		Data: MessageData{
			ID:        msg.ID,
			ThreadID:  msg.ThreadID,
			Sender:    sender,
			Text:      msg.Text,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339Nano),
		},
	})
}

func (c *wsConn) writeJSON(v any) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(v)
}

// CloseWith отправляет close-фрейм с кодом (best-effort) и закрывает сокет.
func (c *wsConn) CloseWith(code int, reason string) {
	c.sendMu <- struct{}{}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	<-c.sendMu
	_ = c.Close()
}

// Close безопасен при повторных и конкурентных вызовах: уборка выполняется
// на каждом пути выхода.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}

func (c *wsConn) UserID() int64    { return c.userID }
func (c *wsConn) ThreadID() string { return c.threadID }

// Ident — ключ message-лимитера для этого подключения.
func (c *wsConn) Ident() string { return strconv.FormatInt(c.userID, 10) }
