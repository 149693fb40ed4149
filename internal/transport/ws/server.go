package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/wedding-dream/messaging-service/internal/auth"
	"github.com/wedding-dream/messaging-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type ThreadSvc interface {
	Authorize(ctx context.Context, threadID string, userID int64) error
}

type MessageSvc interface {
	Send(ctx context.Context, threadID string, senderID int64, text string) (*domain.Message, error)
}

type Resolver interface {
	Resolve(r *http.Request) auth.Identity
}

type Limiter interface {
	AllowConn(ctx context.Context, ip string) bool
	AllowMessage(ctx context.Context, ident string) bool
}

type Server struct {
	upgrader  websocket.Upgrader
	hub       *Hub
	threadSvc ThreadSvc
	msgSvc    MessageSvc
	resolver  Resolver
	limiter   Limiter

	pingEvery time.Duration
}

func NewServer(hub *Hub, threads ThreadSvc, messages MessageSvc, resolver Resolver, limiter Limiter, allowedOrigins []string) *Server {
	return &Server{
		hub:       hub,
		threadSvc: threads,
		msgSvc:    messages,
		resolver:  resolver,
		limiter:   limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		pingEvery: 15 * time.Second,
	}
}

// Пустой allowlist — без проверки; запрос без Origin (не-браузерный клиент)
// проходит всегда.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == origin {
				return true
			}
		}
		return false
	}
}

// WS endpoint: GET /ws/threads/{id}
// Подключение проходит машину состояний: admission по IP -> аутентификация
// -> членство в треде -> streaming. Любой выход из streaming идёт через
// одну и ту же уборку (hub.Remove + close), она идемпотентна.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	// admission по IP: при превышении бюджета хендшейк молча не состоится —
	// злоумышленнику не сообщаем, почему его не пустили
	if !s.limiter.AllowConn(r.Context(), realIP(r)) {
		return
	}

	ident := s.resolver.Resolve(r)
	if ident.Anonymous {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	threadID := chi.URLParam(r, "id")
	if err := s.threadSvc.Authorize(r.Context(), threadID, ident.UserID); err != nil {
		// и для чужого, и для несуществующего треда — одинаковый not found
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "thread", threadID, "err", err)
		return
	}

	c := newWSConn(conn, threadID, ident.UserID)
	s.hub.Add(c)

	defer func() {
		s.hub.Remove(c)
		_ = c.Close()
	}()

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		// бюджет списывается с каждого входящего фрейма, включая битые:
		// поток мусора не обходит лимит
		if !s.limiter.AllowMessage(ctx, c.Ident()) {
			// различимый close code «попробуй позже»: канал закрывается
			// чисто, у клиента не остаётся «зависшего» сообщения
			c.CloseWith(websocket.CloseTryAgainLater, "rate limited")
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue // битый фрейм — не повод рвать канал
		}
		if frame.Type != TypeMessage {
			continue
		}

		if _, err := s.msgSvc.Send(ctx, c.threadID, c.userID, frame.Text); err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
				continue // защита от дребезга клиента, молча пропускаем
			default:
				// стор недоступен либо членство отозвано: закрываем, клиент
				// переподключится и дочитает историю
				slog.Warn("ws send failed", "thread", c.threadID, "user", c.userID, "err", err)
				return
			}
		}
		// broadcast делает MessageService, строго после durable append
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func realIP(r *http.Request) string {
	// chi middleware.RealIP уже переписал RemoteAddr из X-Forwarded-For
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
