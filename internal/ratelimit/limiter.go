package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	kindConn    = "conn"
	kindMsg     = "msg"
	kindContact = "contact"

	// TTL == два окна: бакет доживает до конца следующей минуты и исчезает.
	bucketTTL = 2 * time.Minute
	hourTTL   = 2 * time.Hour
)

type Config struct {
	ConnPerMinute  int // подключения с одного IP
	MsgPerMinute   int // сообщения одного пользователя
	ContactPerHour int // contact-заявки с одного IP
}

// Limiter — admission control на фиксированных минутных окнах.
// При недоступности счётчика пропускает (fail-open): доступность переписки
// важнее строгого ограничения на время инцидента инфраструктуры.
type Limiter struct {
	counter Counter
	cfg     Config
}

func NewLimiter(counter Counter, cfg Config) *Limiter {
	if cfg.ConnPerMinute <= 0 {
		cfg.ConnPerMinute = 60
	}
	if cfg.MsgPerMinute <= 0 {
		cfg.MsgPerMinute = 120
	}
	if cfg.ContactPerHour <= 0 {
		cfg.ContactPerHour = 20
	}
	return &Limiter{counter: counter, cfg: cfg}
}

func bucketKey(kind, ident string, window time.Duration) string {
	return fmt.Sprintf("wsrl:%s:%s:%d", kind, ident, time.Now().Unix()/int64(window.Seconds()))
}

func (l *Limiter) allow(ctx context.Context, kind, ident string, budget int, window, ttl time.Duration) bool {
	count, err := l.counter.Incr(ctx, bucketKey(kind, ident, window), ttl)
	if err != nil {
		slog.Warn("rate counter unavailable, failing open", "kind", kind, "err", err)
		return true
	}
	return count <= int64(budget)
}

// AllowConn — бюджет подключений для IP в текущую минуту.
func (l *Limiter) AllowConn(ctx context.Context, ip string) bool {
	return l.allow(ctx, kindConn, ip, l.cfg.ConnPerMinute, time.Minute, bucketTTL)
}

// AllowMessage — бюджет сообщений для пользователя в текущую минуту.
func (l *Limiter) AllowMessage(ctx context.Context, ident string) bool {
	return l.allow(ctx, kindMsg, ident, l.cfg.MsgPerMinute, time.Minute, bucketTTL)
}

// AllowContact — бюджет анонимных contact-заявок для IP в текущий час.
func (l *Limiter) AllowContact(ctx context.Context, ip string) bool {
	return l.allow(ctx, kindContact, ip, l.cfg.ContactPerHour, time.Hour, hourTTL)
}
