package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/wedding-dream/messaging-service/internal/domain"
	"github.com/wedding-dream/messaging-service/internal/service"
	httpmw "github.com/wedding-dream/messaging-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type ContactLimiter interface {
	AllowContact(ctx context.Context, ip string) bool
}

type Handler struct {
	threadSvc  *service.ThreadService
	msgSvc     *service.MessageService
	contactSvc *service.ContactService
	limiter    ContactLimiter
}

func NewHandler(threads *service.ThreadService, messages *service.MessageService, contacts *service.ContactService, limiter ContactLimiter) *Handler {
	return &Handler{
		threadSvc:  threads,
		msgSvc:     messages,
		contactSvc: contacts,
		limiter:    limiter,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func threadItem(t *domain.Thread, unread int64) ThreadItem {
	return ThreadItem{
		ID:          t.ID,
		ListingID:   t.ListingID,
		LastUpdated: t.LastUpdated,
		CreatedAt:   t.CreatedAt,
		UnreadCount: unread,
	}
}

func messageItems(msgs []domain.Message, viewerID int64) []MessageItem {
	items := make([]MessageItem, 0, len(msgs))
	for _, m := range msgs {
		sender := "other"
		if m.SenderID == viewerID {
			sender = "me"
		}
		items = append(items, MessageItem{
			ID:        m.ID,
			ThreadID:  m.ThreadID,
			Sender:    sender,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return items
}

// page=last — шорткат «сразу к свежим».
func pageParams(r *http.Request) (page, pageSize int, last bool) {
	q := r.URL.Query()
	if s := q.Get("page"); s == "last" {
		last = true
	} else if s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			page = n
		}
	}
	if s := q.Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			pageSize = n
		}
	}
	return page, pageSize, last
}

// POST /api/v1/threads/start
func (h *Handler) StartThread(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())

	var req StartThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	thread, created, err := h.threadSvc.Start(r.Context(), req.ListingID, req.ParticipantID, ident.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "listing not found"})
			return
		}
		slog.Error("handler.StartThread:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, StartThreadResponse{ThreadItem: threadItem(thread, 0), Created: created})
}

// GET /api/v1/threads
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())

	rows, err := h.threadSvc.ListMine(r.Context(), ident.UserID)
	if err != nil {
		slog.Error("handler.ListThreads:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	resp := ThreadsListResponse{Items: make([]ThreadItem, 0, len(rows))}
	for _, row := range rows {
		resp.Items = append(resp.Items, threadItem(&row.Thread, row.UnreadCount))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/v1/threads/{id}?page=&page_size=
// Детали треда с вложенной страницей сообщений; по умолчанию — последняя.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	threadID := chi.URLParam(r, "id")

	thread, unread, err := h.threadSvc.Detail(r.Context(), threadID, ident.UserID)
	if err != nil {
		h.writeThreadErr(w, "handler.GetThread", err)
		return
	}

	page, pageSize, last := pageParams(r)
	if page == 0 && !last {
		last = true
	}
	msgs, info, err := h.msgSvc.History(r.Context(), threadID, ident.UserID, page, pageSize, last)
	if err != nil {
		h.writeThreadErr(w, "handler.GetThread", err)
		return
	}

	writeJSON(w, http.StatusOK, ThreadDetailResponse{
		ThreadItem: threadItem(thread, unread),
		Messages:   messageItems(msgs, ident.UserID),
		Page:       info.Page,
		PageSize:   info.PageSize,
		Total:      info.Total,
	})
}

// GET /api/v1/threads/{id}/messages?page=&page_size=  (page=last поддержан)
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	threadID := chi.URLParam(r, "id")

	page, pageSize, last := pageParams(r)
	msgs, info, err := h.msgSvc.History(r.Context(), threadID, ident.UserID, page, pageSize, last)
	if err != nil {
		h.writeThreadErr(w, "handler.ListMessages", err)
		return
	}

	writeJSON(w, http.StatusOK, MessagesListResponse{
		Items:    messageItems(msgs, ident.UserID),
		Page:     info.Page,
		PageSize: info.PageSize,
		Total:    info.Total,
	})
}

// POST /api/v1/threads/{id}/messages
// Тот же путь записи, что и у websocket-отправки: append, unread++,
// broadcast живым подписчикам.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	threadID := chi.URLParam(r, "id")

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	msg, err := h.msgSvc.Send(r.Context(), threadID, ident.UserID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "text is required"})
		case errors.Is(err, domain.ErrMessageTooLong):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "text too long"})
		default:
			h.writeThreadErr(w, "handler.PostMessage", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, MessageItem{
		ID:        msg.ID,
		ThreadID:  msg.ThreadID,
		Sender:    "me",
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	})
}

// POST /api/v1/threads/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ident := httpmw.IdentityFromCtx(r.Context())
	threadID := chi.URLParam(r, "id")

	if err := h.threadSvc.MarkRead(r.Context(), threadID, ident.UserID); err != nil {
		h.writeThreadErr(w, "handler.MarkRead", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// POST /api/v1/contact — анонимная заявка, лимит по IP.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.AllowContact(r.Context(), realIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
		return
	}

	var req ContactRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	c, err := h.contactSvc.Create(r.Context(), req.ListingID, req.Name, req.EmailOrPhone, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactInvalid):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid contact request"})
		case errors.Is(err, domain.ErrListingNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "listing not found"})
		default:
			slog.Error("handler.CreateContact:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, ContactResponse{
		ID:        c.ID,
		ListingID: c.ListingID,
		CreatedAt: c.CreatedAt,
	})
}

// Не-участник и несуществующий тред неразличимы снаружи.
func (h *Handler) writeThreadErr(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrThreadNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "thread not found"})
		return
	}
	slog.Error(op+":", slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func realIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
