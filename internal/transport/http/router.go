package http

import (
	"net/http"
	"time"

	httpmw "github.com/wedding-dream/messaging-service/internal/transport/http/middleware"
	"github.com/wedding-dream/messaging-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, authn httpmw.Authenticator, wsServer *ws.Server, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// WS endpoint: admission и аутентификацию делает сам обработчик
	r.Get("/ws/threads/{id}", wsServer.HandleWS)

	r.Route("/api/v1", func(api chi.Router) {
		// анонимная contact-заявка, лимит по IP внутри обработчика
		api.Post("/contact", h.CreateContact)

		api.Group(func(pr chi.Router) {
			pr.Use(httpmw.AuthMiddleware(authn))
			pr.Use(middlewareChi.Timeout(30 * time.Second))

			pr.Route("/threads", func(th chi.Router) {
				th.Post("/start", h.StartThread)
				th.Get("/", h.ListThreads)

				th.Route("/{id}", func(tr chi.Router) {
					tr.Get("/", h.GetThread)
					tr.Get("/messages", h.ListMessages)
					tr.Post("/messages", h.PostMessage)
					tr.Post("/read", h.MarkRead)
				})
			})
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
