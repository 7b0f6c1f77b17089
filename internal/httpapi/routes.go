package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-show-backend/internal/ws"
)

func SetupRoutes(a *API) http.Handler {
	if a.Log == nil {
		a.Log = zap.NewNop()
	}
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(a.Hub, a.Log))

	r.Post("/sessions", a.CreateSession)
	r.Route("/sessions/{code}", func(r chi.Router) {
		r.Get("/state", a.State)
		r.Delete("/", a.DeleteSession)
		r.Post("/actions", a.Dispatch)
		r.Post("/undo", a.Undo)
		r.Get("/history", a.History)
		r.Delete("/history", a.ClearHistory)
		r.Post("/timer", a.Timer)
		r.Get("/categories", a.Categories)
	})
	return r
}
