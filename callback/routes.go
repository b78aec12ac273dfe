package callback

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Routes(h *Handler, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.ServeNotifications)
		r.Post("/{id}/click", h.ServeClick)
	})

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", h.ServeRegisterClient)
		r.Put("/{id}", h.ServeNavigateClient)
		r.Delete("/{id}", h.ServeRemoveClient)
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
