package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/reels", func(r chi.Router) {
			r.Get("/", c.listReels)
			r.Post("/", c.addReel)
			r.Post("/reorder", c.dragMove)
			r.Post("/shuffle", c.shuffle)
			r.Route("/{reel-id}", func(r chi.Router) {
				r.Delete("/", c.deleteReel)
				r.Patch("/visibility", c.toggleVisibility)
				r.Post("/move", c.adjacentMove)
			})
		})

		r.Get("/feed", c.getFeed)
		r.Route("/ws", func(r chi.Router) {
			r.Get("/feed", c.feedWS)
		})
	})

	return r
}
