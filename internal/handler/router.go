package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/internal/middleware"
)

// NewRouter registers all routes. Fixed paths are registered before the
// catch-all short code route.
func NewRouter(h *URLHandler, logger logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware, middleware.LoggingMiddleware(logger))

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/shorten", h.ShortenURL).Methods(http.MethodPost)
	r.HandleFunc("/api/urls/{shortCode}/stats", h.Stats).Methods(http.MethodGet)
	r.HandleFunc("/{shortCode}", h.RedirectURL).Methods(http.MethodGet)

	return r
}
