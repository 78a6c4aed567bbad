package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Siddarth2230/shortlink/internal/models"
	"github.com/Siddarth2230/shortlink/internal/service"
)

// URLService is the part of the service the handlers need.
type URLService interface {
	ShortenURL(ctx context.Context, clientID string, req models.ShortenRequest) (*models.ShortenResponse, error)
	Resolve(ctx context.Context, clientID, shortCode string) (string, error)
	Stats(ctx context.Context, shortCode string) (*models.StatsResponse, error)
}

type URLHandler struct {
	service    URLService
	logger     logrus.FieldLogger
	trustProxy bool
}

func NewURLHandler(svc URLService, logger logrus.FieldLogger, trustProxy bool) *URLHandler {
	return &URLHandler{service: svc, logger: logger, trustProxy: trustProxy}
}

// POST /shorten
func (h *URLHandler) ShortenURL(w http.ResponseWriter, r *http.Request) {
	var req models.ShortenRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.service.ShortenURL(r.Context(), h.clientID(r), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GET /{shortCode} - redirect to long URL
func (h *URLHandler) RedirectURL(w http.ResponseWriter, r *http.Request) {
	shortCode := mux.Vars(r)["shortCode"]
	if shortCode == "" {
		writeError(w, http.StatusBadRequest, "missing short code")
		return
	}

	longURL, err := h.service.Resolve(r.Context(), h.clientID(r), shortCode)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// 302 so clients keep coming back and every click is counted
	http.Redirect(w, r, longURL, http.StatusFound)
}

// GET /api/urls/{shortCode}/stats
func (h *URLHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), mux.Vars(r)["shortCode"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /healthz
func (h *URLHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps each service outcome to exactly one status.
func (h *URLHandler) writeServiceError(w http.ResponseWriter, err error) {
	if rl, ok := service.IsRateLimited(err); ok {
		secs := int(rl.RetryAfter.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":       "too many requests",
			"retry_after": secs,
		})
		return
	}

	switch {
	case service.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "short code not found")
	case errors.Is(err, service.ErrExpired):
		writeError(w, http.StatusGone, "short URL expired")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		h.logger.WithError(err).Error("upstream unavailable")
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		h.logger.WithError(err).Error("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// clientID identifies the caller for rate limiting.
func (h *URLHandler) clientID(r *http.Request) string {
	if h.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first := strings.TrimSpace(strings.Split(fwd, ",")[0])
			if first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// helper: write JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writeJSON encode error")
	}
}

// helper: write an error message in JSON form { "error": "msg" }
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
