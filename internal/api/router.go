package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/btouchard/gof/internal/listener"
	"github.com/btouchard/gof/internal/store"
)

const (
	maxBodySize          = 64 << 10
	defaultDeliveryLimit = 50
)

// NewRouter exposes the registry over HTTP. The deliveries route is only
// mounted when journal is non-nil.
//
//	GET    /health
//	GET    /api/listeners
//	PUT    /api/listeners/{name}
//	DELETE /api/listeners/{name}
//	POST   /api/broadcast
//	GET    /api/deliveries
func NewRouter(reg *listener.Registry, journal store.Store) chi.Router {
	h := &handlers{reg: reg, journal: journal}

	r := chi.NewRouter()
	r.Use(SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/listeners", h.listListeners)
		r.Put("/listeners/{name}", h.subscribe)
		r.Delete("/listeners/{name}", h.unsubscribe)
		r.Post("/broadcast", h.broadcast)
		if journal != nil {
			r.Get("/deliveries", h.listDeliveries)
		}
	})

	return r
}

type handlers struct {
	reg     *listener.Registry
	journal store.Store
}

type broadcastRequest struct {
	Payload string `json:"payload"`
}

func (h *handlers) listListeners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Statuses())
}

func (h *handlers) subscribe(w http.ResponseWriter, r *http.Request) {
	h.membership(w, chi.URLParam(r, "name"), h.reg.Subscribe)
}

func (h *handlers) unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.membership(w, chi.URLParam(r, "name"), h.reg.Unsubscribe)
}

func (h *handlers) membership(w http.ResponseWriter, name string, op func(string) error) {
	if err := op(name); err != nil {
		if errors.Is(err, listener.ErrUnknownListener) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Payload == "" {
		writeError(w, http.StatusBadRequest, "payload is required")
		return
	}

	out := h.reg.Broadcast(req.Payload)
	status := http.StatusAccepted
	if len(out.Failures) > 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, out)
}

func (h *handlers) listDeliveries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.DeliveryFilter{
		Listener: q.Get("listener"),
		Limit:    defaultDeliveryLimit,
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		f.Since = since
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	total, err := h.journal.CountDeliveries(f.Listener)
	if err != nil {
		slog.Error("counting deliveries", "error", err)
		writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	deliveries, err := h.journal.ListDeliveries(f)
	if err != nil {
		slog.Error("listing deliveries", "error", err)
		writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	if deliveries == nil {
		deliveries = []store.Delivery{}
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, deliveries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
