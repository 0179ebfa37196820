package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/xavierca1/autovault-agents/internal/entity"
	"github.com/xavierca1/autovault-agents/internal/usecase"
)

const maxEventBody = 64 << 10

type EventHandler struct {
	emitter     usecase.EventEmitter
	rateLimiter *RateLimiter
}

func NewEventHandler(emitter usecase.EventEmitter, limiter *RateLimiter) *EventHandler {
	return &EventHandler{emitter: emitter, rateLimiter: limiter}
}

type AcceptedResponse struct {
	Accepted bool             `json:"accepted"`
	Type     entity.EventType `json:"type"`
}

// Ingest handles POST /events. Processing is asynchronous: 202 means the
// event was handed to the emitter, not that any action ran.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
		return
	}

	var event entity.PlatformEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody)).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return
	}
	if err := event.Validate(); err != nil {
		derr := &usecase.DomainError{Code: "INVALID_EVENT", Message: err.Error()}
		writeError(w, http.StatusBadRequest, derr.Code, derr.Error())
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := h.emitter.Emit(r.Context(), event); err != nil {
		terr := &usecase.TechnicalError{Code: "EMIT_FAILED", Message: "Event could not be queued", Err: err}
		slog.ErrorContext(r.Context(), "emit ingested event failed", "event_type", event.Type, "error", terr)
		writeError(w, http.StatusServiceUnavailable, terr.Code, terr.Message)
		return
	}

	writeJSON(w, http.StatusAccepted, AcceptedResponse{Accepted: true, Type: event.Type})
}
