package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/middleware"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/handler/http/response"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/jwt"
	"github.com/centralkang-byte/ctr-hr-hub-sub000/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

// EventSubscriber is the part of the SSE hub the stream handler needs.
type EventSubscriber interface {
	Subscribe(companyID string) (chan sse.Event, func())
}

type EventsHandler interface {
	// Token issues a short-lived token for the run event stream.
	Token(w http.ResponseWriter, r *http.Request)
	// Stream pushes run status changes of the caller's company over SSE.
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventsHandlerImpl struct {
	hub        EventSubscriber
	jwtService jwt.Service
	keepalive  time.Duration
}

func NewEventsHandler(hub EventSubscriber, jwtService jwt.Service) EventsHandler {
	return &eventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		keepalive:  keepaliveInterval,
	}
}

func (h *eventsHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(claims)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, map[string]interface{}{
		"token":      token,
		"expires_in": expiresIn,
	})
}

func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token travels in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(claims.CompanyID)
	defer cleanup()

	connected := sse.Event{Event: "connected", Data: map[string]string{"status": "connected", "company_id": claims.CompanyID}}
	if err := connected.Encode(w); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := event.Encode(w); err != nil {
				slog.Warn("Failed to write run event", "event", event.Event, "error", err)
				continue
			}
			flusher.Flush()

		case <-keepalive.C:
			ping := sse.Event{Event: "ping", Data: map[string]int64{"timestamp": time.Now().Unix()}}
			if err := ping.Encode(w); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
