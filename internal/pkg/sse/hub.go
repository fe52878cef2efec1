package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const subscriberBuffer = 16

// Event is one run status change addressed to the subscribers of a company.
type Event struct {
	ID        uint64
	CompanyID string
	Event     string
	Data      interface{}
}

// Encode writes the event in text/event-stream framing. Data is sent as JSON.
func (e Event) Encode(w io.Writer) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Event, err)
	}
	if e.ID > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", e.ID); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Event, data)
	return err
}

// Hub fans run events out to the open streams of each company. Publishing
// never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	seq         uint64
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for a company. The returned cleanup must be
// called once the stream ends. After Close the channel is returned closed.
func (h *Hub) Subscribe(companyID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	if h.subscribers[companyID] == nil {
		h.subscribers[companyID] = make(map[chan Event]struct{})
	}
	h.subscribers[companyID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[companyID][ch]; !ok {
			return
		}
		delete(h.subscribers[companyID], ch)
		close(ch)
		if len(h.subscribers[companyID]) == 0 {
			delete(h.subscribers, companyID)
		}
	}

	return ch, cleanup
}

// Publish stamps the event with the next sequence number and delivers it to
// every subscriber of companyID.
func (h *Hub) Publish(companyID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.seq++
	event.ID = h.seq
	event.CompanyID = companyID

	dropped := 0
	for ch := range h.subscribers[companyID] {
		select {
		case ch <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		slog.Warn("Dropped run event for slow subscribers",
			"company_id", companyID,
			"event", event.Event,
			"dropped", dropped,
		)
	}
}

// Close ends every open stream so the HTTP server can shut down.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for companyID, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, companyID)
	}
}

func (h *Hub) SubscriberCount(companyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[companyID])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
