package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/providers"
)

// StreamHandler handles Server-Sent Events for real-time queue updates
type StreamHandler struct {
	eventBus providers.EventBus
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(eventBus providers.EventBus) *StreamHandler {
	return &StreamHandler{
		eventBus: eventBus,
	}
}

// StreamLabUpdates handles SSE connections for lab-specific queue updates.
// GET /stream/labs/{id}
func (h *StreamHandler) StreamLabUpdates(w http.ResponseWriter, r *http.Request) {
	labID := r.PathValue("id")
	if labID == "" {
		respondWithError(w, http.StatusBadRequest, "lab ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// The bus drops this subscriber when the request context ends, so
	// no explicit unsubscribe: other clients may be watching the same
	// lab channel.
	channel := providers.GetLabChannel(labID)
	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Printf("Failed to subscribe to channel %s: %v", channel, err)
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to updates")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.sendEvent(w, "connected", map[string]interface{}{
		"lab_id":    labID,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected from lab stream: %s", labID)
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *StreamHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to encode SSE event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
