package sse

import (
	"fmt"
	"net/http"
	"time"
)

// keepaliveInterval keeps idle proxies from closing the stream.
const keepaliveInterval = 30 * time.Second

// Handler streams hub messages to one HTTP client until it disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		base := r.Header.Get("X-Client-Id")
		if base == "" {
			base = r.RemoteAddr
		}
		clientID := fmt.Sprintf("%s-%d", base, h.connSeq.Add(1))

		messages := h.AddClient(clientID)
		defer h.RemoveClient(clientID)

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			return
		}
		flusher.Flush()

		keepalive := h.clock.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if err := WriteMessage(w, msg); err != nil {
					h.logger.Debug("sse write failed", "client", clientID, "error", err)
					return
				}
				flusher.Flush()
			case <-keepalive.Chan():
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
