package api

import (
	"fmt"
	"net/http"
)

// handleEvents streams reload notifications as Server-Sent Events until the
// client goes away or the broadcaster is closed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, cancel := s.events.Subscribe()
	defer cancel()
	s.metrics.StreamOpened()
	defer s.metrics.StreamClosed()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: {}\n\n", event); err != nil {
				s.logger.WithError(err).Debug("Event stream closed by client")
				return
			}
			flusher.Flush()
		}
	}
}
