package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/orchestrator"
)

// heartbeatInterval keeps proxies from closing idle streams.
const heartbeatInterval = 15 * time.Second

// handleEvents streams session snapshots as Server-Sent Events until
// the run reaches a terminal phase or the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, session, ok := s.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case snap, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				s.logger.Warn("marshal snapshot", zap.String("session", id), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "id: %d-%d\ndata: %s\n\n", snap.Run, snap.UpdatedAt.UnixNano(), payload)
			flusher.Flush()
			if snap.Phase.Terminal() || (snap.Phase == orchestrator.PhaseIdle && snap.Run > 0) {
				return
			}
		}
	}
}
