package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lexora/lexora/internal/middleware"
	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/realtime"
)

const writeTimeout = 10 * time.Second

// SubscribeHandler serves the websocket change feed. Each connection
// receives the caller's own write events for one collection, or for all
// collections if none is named.
type SubscribeHandler struct {
	Hub *realtime.Hub
	Log *zap.Logger

	upgrader websocket.Upgrader
}

// Handle handles GET /api/subscribe?collection=<name>.
func (h *SubscribeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection != "" && !models.Known(collection) {
		http.Error(w, "unknown collection", http.StatusBadRequest)
		return
	}
	owner := middleware.GetUserIDFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	sub := h.Hub.Subscribe(owner, collection)
	defer sub.Close()
	defer conn.Close()

	// Reads only serve to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				h.Log.Debug("subscriber write failed", zap.Error(err))
				return
			}
		}
	}
}
