package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lookprice/lookprice/internal/live"
	"go.uber.org/zap"
)

// LiveHandler streams scan events to the back-office dashboard over a
// websocket. Auth runs as usual (the browser sends the bearer token before
// the upgrade), and the feed is pinned to the effective store id resolved
// at subscription time — a connection can never be re-pointed at another
// store.
type LiveHandler struct {
	hub    *live.Hub
	logger *zap.Logger

	upgrader websocket.Upgrader
}

func NewLiveHandler(hub *live.Hub, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard SPA may be served from another origin in
			// development; the bearer token is the actual gate.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

const writeTimeout = 10 * time.Second

// Stream handles GET /api/store/scans/live
func (h *LiveHandler) Stream(c *gin.Context) {
	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(storeID)
	defer h.hub.Unsubscribe(sub)

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// how gorilla surfaces the close frame. When it errors, the connection
	// is gone and we stop writing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, open := <-sub.Events():
			if !open {
				// The hub dropped us as a slow consumer.
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
