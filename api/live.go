package api

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/Domenick1991/expertbooking/internal/websocket"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// LiveHandler upgrades requests to the live-update socket.
type LiveHandler struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
	buffer   int
	log      *zap.Logger
}

func NewLiveHandler(hub *websocket.Hub, allowedOrigins []string, buffer int, log *zap.Logger) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		buffer: buffer,
		log:    log,
	}
}

// originChecker allows any origin when none are configured, same-host
// requests, and the listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

func (h *LiveHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := websocket.NewClient(h.hub, conn, h.buffer)
	client.Start()
}
