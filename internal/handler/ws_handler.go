package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/service"
	"github.com/ffaviron/defirose-api/internal/websocket"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// WSHandler upgrades live stats feed connections.
type WSHandler struct {
	hub          *websocket.Hub
	statsService *service.StatsService
	upgrader     gorillaws.Upgrader
}

// NewWSHandler accepts browser connections from allowedOrigins only.
// Connections without an Origin header (non-browser clients) are accepted.
func NewWSHandler(hub *websocket.Hub, statsService *service.StatsService, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		hub:          hub,
		statsService: statsService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// HandleStats handles GET /ws/stats. The current counters are sent right
// after the upgrade; later updates follow each validation.
func (h *WSHandler) HandleStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.statsService.Campaign(ctx)
	if err != nil {
		respondError(c, "live_stats", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logger.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn)
	if err := client.Enqueue(websocket.Message{Type: websocket.STATS_UPDATE, Data: stats}); err != nil {
		logger.Warn(ctx, "failed to queue initial stats", zap.Error(err))
	}
	client.Start(ctx)
}
