package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/metrics"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

const broadcastBufferSize = 32

// Hub fans campaign updates out to every connected client. All client set
// mutations happen on the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	registerCh chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		registerCh: make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBufferSize),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled. On exit
// every client channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.registerCh:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			metrics.LiveSubscribers.Inc()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow consumer; the write pump closes the connection.
					logger.Debug(ctx, "dropping slow live feed client", zap.String("connection_id", c.ConnectionID))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	h.count.Add(-1)
	metrics.LiveSubscribers.Dec()
	close(c.send)
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) register(ctx context.Context, c *Client) bool {
	select {
	case h.registerCh <- c:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error(ctx, "failed to encode live feed message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		logger.Warn(ctx, "live feed broadcast queue full", zap.String("type", msg.Type))
	}
}

// PublishStats pushes fresh campaign counters to all subscribers.
func (h *Hub) PublishStats(ctx context.Context, stats *dto.CampaignStats) {
	if stats == nil {
		return
	}
	h.Broadcast(ctx, Message{Type: STATS_UPDATE, Data: stats})
}
