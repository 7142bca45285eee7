package websocket

// Message types pushed on the live feed.
const (
	// STATS_UPDATE carries the public campaign counters.
	STATS_UPDATE = "STATS_UPDATE"
)

// Message is the envelope written to every subscriber.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
