// Package stream serves heatmap rendering over HTTP and websockets.
package stream

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tmpim/sixheat"
)

// Subscription is a set of packet kinds a websocket client receives for
// images rendered by other clients.
type Subscription uint32

// Possible subscription flags.
const (
	SubscriptionImage = Subscription(1 << iota)
	SubscriptionStats
	SubscriptionNone = Subscription(0)
)

// Possible packet types, sent as the first byte of a binary message.
const (
	PacketImage = iota + 1
	PacketStats
	PacketError
)

// IsSubscribedTo returns whether or not the client subscription is subscribed
// to the given subscription.
func (s Subscription) IsSubscribedTo(sub Subscription) bool {
	return (s & sub) == sub
}

// Request is a websocket message from a client. A request with samples is
// rendered and answered; the other fields update the client.
type Request struct {
	ID           string `json:"id"`
	Subscription uint32 `json:"subscription"`
	Samples      string `json:"samples"`
	Compress     *bool  `json:"compress,omitempty"`
	Broadcast    bool   `json:"broadcast"`
}

// Stats describes a rendered heatmap.
type Stats struct {
	ID         string    `json:"id"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Min        int       `json:"min"`
	Max        int       `json:"max"`
	Dropped    int       `json:"dropped"`
	Bytes      int       `json:"bytes"`
	RenderedAt time.Time `json:"renderedAt"`
}

// NewStats summarizes a result.
func NewStats(id string, result *sixheat.Result) Stats {
	return Stats{
		ID:         id,
		Rows:       result.Grid.Rows,
		Cols:       result.Grid.Cols,
		Width:      result.Geometry.Width,
		Height:     result.Geometry.PaddedHeight,
		Min:        result.Min,
		Max:        result.Max,
		Dropped:    result.Dropped,
		Bytes:      len(result.Sixel),
		RenderedAt: time.Now(),
	}
}

// Client is a websocket connected client.
type Client struct {
	mutex         *sync.Mutex
	id            string
	conn          *websocket.Conn
	subscriptions Subscription
}

func (c *Client) send(packet byte, data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, append([]byte{packet}, data...))
}

// Manager renders heatmaps for connected clients and keeps the stats of the
// last one.
type Manager struct {
	clientsMutex *sync.Mutex
	clients      []*Client

	stateMutex *sync.Mutex
	last       *Stats

	baseOptions sixheat.Options
}

// DefaultMaxPixels limits the image area when the base options set none.
const DefaultMaxPixels = 64 << 20

// NewManager returns a manager rendering with the given options.
func NewManager(baseOptions sixheat.Options) *Manager {
	if baseOptions.MaxPixels == 0 {
		baseOptions.MaxPixels = DefaultMaxPixels
	}

	return &Manager{
		clientsMutex: new(sync.Mutex),
		stateMutex:   new(sync.Mutex),
		baseOptions:  baseOptions,
	}
}

// Options returns a copy of the base options.
func (s *Manager) Options() sixheat.Options {
	return s.baseOptions
}

// Render renders tokens and records the stats of a non empty result.
func (s *Manager) Render(id string, tokens []string, opts sixheat.Options) (*sixheat.Result, error) {
	result, err := sixheat.RenderTokens(tokens, opts)
	if err != nil {
		return nil, err
	}

	if !result.Empty() {
		stats := NewStats(id, result)
		s.stateMutex.Lock()
		s.last = &stats
		s.stateMutex.Unlock()
	}

	return result, nil
}

// Last returns the stats of the last rendered heatmap.
func (s *Manager) Last() (Stats, bool) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	if s.last == nil {
		return Stats{}, false
	}
	return *s.last, true
}

// Broadcast sends a packet to every client subscribed to sub, except the
// sender.
func (s *Manager) Broadcast(sender *Client, sub Subscription, packet byte, data []byte) {
	s.clientsMutex.Lock()
	clients := append([]*Client(nil), s.clients...)
	s.clientsMutex.Unlock()

	for _, client := range clients {
		if client == sender {
			continue
		}

		client.mutex.Lock()
		subscribed := client.subscriptions.IsSubscribedTo(sub)
		client.mutex.Unlock()

		if !subscribed {
			continue
		}

		if err := client.send(packet, data); err != nil {
			log.WithError(err).Debug("sixheat stream: Broadcast: write failed")
		}
	}
}

// HandleConn serves a websocket client until it disconnects.
func (s *Manager) HandleConn(conn *websocket.Conn) {
	s.clientsMutex.Lock()
	client := &Client{
		mutex: new(sync.Mutex),
		conn:  conn,
	}
	s.clients = append(s.clients, client)
	s.clientsMutex.Unlock()

	defer func() {
		s.clientsMutex.Lock()
		defer s.clientsMutex.Unlock()

		for i, c := range s.clients {
			if c == client {
				s.clients = append(s.clients[:i], s.clients[i+1:]...)
				return
			}
		}
	}()

	for {
		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			log.WithError(err).Debug("client disconnected")
			return
		}

		if msgType != websocket.BinaryMessage && msgType != websocket.TextMessage {
			continue
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.WithError(err).Warn("failed to unmarshal request")
			if sendErr := client.send(PacketError, []byte(err.Error())); sendErr != nil {
				log.WithError(sendErr).Debug("failed to send error")
			}
			continue
		}

		client.mutex.Lock()
		client.id = req.ID
		client.subscriptions = Subscription(req.Subscription)
		client.mutex.Unlock()

		if req.Samples == "" {
			continue
		}

		s.handleRequest(client, req)
	}
}

func (s *Manager) handleRequest(client *Client, req Request) {
	opts := s.baseOptions
	if req.Compress != nil {
		opts.Compress = *req.Compress
	}

	result, err := s.Render(req.ID, strings.Fields(req.Samples), opts)
	if err != nil {
		log.WithError(err).WithField("id", req.ID).Warn("failed to render heatmap")
		if sendErr := client.send(PacketError, []byte(err.Error())); sendErr != nil {
			log.WithError(sendErr).Debug("failed to send error")
		}
		return
	}

	stats, err := json.Marshal(NewStats(req.ID, result))
	if err != nil {
		log.WithError(err).Error("sixheat stream: error encoding stats JSON")
		return
	}

	if err := client.send(PacketImage, result.Sixel); err != nil {
		log.WithError(err).Debug("failed to send image")
		return
	}
	if err := client.send(PacketStats, stats); err != nil {
		log.WithError(err).Debug("failed to send stats")
		return
	}

	if req.Broadcast && !result.Empty() {
		s.Broadcast(client, SubscriptionImage, PacketImage, result.Sixel)
		s.Broadcast(client, SubscriptionStats, PacketStats, stats)
	}
}
