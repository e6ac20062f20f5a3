package media

import (
	"encoding/json"
	"sync"
	"time"

	"VibeWake/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType is the type of a websocket envelope.
type MessageType string

const (
	// server -> device
	MsgTypePlayer  MessageType = "player"
	MsgTypeSession MessageType = "session"
	MsgTypeClock   MessageType = "clock"
	MsgTypeLibrary MessageType = "library"
	MsgTypePong    MessageType = "pong"
	MsgTypeError   MessageType = "error"

	// device -> server
	MsgTypeEnded      MessageType = EventEnded
	MsgTypePlayFailed MessageType = EventPlayFailed
	MsgTypePing       MessageType = "ping"
)

// WSMessage is the websocket envelope in both directions.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one connected device or dashboard.
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans server messages out to every connected websocket client and acts
// as the Player: each connected browser is a playback device.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	state deviceState
	ended chan string

	done     chan struct{}
	stopOnce sync.Once
}

var _ Player = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		ended:      make(chan string, 8),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeClient(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.broadcastAll(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Shutdown terminates Run and closes every client.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	// Bring a late joiner in line with what should be playing.
	if cmd, ok := h.state.resume(); ok {
		if data, err := encode(MsgTypePlayer, cmd); err == nil {
			select {
			case client.Send <- data:
			default:
			}
		}
	}

	logger.Info("websocket client registered",
		logger.String("client", client.ID),
		logger.Int("clients", count))
}

// removeClient requires h.mu held.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	logger.Info("websocket client unregistered",
		logger.String("client", client.ID),
		logger.Int("clients", len(h.clients)))
}

func (h *Hub) broadcastAll(msg []byte) {
	h.mu.RLock()
	clientList := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, client := range clientList {
		select {
		case client.Send <- msg:
		default:
			slow = append(slow, client)
		}
	}
	if len(slow) > 0 {
		h.mu.Lock()
		for _, client := range slow {
			logger.Warn("websocket send buffer full, dropping client", logger.String("client", client.ID))
			h.removeClient(client)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]bool)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a typed message to all clients. It never blocks past
// hub shutdown.
func (h *Hub) Publish(t MessageType, data interface{}) error {
	msg, err := encode(t, data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
	return nil
}

func encode(t MessageType, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&WSMessage{Type: t, Data: raw, Timestamp: time.Now().UnixMilli()})
}

// ========== Player ==========

func (h *Hub) command(a Action, url string, loop bool) error {
	return h.Publish(MsgTypePlayer, h.state.apply(a, url, loop))
}

func (h *Hub) Load(url string) error {
	return h.command(ActionLoad, url, false)
}

// Play returns ErrNoDevice when nobody is connected; the state still says
// "playing" so the next device to connect starts immediately.
func (h *Hub) Play() error {
	if err := h.command(ActionPlay, "", false); err != nil {
		return err
	}
	if h.ClientCount() == 0 {
		return ErrNoDevice
	}
	return nil
}

func (h *Hub) Pause() error {
	return h.command(ActionPause, "", false)
}

func (h *Hub) Stop() error {
	return h.command(ActionStop, "", false)
}

func (h *Hub) SetLooping(loop bool) error {
	return h.command(ActionLoop, "", loop)
}

func (h *Hub) Ended() <-chan string {
	return h.ended
}

// sendTo queues data for one client unless it was already removed.
func (h *Hub) sendTo(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// handleMessage processes one message read from a client.
func (h *Hub) handleMessage(c *Client, msg *WSMessage) {
	switch msg.Type {
	case MsgTypePing:
		if data, err := encode(MsgTypePong, nil); err == nil {
			h.sendTo(c, data)
		}

	case MsgTypeEnded, MsgTypePlayFailed:
		var ev DeviceEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			logger.Warn("invalid device event", logger.String("client", c.ID), logger.ErrorField(err))
			return
		}
		if msg.Type == MsgTypePlayFailed {
			logger.Warn("device failed to start playback",
				logger.String("client", c.ID),
				logger.String("url", ev.URL),
				logger.String("reason", ev.Reason))
			return
		}
		h.state.ended(ev.URL)
		if !notifyEnded(h.ended, ev.URL) {
			logger.Warn("ended notification dropped", logger.String("url", ev.URL))
		}

	default:
		logger.Debug("ignoring websocket message", logger.String("type", string(msg.Type)))
	}
}

// ServeClient registers conn and pumps it until it disconnects.
func (h *Hub) ServeClient(conn *websocket.Conn) {
	client := &Client{
		ID:   uuid.New().String(),
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	go client.WritePump()
	client.ReadPump()
}

// ========== Client ==========

// ReadPump reads messages until the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error", logger.ErrorField(err), logger.String("client", c.ID))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn("invalid message format", logger.ErrorField(err), logger.String("client", c.ID))
			continue
		}
		c.Hub.handleMessage(c, &msg)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
