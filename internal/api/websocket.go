package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/homesim/internal/auth"
	"github.com/nerrad567/homesim/internal/climate"
	"github.com/nerrad567/homesim/internal/device"
	"github.com/nerrad567/homesim/internal/infrastructure/config"
	"github.com/nerrad567/homesim/internal/infrastructure/logging"
)

// Message types exchanged with WebSocket clients.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound queue length. Events for
	// a client whose queue is full are dropped.
	wsSendBufferSize = 256

	defaultWSMaxMessageSize = 8192
	defaultWSPingInterval   = 30
	defaultWSPongTimeout    = 10
)

// Event channels clients can subscribe to.
const (
	ChannelDeviceState   = "device.state_changed"
	ChannelPolicyApplied = "thermostat.policy_applied"
	ChannelSensorReading = "sensor.reading"
)

// channelPermissions lists every channel and the permission a client's
// role needs to receive it.
var channelPermissions = map[string]auth.Permission{
	ChannelDeviceState:   auth.PermDeviceRead,
	ChannelPolicyApplied: auth.PermDeviceRead,
	ChannelSensorReading: auth.PermSimulationRead,
}

// PolicyEvent is the payload on the thermostat.policy_applied channel.
type PolicyEvent struct {
	Device string `json:"device"`
	climate.Effect
}

// SensorEvent is the payload on the sensor.reading channel.
type SensorEvent struct {
	Value int `json:"value"`
}

// WSMessage is a message sent to a client. Clients send the same shape;
// for subscribe and unsubscribe the payload is a WSSubscribePayload.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload names the channels of a subscribe or unsubscribe.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// inboundMessage is WSMessage as decoded from a client, with the payload
// left raw until the type is known.
type inboundMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans simulator events out to WebSocket clients. It implements
// device.Listener, device.PolicyListener and sensor.Subscriber. Delivery
// never blocks the caller, which is the console loop.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates a hub. Unset limits take their defaults.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultWSMaxMessageSize
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultWSPingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaultWSPongTimeout
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run blocks until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*wsClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DeviceChanged implements device.Listener.
func (h *Hub) DeviceChanged(e device.Event) {
	h.publish(ChannelDeviceState, e)
}

// PolicyApplied implements device.PolicyListener.
func (h *Hub) PolicyApplied(name string, effect climate.Effect) {
	h.publish(ChannelPolicyApplied, PolicyEvent{Device: name, Effect: effect})
}

// ReactToSensor implements sensor.Subscriber.
func (h *Hub) ReactToSensor(value int) {
	h.publish(ChannelSensorReading, SensorEvent{Value: value})
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "subject", c.subject, "role", string(c.role), "clients", n)
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client disconnected", "subject", c.subject, "clients", n)
}

// publish encodes the event once and queues it for every client subscribed
// to channel.
func (h *Hub) publish(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("encoding websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if c.subscribed(channel) {
			c.deliver(data)
		}
	}
}

// wsClient is one WebSocket connection. Its role, taken from the ticket,
// bounds the channels it may subscribe to.
type wsClient struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string
	role    auth.Role

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	channels map[string]struct{}
}

func newWSClient(h *Hub, conn *websocket.Conn, subject string, role auth.Role) *wsClient {
	return &wsClient{
		hub:      h,
		conn:     conn,
		subject:  subject,
		role:     role,
		send:     make(chan []byte, wsSendBufferSize),
		done:     make(chan struct{}),
		channels: make(map[string]struct{}),
	}
}

// upgrader accepts any origin; browser origins are checked by the CORS
// middleware.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebSocket authenticates the ticket and upgrades the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	entry, ok := s.validateTicket(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := newWSClient(s.hub, conn, entry.subject, entry.role)
	s.hub.add(c)

	go c.writeLoop()
	go c.readLoop()
}

// close stops the write loop and the connection. Safe to call repeatedly.
func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close() //nolint:errcheck // already shutting down
	})
}

// deliver queues data without blocking.
func (c *wsClient) deliver(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.hub.logger.Debug("websocket send queue full, dropping message", "subject", c.subject)
	}
}

func (c *wsClient) subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.channels[channel]
	return ok
}

func (c *wsClient) readLoop() {
	defer func() {
		c.hub.remove(c)
		c.close()
	}()

	cfg := c.hub.cfg
	wait := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	}

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	extend("") //nolint:errcheck // a failed deadline surfaces on the next read
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subject", c.subject, "error", err)
			}
			return
		}
		// Application messages count as liveness too.
		extend("") //nolint:errcheck // see above
		c.handle(data)
	}
}

func (c *wsClient) writeLoop() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	defer ticker.Stop()
	writeWait := time.Duration(cfg.PongTimeout) * time.Second

	write := func(kind int, data []byte) bool {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // write error reported below
		return c.conn.WriteMessage(kind, data) == nil
	}

	for {
		select {
		case <-c.done:
			write(websocket.CloseMessage, nil)
			return
		case data := <-c.send:
			if !write(websocket.TextMessage, data) {
				c.close()
				return
			}
		case <-ticker.C:
			if !write(websocket.PingMessage, nil) {
				c.close()
				return
			}
		}
	}
}

// handle dispatches one client message.
func (c *wsClient) handle(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(msg.ID, WSTypeError, errorBody("invalid JSON message"))
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		channels, err := c.checkChannels(msg.Payload, true)
		if err != nil {
			c.reply(msg.ID, WSTypeError, errorBody(err.Error()))
			return
		}
		c.mu.Lock()
		for _, ch := range channels {
			c.channels[ch] = struct{}{}
		}
		c.mu.Unlock()
		c.hub.logger.Info("websocket client subscribed", "subject", c.subject, "channels", channels)
		c.reply(msg.ID, WSTypeResponse, map[string]any{"subscribed": channels})

	case WSTypeUnsubscribe:
		channels, err := c.checkChannels(msg.Payload, false)
		if err != nil {
			c.reply(msg.ID, WSTypeError, errorBody(err.Error()))
			return
		}
		c.mu.Lock()
		for _, ch := range channels {
			delete(c.channels, ch)
		}
		c.mu.Unlock()
		c.reply(msg.ID, WSTypeResponse, map[string]any{"unsubscribed": channels})

	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)

	default:
		c.reply(msg.ID, WSTypeError, errorBody("unknown message type: "+msg.Type))
	}
}

// checkChannels decodes a channel list and rejects the whole request if any
// channel is unknown or, when subscribing, not readable by the client's role.
func (c *wsClient) checkChannels(raw json.RawMessage, subscribing bool) ([]string, error) {
	var p WSSubscribePayload
	if len(raw) == 0 || json.Unmarshal(raw, &p) != nil {
		return nil, fmt.Errorf("invalid channel list")
	}
	if len(p.Channels) == 0 {
		return nil, fmt.Errorf("no channels given")
	}

	channels := slices.Compact(slices.Sorted(slices.Values(p.Channels)))
	for _, ch := range channels {
		perm, known := channelPermissions[ch]
		if !known {
			return nil, fmt.Errorf("unknown channel: %s", ch)
		}
		if subscribing && !auth.HasPermission(c.role, perm) {
			return nil, fmt.Errorf("channel %s requires %s", ch, perm)
		}
	}
	return channels, nil
}

func (c *wsClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.deliver(data)
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}
