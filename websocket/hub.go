package websocket

import (
	"alertrelay/interfaces"
	"alertrelay/metrics"
	"alertrelay/models"
	"alertrelay/utils"
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Hub owns every push connection and serializes all state changes. Run is the
// only goroutine that touches the client map, calls the EventHandler, or runs
// closures submitted through Execute.
type Hub struct {
	// Registered clients keyed by connection id
	clients map[string]*Client

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Parsed frames from client read pumps
	inbound chan inboundEvent

	// Closures submitted by HTTP handlers
	commands chan command

	handler interfaces.EventHandler
	metrics *metrics.Metrics

	// Per-connection inbound event budget
	eventsPerMinute int

	live atomic.Int64

	// Closed when Run returns
	done chan struct{}
}

type inboundEvent struct {
	client  *Client
	request models.WSRequest
}

type command struct {
	fn   func()
	done chan struct{}
}

func NewHub(m *metrics.Metrics, eventsPerMinute int) *Hub {
	return &Hub{
		clients:         make(map[string]*Client),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		inbound:         make(chan inboundEvent, 64),
		commands:        make(chan command),
		metrics:         m,
		eventsPerMinute: eventsPerMinute,
		done:            make(chan struct{}),
	}
}

var (
	_ interfaces.Executor          = (*Hub)(nil)
	_ interfaces.Notifier          = (*Hub)(nil)
	_ interfaces.ConnectionCounter = (*Hub)(nil)
)

// Attach sets the handler for connection lifecycle and inbound events. It must be
// called before Run.
func (h *Hub) Attach(handler interfaces.EventHandler) {
	h.handler = handler
}

// Run processes registrations, inbound events and commands until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	logrus.Info("WebSocket Hub starting...")
	defer close(h.done)
	defer h.shutdown()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.inbound:
			h.dispatch(event)

		case cmd := <-h.commands:
			h.runCommand(cmd)

		case <-ctx.Done():
			logrus.Info("WebSocket Hub shutting down...")
			return
		}
	}
}

// Execute runs fn on the hub goroutine and waits for it to finish.
func (h *Hub) Execute(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}

	select {
	case h.commands <- cmd:
	case <-h.done:
		return utils.ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the command always runs, even if Run is about to exit.
	<-cmd.done
	return nil
}

// Done is closed after Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register hands a new client to the hub. It reports false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) LiveConnections() int {
	return int(h.live.Load())
}

// NotifyAll sends an event to every live connection. Hub goroutine only.
func (h *Hub) NotifyAll(event string, data interface{}) {
	payload, ok := h.encode(event, "", data)
	if !ok {
		return
	}
	for _, client := range h.clients {
		h.deliver(client, event, payload)
	}
	h.metrics.Broadcast(event)
}

// NotifyOne sends an event to a single connection. Hub goroutine only.
func (h *Hub) NotifyOne(connID, event string, data interface{}) {
	h.NotifyOneWithRequest(connID, event, "", data)
}

func (h *Hub) NotifyOneWithRequest(connID, event, requestID string, data interface{}) {
	client, ok := h.clients[connID]
	if !ok {
		return
	}
	payload, ok := h.encode(event, requestID, data)
	if !ok {
		return
	}
	h.deliver(client, event, payload)
}

func (h *Hub) encode(event, requestID string, data interface{}) ([]byte, bool) {
	payload, err := json.Marshal(models.WSMessage{
		Type:      event,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: requestID,
	})
	if err != nil {
		logrus.WithField("event", event).WithError(err).Error("Failed to encode WebSocket message")
		return nil, false
	}
	return payload, true
}

// deliver never blocks. A client whose buffer is full misses the message.
func (h *Hub) deliver(client *Client, event string, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.metrics.MessageDropped()
		logrus.WithFields(logrus.Fields{
			"connId": client.id,
			"event":  event,
		}).Warn("Send channel full, dropping message")
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client.id] = client
	h.live.Store(int64(len(h.clients)))
	h.metrics.SetLiveConnections(len(h.clients))

	logrus.WithFields(logrus.Fields{
		"connId": client.id,
		"ip":     client.ipAddress,
		"total":  len(h.clients),
	}).Info("Client registered")

	if h.handler != nil {
		h.safely("connect", func() { h.handler.OnConnect(client.id) })
	}
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client.id]; !ok {
		return
	}

	delete(h.clients, client.id)
	close(client.send)
	h.live.Store(int64(len(h.clients)))
	h.metrics.SetLiveConnections(len(h.clients))

	logrus.WithFields(logrus.Fields{
		"connId": client.id,
		"total":  len(h.clients),
	}).Info("Client unregistered")

	if h.handler != nil {
		h.safely("disconnect", func() { h.handler.OnDisconnect(client.id) })
	}
}

func (h *Hub) dispatch(event inboundEvent) {
	// Frames still queued from a client that already left are dropped.
	if _, ok := h.clients[event.client.id]; !ok || h.handler == nil {
		return
	}
	h.safely(event.request.Type, func() { h.handler.OnEvent(event.client.id, event.request) })
}

func (h *Hub) runCommand(cmd command) {
	defer close(cmd.done)
	h.safely("command", cmd.fn)
}

// safely keeps the loop alive if a handler panics.
func (h *Hub) safely(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"operation": operation,
				"panic":     r,
			}).Error("Recovered panic in hub loop")
		}
	}()
	fn()
}

func (h *Hub) shutdown() {
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
	h.live.Store(0)
	h.metrics.SetLiveConnections(0)
}
