package interfaces

import (
	"alertrelay/models"
	"context"
)

// Executor runs fn on the single goroutine that owns the alert store and the
// responder registries. It blocks until fn has run.
type Executor interface {
	Execute(ctx context.Context, fn func()) error
}

// Notifier pushes events to live push-channel connections. Implementations are
// only called from inside an Executor closure or an EventHandler callback.
type Notifier interface {
	NotifyAll(event string, data interface{})
	NotifyOne(connID, event string, data interface{})
	NotifyOneWithRequest(connID, event, requestID string, data interface{})
}

// EventHandler receives push-channel lifecycle and inbound events on the owning
// goroutine.
type EventHandler interface {
	OnConnect(connID string)
	OnEvent(connID string, req models.WSRequest)
	OnDisconnect(connID string)
}

// ConnectionCounter reports how many push clients are connected.
type ConnectionCounter interface {
	LiveConnections() int
}
