package services

import (
	"alertrelay/models"
	"alertrelay/repositories"
	"alertrelay/utils"
	"context"
	"encoding/json"
	"sync"
	"time"
)

var testFallback = models.Position{Lat: 12.9716, Lng: 77.5946}

// inlineExecutor runs closures on the calling goroutine behind a mutex.
type inlineExecutor struct {
	mu      sync.Mutex
	stopped bool
}

func (e *inlineExecutor) Execute(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return utils.ErrHubStopped
	}
	fn()
	return nil
}

type notification struct {
	ConnID    string
	Event     string
	RequestID string
	Data      interface{}
}

// recordingNotifier keeps every notification, marshalled at send time like the hub.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) record(connID, event, requestID string, data interface{}) {
	payload, _ := json.Marshal(data)
	var decoded interface{}
	_ = json.Unmarshal(payload, &decoded)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{ConnID: connID, Event: event, RequestID: requestID, Data: decoded})
}

func (n *recordingNotifier) NotifyAll(event string, data interface{}) {
	n.record("", event, "", data)
}

func (n *recordingNotifier) NotifyOne(connID, event string, data interface{}) {
	n.record(connID, event, "", data)
}

func (n *recordingNotifier) NotifyOneWithRequest(connID, event, requestID string, data interface{}) {
	n.record(connID, event, requestID, data)
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Event)
	}
	return out
}

func (n *recordingNotifier) last() notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

type fixture struct {
	alerts   *repositories.AlertRepository
	presence *repositories.PresenceRepository
	tracking *repositories.TrackingRepository
	executor *inlineExecutor
	notifier *recordingNotifier
	alertSvc *AlertService
	trackSvc *TrackingService
	clock    time.Time
}

func newFixture(maxAlerts int) *fixture {
	f := &fixture{
		alerts:   repositories.NewAlertRepository(maxAlerts),
		presence: repositories.NewPresenceRepository(),
		executor: &inlineExecutor{},
		notifier: &recordingNotifier{},
		clock:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	f.tracking = repositories.NewTrackingRepository(f.presence)
	f.alertSvc = NewAlertService(f.alerts, f.executor, f.notifier, nil, "secret", testFallback)
	f.trackSvc = NewTrackingService(f.alerts, f.presence, f.tracking, f.notifier, nil, testFallback)

	tick := func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.alertSvc.now = tick
	f.trackSvc.now = tick
	return f
}

func wsRequest(eventType string, data interface{}) models.WSRequest {
	payload, _ := json.Marshal(data)
	return models.WSRequest{Type: eventType, Data: payload}
}
