package services

import (
	"alertrelay/interfaces"
	"alertrelay/metrics"
	"alertrelay/models"
	"alertrelay/repositories"
	"alertrelay/utils"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// TrackingService handles push-channel events from responders. Its methods run on
// the hub loop, so it touches the registries directly.
type TrackingService struct {
	alertRepo    *repositories.AlertRepository
	presenceRepo *repositories.PresenceRepository
	trackingRepo *repositories.TrackingRepository
	notifier     interfaces.Notifier
	metrics      *metrics.Metrics
	fallback     models.Position
	now          func() time.Time
}

func NewTrackingService(
	alertRepo *repositories.AlertRepository,
	presenceRepo *repositories.PresenceRepository,
	trackingRepo *repositories.TrackingRepository,
	notifier interfaces.Notifier,
	m *metrics.Metrics,
	fallback models.Position,
) *TrackingService {
	return &TrackingService{
		alertRepo:    alertRepo,
		presenceRepo: presenceRepo,
		trackingRepo: trackingRepo,
		notifier:     notifier,
		metrics:      m,
		fallback:     fallback,
		now:          time.Now,
	}
}

var _ interfaces.EventHandler = (*TrackingService)(nil)

// OnConnect sends the current alert collections to the new connection only.
func (ts *TrackingService) OnConnect(connID string) {
	ts.notifier.NotifyOne(connID, models.WSTypeAllCameraAlerts, ts.alertRepo.Snapshot(models.AlertKindCamera))
	ts.notifier.NotifyOne(connID, models.WSTypeAllSOSAlerts, ts.alertRepo.Snapshot(models.AlertKindSOS))
}

func (ts *TrackingService) OnEvent(connID string, req models.WSRequest) {
	raw := models.RawFields{}
	if len(req.Data) > 0 && string(req.Data) != "null" {
		if err := json.Unmarshal(req.Data, &raw); err != nil {
			logrus.WithFields(logrus.Fields{
				"connId": connID,
				"event":  req.Type,
			}).WithError(err).Debug("Dropping event with unreadable payload")
			return
		}
	}

	switch req.Type {
	case models.WSRequestOfficerLogin:
		ts.handleLogin(connID, raw)
	case models.WSRequestStartTracking:
		ts.handleStartTracking(connID, req.RequestID, raw)
	case models.WSRequestUpdateLocation:
		ts.handleUpdateLocation(connID, raw)
	case models.WSRequestStopTracking:
		ts.handleStopTracking(connID)
	default:
		logrus.WithFields(logrus.Fields{
			"connId": connID,
			"event":  req.Type,
		}).Debug("Ignoring unknown event type")
	}
}

// OnDisconnect drops the connection's presence and session. The roster is not
// rebroadcast.
func (ts *TrackingService) OnDisconnect(connID string) {
	ts.presenceRepo.Remove(connID)
	ts.trackingRepo.Remove(connID)
	ts.notifier.NotifyAll(models.WSTypeTrackingStopped, models.WSTrackingStopped{ConnID: connID})
	ts.updateGauges()
}

func (ts *TrackingService) handleLogin(connID string, raw models.RawFields) {
	profile := NormalizeOfficerProfile(raw, ts.fallback)
	ts.presenceRepo.Login(connID, profile, ts.now())

	logrus.WithFields(logrus.Fields{
		"connId": connID,
		"name":   profile.Name,
		"unit":   profile.Unit,
	}).Info("Officer logged in")

	ts.notifier.NotifyAll(models.WSTypeOfficersUpdated, ts.presenceRepo.SnapshotAll())
	ts.updateGauges()
}

func (ts *TrackingService) handleStartTracking(connID, requestID string, raw models.RawFields) {
	alertID := stringField(raw, "", "alertId")
	if alertID == "" {
		logrus.WithField("connId", connID).Debug("Dropping start_tracking without alertId")
		return
	}

	kind, ok := models.ParseAlertKind(stringField(raw, "", "alertType", "kind"))
	if !ok {
		kind = models.KindFromAlertID(alertID)
	}

	target := ts.fallback
	if alert, found := ts.alertRepo.Find(alertID, kind); found {
		target = models.Position{Lat: alert.Lat, Lng: alert.Lng}
	}
	target.Lat = latitudeField(raw, "alertLat", target.Lat)
	target.Lng = longitudeField(raw, "alertLng", target.Lng)

	session := ts.trackingRepo.Start(connID, alertID, target.Lat, target.Lng, kind, ts.fallback, ts.now())

	logrus.WithFields(logrus.Fields{
		"connId":  connID,
		"alertId": alertID,
		"kind":    kind,
	}).Info("Tracking started")

	ts.notifier.NotifyOneWithRequest(connID, models.WSTypeAck, requestID, models.WSAck{
		Event:    models.WSRequestStartTracking,
		Success:  true,
		Tracking: &session,
	})
	ts.notifier.NotifyAll(models.WSTypeTrackingUpdate, trackingUpdate(connID, session))
	ts.updateGauges()
}

// handleUpdateLocation ignores connections that never logged in. A coordinate that
// is missing or invalid keeps its previous value.
func (ts *TrackingService) handleUpdateLocation(connID string, raw models.RawFields) {
	presence, ok := ts.presenceRepo.Get(connID)
	if !ok {
		return
	}

	lat := latitudeField(raw, "lat", presence.Lat)
	lng := longitudeField(raw, "lng", presence.Lng)
	ts.presenceRepo.UpdatePosition(connID, lat, lng)

	session, tracking := ts.trackingRepo.UpdatePosition(connID, lat, lng)
	if !tracking {
		return
	}
	ts.notifier.NotifyAll(models.WSTypeTrackingUpdate, trackingUpdate(connID, session))
}

func (ts *TrackingService) handleStopTracking(connID string) {
	if ts.trackingRepo.Stop(connID) {
		logrus.WithField("connId", connID).Info("Tracking stopped")
	}
	ts.notifier.NotifyAll(models.WSTypeTrackingStopped, models.WSTrackingStopped{ConnID: connID})
	ts.updateGauges()
}

func (ts *TrackingService) updateGauges() {
	ts.metrics.SetOfficersOnline(ts.presenceRepo.Count())
	ts.metrics.SetTrackingSessions(ts.trackingRepo.Count())
}

func trackingUpdate(connID string, session models.TrackingSession) models.WSTrackingUpdate {
	return models.WSTrackingUpdate{
		ConnID:         connID,
		Tracking:       session,
		DistanceMeters: utils.CalculateDistance(session.Lat, session.Lng, session.AlertLat, session.AlertLng),
		BearingDegrees: utils.CalculateBearing(session.Lat, session.Lng, session.AlertLat, session.AlertLng),
	}
}
