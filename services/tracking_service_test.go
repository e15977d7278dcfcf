package services

import (
	"alertrelay/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingService_OnConnectSendsAlerts(t *testing.T) {
	f := newFixture(100)
	_, err := f.alertSvc.IngestCamera(context.Background(), "secret", models.RawFields{})
	require.NoError(t, err)
	f.notifier.reset()

	f.trackSvc.OnConnect("c1")

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, "c1", f.notifier.sent[0].ConnID)
	assert.Equal(t, models.WSTypeAllCameraAlerts, f.notifier.sent[0].Event)
	assert.Len(t, f.notifier.sent[0].Data, 1)
	assert.Equal(t, models.WSTypeAllSOSAlerts, f.notifier.sent[1].Event)
	assert.Equal(t, []interface{}{}, f.notifier.sent[1].Data)
}

func TestTrackingService_LoginBroadcastsRoster(t *testing.T) {
	f := newFixture(100)

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestOfficerLogin, map[string]interface{}{"name": "Ravi", "unit": "PCR-7", "lat": 13.0, "lng": 77.6}))
	f.trackSvc.OnEvent("c2", wsRequest(models.WSRequestOfficerLogin, nil))

	assert.Equal(t, []string{models.WSTypeOfficersUpdated, models.WSTypeOfficersUpdated}, f.notifier.events())
	roster := f.notifier.last().Data.([]interface{})
	require.Len(t, roster, 2)

	first := roster[0].(map[string]interface{})
	assert.Equal(t, "c1", first["connId"])
	assert.Equal(t, "Ravi", first["name"])
	assert.Equal(t, "available", first["status"])

	second := roster[1].(map[string]interface{})
	assert.Equal(t, DefaultOfficerName, second["name"])
	assert.Equal(t, DefaultOfficerUnit, second["unit"])
	assert.Equal(t, testFallback.Lat, second["lat"])
}

func TestTrackingService_StartTracking(t *testing.T) {
	f := newFixture(100)
	alert, err := f.alertSvc.IngestSOS(context.Background(), "secret", models.RawFields{"lat": 12.95, "lng": 77.6})
	require.NoError(t, err)

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestOfficerLogin, map[string]interface{}{"lat": 12.9, "lng": 77.5}))
	f.notifier.reset()

	req := wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": alert.ID})
	req.RequestID = "req-1"
	f.trackSvc.OnEvent("c1", req)

	require.Equal(t, []string{models.WSTypeAck, models.WSTypeTrackingUpdate}, f.notifier.events())

	ack := f.notifier.sent[0]
	assert.Equal(t, "c1", ack.ConnID)
	assert.Equal(t, "req-1", ack.RequestID)
	ackData := ack.Data.(map[string]interface{})
	assert.Equal(t, models.WSRequestStartTracking, ackData["event"])
	assert.Equal(t, true, ackData["success"])

	session, ok := f.tracking.Get("c1")
	require.True(t, ok)
	assert.Equal(t, models.AlertKindSOS, session.AlertType)
	assert.Equal(t, 12.95, session.AlertLat)
	assert.Equal(t, 77.6, session.AlertLng)
	assert.Equal(t, 12.9, session.Lat)
	assert.Equal(t, 77.5, session.Lng)

	update := f.notifier.sent[1].Data.(map[string]interface{})
	assert.Equal(t, "c1", update["connId"])
	assert.Greater(t, update["distanceMeters"].(float64), 1000.0)
}

func TestTrackingService_StartTrackingUnknownAlertUsesFallback(t *testing.T) {
	f := newFixture(100)

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": "CAM-ALERT-404-00"}))

	session, ok := f.tracking.Get("c1")
	require.True(t, ok)
	assert.Equal(t, models.AlertKindCamera, session.AlertType)
	assert.Equal(t, testFallback.Lat, session.AlertLat)
	assert.Equal(t, testFallback.Lat, session.Lat)

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": "X-1", "alertType": "sos", "alertLat": 1.5, "alertLng": 2.5}))
	session, _ = f.tracking.Get("c1")
	assert.Equal(t, "X-1", session.AlertID)
	assert.Equal(t, models.AlertKindSOS, session.AlertType)
	assert.Equal(t, 1.5, session.AlertLat)
	assert.Equal(t, 2.5, session.AlertLng)
	assert.Equal(t, 1, f.tracking.Count())
}

func TestTrackingService_StartTrackingWithoutAlertIDIsDropped(t *testing.T) {
	f := newFixture(100)

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertLat": 1.0}))

	assert.Empty(t, f.notifier.events())
	assert.Equal(t, 0, f.tracking.Count())
}

func TestTrackingService_UpdateLocation(t *testing.T) {
	f := newFixture(100)

	// No presence: ignored entirely.
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestUpdateLocation, map[string]interface{}{"lat": 1.0, "lng": 1.0}))
	assert.Empty(t, f.notifier.events())

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestOfficerLogin, map[string]interface{}{"lat": 12.9, "lng": 77.5}))
	f.notifier.reset()

	// Presence but no session: presence moves, nothing is broadcast.
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestUpdateLocation, map[string]interface{}{"lat": 12.91, "lng": 77.51}))
	assert.Empty(t, f.notifier.events())
	presence, _ := f.presence.Get("c1")
	assert.Equal(t, 12.91, presence.Lat)

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": "CAM-ALERT-1-00"}))
	f.notifier.reset()

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestUpdateLocation, map[string]interface{}{"lat": 12.92, "lng": "bogus"}))

	assert.Equal(t, []string{models.WSTypeTrackingUpdate}, f.notifier.events())
	presence, _ = f.presence.Get("c1")
	session, _ := f.tracking.Get("c1")
	assert.Equal(t, 12.92, presence.Lat)
	assert.Equal(t, 77.51, presence.Lng)
	assert.Equal(t, 12.92, session.Lat)
	assert.Equal(t, 77.51, session.Lng)
}

func TestTrackingService_StopTracking(t *testing.T) {
	f := newFixture(100)
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": "CAM-ALERT-1-00"}))
	f.notifier.reset()

	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStopTracking, nil))
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStopTracking, nil))

	assert.Equal(t, []string{models.WSTypeTrackingStopped, models.WSTypeTrackingStopped}, f.notifier.events())
	assert.Equal(t, map[string]interface{}{"connId": "c1"}, f.notifier.last().Data)
	assert.Equal(t, 0, f.tracking.Count())
}

func TestTrackingService_Disconnect(t *testing.T) {
	f := newFixture(100)
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestOfficerLogin, nil))
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": "SOS-ALERT-1-00"}))
	f.notifier.reset()

	f.trackSvc.OnDisconnect("c1")

	assert.Equal(t, []string{models.WSTypeTrackingStopped}, f.notifier.events())
	_, ok := f.presence.Get("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, f.tracking.Count())
}

func TestTrackingService_MalformedEvents(t *testing.T) {
	f := newFixture(100)

	f.trackSvc.OnEvent("c1", models.WSRequest{Type: models.WSRequestOfficerLogin, Data: []byte(`"not an object"`)})
	f.trackSvc.OnEvent("c1", models.WSRequest{Type: "teleport", Data: []byte(`{}`)})

	assert.Empty(t, f.notifier.events())
	assert.Equal(t, 0, f.presence.Count())
}
