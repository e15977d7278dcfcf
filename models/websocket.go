// models/websocket.go
package models

import (
	"encoding/json"
	"time"
)

// WebSocket Message Types
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

// WebSocket Request Types
type WSRequest struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

// Payloads

type WSAlertResolved struct {
	AlertID   string    `json:"alertId"`
	AlertType AlertKind `json:"alertType"`
	Alert     *Alert    `json:"alert"`
}

type WSAlertsCleared struct {
	Cleared int `json:"cleared"`
}

type WSTrackingUpdate struct {
	ConnID         string          `json:"connId"`
	Tracking       TrackingSession `json:"tracking"`
	DistanceMeters float64         `json:"distanceMeters"`
	BearingDegrees float64         `json:"bearingDegrees"`
}

type WSTrackingStopped struct {
	ConnID string `json:"connId"`
}

type WSAck struct {
	Event    string           `json:"event"`
	Success  bool             `json:"success"`
	Tracking *TrackingSession `json:"tracking,omitempty"`
}

// WebSocket Event Constants
const (
	// server -> client
	WSTypeAllCameraAlerts   = "all_camera_alerts"
	WSTypeAllSOSAlerts      = "all_sos_alerts"
	WSTypeNewCameraAlert    = "new_camera_alert"
	WSTypeNewSOSAlert       = "new_sos_alert"
	WSTypeAlertResolved     = "alert_resolved"
	WSTypeCameraAlertsClear = "camera_alerts_cleared"
	WSTypeSOSAlertsCleared  = "sos_alerts_cleared"
	WSTypeAllAlertsCleared  = "all_alerts_cleared"
	WSTypeOfficersUpdated   = "officers_updated"
	WSTypeTrackingUpdate    = "tracking_update"
	WSTypeTrackingStopped   = "tracking_stopped"
	WSTypeAck               = "ack"

	// client -> server
	WSRequestOfficerLogin   = "officer_login"
	WSRequestStartTracking  = "start_tracking"
	WSRequestUpdateLocation = "update_location"
	WSRequestStopTracking   = "stop_tracking"
)

// ClearedEventFor returns the broadcast event name for a clear scope.
func ClearedEventFor(scope ClearScope) string {
	switch scope {
	case ClearCamera:
		return WSTypeCameraAlertsClear
	case ClearSOS:
		return WSTypeSOSAlertsCleared
	default:
		return WSTypeAllAlertsCleared
	}
}
