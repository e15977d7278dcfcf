package models

import "time"

type OfficerStatus string

const (
	OfficerStatusAvailable OfficerStatus = "available"
	OfficerStatusBusy      OfficerStatus = "busy"
)

// OfficerPresence is the last known state of a logged-in responder, keyed by
// connection id.
type OfficerPresence struct {
	Name      string        `json:"name"`
	Lat       float64       `json:"lat"`
	Lng       float64       `json:"lng"`
	Unit      string        `json:"unit"`
	Status    OfficerStatus `json:"status"`
	LoginTime time.Time     `json:"loginTime"`
}

// OfficerProfile is the normalized payload of an officer_login event.
type OfficerProfile struct {
	Name string
	Lat  float64
	Lng  float64
	Unit string
}

const TrackingStatusTracking = "tracking"

// TrackingSession links one connection to the alert its responder is heading to.
type TrackingSession struct {
	AlertID   string    `json:"alertId"`
	AlertLat  float64   `json:"alertLat"`
	AlertLng  float64   `json:"alertLng"`
	AlertType AlertKind `json:"alertType"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	StartedAt time.Time `json:"startedAt"`
	Status    string    `json:"status"`
}

// Position is a plain coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Views tagged with their connection id, used by roster broadcasts and queries.

type OfficerEntry struct {
	ConnID string `json:"connId"`
	OfficerPresence
}

type TrackingEntry struct {
	ConnID string `json:"connId"`
	TrackingSession
}
