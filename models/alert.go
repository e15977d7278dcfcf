package models

import (
	"strings"
	"time"
)

type AlertKind string

const (
	AlertKindCamera AlertKind = "camera"
	AlertKindSOS    AlertKind = "sos"
)

// ParseAlertKind maps free-form input to a kind. ok is false for anything that is
// neither camera nor sos.
func ParseAlertKind(value string) (AlertKind, bool) {
	switch AlertKind(strings.ToLower(strings.TrimSpace(value))) {
	case AlertKindCamera:
		return AlertKindCamera, true
	case AlertKindSOS:
		return AlertKindSOS, true
	}
	return "", false
}

// KindFromAlertID infers the collection from the id prefix.
func KindFromAlertID(id string) AlertKind {
	if strings.HasPrefix(id, SOSAlertIDPrefix) {
		return AlertKindSOS
	}
	return AlertKindCamera
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
)

const (
	CameraAlertIDPrefix = "CAM-ALERT-"
	SOSAlertIDPrefix    = "SOS-ALERT-"
)

// ClearScope selects which collections a clear operation empties.
type ClearScope string

const (
	ClearCamera ClearScope = "camera"
	ClearSOS    ClearScope = "sos"
	ClearAll    ClearScope = "all"
)

// ParseClearScope maps free-form input to a scope, case-insensitively. An empty
// value means all collections.
func ParseClearScope(value string) (ClearScope, bool) {
	switch scope := ClearScope(strings.ToLower(strings.TrimSpace(value))); scope {
	case "":
		return ClearAll, true
	case ClearCamera, ClearSOS, ClearAll:
		return scope, true
	}
	return "", false
}

// Alert is the stored incident record. Exactly one of CameraDetails and SOSDetails
// is set, matching Kind.
type Alert struct {
	ID          string      `json:"id"`
	Kind        AlertKind   `json:"kind"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	OccurredAt  string      `json:"occurredAt"`
	SnippetRef  *string     `json:"snippetRef"`
	Status      AlertStatus `json:"status"`
	ReceivedAt  time.Time   `json:"receivedAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt"`

	*CameraDetails
	*SOSDetails
}

type CameraDetails struct {
	Place           string  `json:"place"`
	AlertType       string  `json:"alertType"`
	CameraID        string  `json:"cameraId"`
	ThreatLevel     string  `json:"threatLevel"`
	RiskFactors     string  `json:"riskFactors"`
	Lighting        string  `json:"lighting"`
	Behavior        string  `json:"behavior"`
	PersonCount     int     `json:"personCount"`
	MotionIntensity float64 `json:"motionIntensity"`
	BrightnessLevel int     `json:"brightnessLevel"`
}

type SOSDetails struct {
	UserName  string `json:"userName"`
	UserPhone string `json:"userPhone"`
}

// Clone returns a deep copy safe to hand outside the owning loop.
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}
	c := *a
	if a.SnippetRef != nil {
		ref := *a.SnippetRef
		c.SnippetRef = &ref
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	if a.CameraDetails != nil {
		d := *a.CameraDetails
		c.CameraDetails = &d
	}
	if a.SOSDetails != nil {
		d := *a.SOSDetails
		c.SOSDetails = &d
	}
	return &c
}

// RawFields is an untyped flat record as submitted by sensors and clients.
type RawFields map[string]interface{}

// Request bodies

type ResolveAlertRequest struct {
	AlertID   string `json:"alertId"`
	AlertType string `json:"alertType"`
}

type ClearAlertsRequest struct {
	AlertType string `json:"alertType"`
}
