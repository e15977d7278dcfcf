package services

import (
	"alertrelay/models"
	"alertrelay/utils"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Camera and SOS field defaults.
const (
	DefaultPlace             = "Unknown Location"
	DefaultCameraAlertType   = "Suspicious Activity"
	DefaultCameraID          = "UNKNOWN-CAM"
	DefaultCameraDescription = "No description provided"
	DefaultSOSDescription    = "Emergency SOS triggered"
	DefaultThreatLevel       = "UNKNOWN"
	DefaultRiskFactors       = "None identified"
	DefaultLighting          = "Unknown"
	DefaultBehavior          = "Unknown"
	DefaultUserName          = "Anonymous"
	DefaultUserPhone         = "Not provided"

	DefaultOfficerName = "Officer"
	DefaultOfficerUnit = "Unassigned"
)

var (
	occurredAtKeys = []string{"timestamp", "occurredAt", "time"}
	snippetKeys    = []string{"snippetRef", "snippet"}
)

// NormalizeCameraAlert builds a camera alert from an untyped record. It never
// fails: every missing or unusable field falls back to its default.
func NormalizeCameraAlert(raw models.RawFields, id string, fallback models.Position, now time.Time) *models.Alert {
	severity := models.Severity(strings.ToUpper(stringField(raw, "", "severity")))
	if !severity.IsValid() {
		severity = models.SeverityMedium
	}

	personCount := intField(raw, "personCount", 0)
	if personCount < 0 {
		personCount = 0
	}

	alert := newAlert(raw, id, models.AlertKindCamera, severity, fallback, now)
	alert.Description = stringField(raw, DefaultCameraDescription, "description")
	alert.CameraDetails = &models.CameraDetails{
		Place:           stringField(raw, DefaultPlace, "place"),
		AlertType:       stringField(raw, DefaultCameraAlertType, "alertType"),
		CameraID:        stringField(raw, DefaultCameraID, "cameraId"),
		ThreatLevel:     stringField(raw, DefaultThreatLevel, "threatLevel"),
		RiskFactors:     stringField(raw, DefaultRiskFactors, "riskFactors"),
		Lighting:        stringField(raw, DefaultLighting, "lighting"),
		Behavior:        stringField(raw, DefaultBehavior, "behavior"),
		PersonCount:     personCount,
		MotionIntensity: numberField(raw, "motionIntensity", 0),
		BrightnessLevel: intField(raw, "brightnessLevel", 0),
	}
	return alert
}

// NormalizeSOSAlert builds an SOS alert. Severity is always CRITICAL.
func NormalizeSOSAlert(raw models.RawFields, id string, fallback models.Position, now time.Time) *models.Alert {
	alert := newAlert(raw, id, models.AlertKindSOS, models.SeverityCritical, fallback, now)
	alert.Description = stringField(raw, DefaultSOSDescription, "description")
	alert.SOSDetails = &models.SOSDetails{
		UserName:  stringField(raw, DefaultUserName, "userName"),
		UserPhone: stringField(raw, DefaultUserPhone, "userPhone"),
	}
	return alert
}

// NormalizeOfficerProfile applies login defaults to an officer_login payload.
func NormalizeOfficerProfile(raw models.RawFields, fallback models.Position) models.OfficerProfile {
	return models.OfficerProfile{
		Name: stringField(raw, DefaultOfficerName, "name"),
		Lat:  latitudeField(raw, "lat", fallback.Lat),
		Lng:  longitudeField(raw, "lng", fallback.Lng),
		Unit: stringField(raw, DefaultOfficerUnit, "unit"),
	}
}

func newAlert(raw models.RawFields, id string, kind models.AlertKind, severity models.Severity, fallback models.Position, now time.Time) *models.Alert {
	alert := &models.Alert{
		ID:         id,
		Kind:       kind,
		Severity:   severity,
		Lat:        latitudeField(raw, "lat", fallback.Lat),
		Lng:        longitudeField(raw, "lng", fallback.Lng),
		OccurredAt: stringField(raw, now.UTC().Format(time.RFC3339), occurredAtKeys...),
		Status:     models.AlertStatusActive,
		ReceivedAt: now,
	}
	if ref := stringField(raw, "", snippetKeys...); ref != "" {
		alert.SnippetRef = &ref
	}
	return alert
}

// lookup returns the first usable value under keys. nil, booleans and blank
// strings count as absent.
func lookup(raw models.RawFields, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case bool:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
		}
		return value, true
	}
	return nil, false
}

func stringField(raw models.RawFields, def string, keys ...string) string {
	value, ok := lookup(raw, keys...)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// LookupFloat coerces a number or numeric string. ok is false for anything else,
// including NaN and infinities.
func LookupFloat(raw models.RawFields, key string) (float64, bool) {
	value, ok := lookup(raw, key)
	if !ok {
		return 0, false
	}
	if s, isString := value.(string); isString {
		value = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numberField(raw models.RawFields, key string, def float64) float64 {
	if f, ok := LookupFloat(raw, key); ok {
		return f
	}
	return def
}

// intField truncates toward zero. Values outside the int32 range are unusable.
func intField(raw models.RawFields, key string, def int) int {
	if f, ok := LookupFloat(raw, key); ok && f >= math.MinInt32 && f <= math.MaxInt32 {
		return int(f)
	}
	return def
}

func latitudeField(raw models.RawFields, key string, def float64) float64 {
	if f, ok := LookupFloat(raw, key); ok && utils.IsValidLatitude(f) {
		return f
	}
	return def
}

func longitudeField(raw models.RawFields, key string, def float64) float64 {
	if f, ok := LookupFloat(raw, key); ok && utils.IsValidLongitude(f) {
		return f
	}
	return def
}
