package services

import (
	"alertrelay/models"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normalizeNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func TestNormalizeCameraAlert_Defaults(t *testing.T) {
	alert := NormalizeCameraAlert(models.RawFields{}, "CAM-ALERT-1-ab", testFallback, normalizeNow)

	assert.Equal(t, "CAM-ALERT-1-ab", alert.ID)
	assert.Equal(t, models.AlertKindCamera, alert.Kind)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
	assert.Equal(t, DefaultCameraDescription, alert.Description)
	assert.Equal(t, testFallback.Lat, alert.Lat)
	assert.Equal(t, testFallback.Lng, alert.Lng)
	assert.Equal(t, "2024-05-01T10:30:00Z", alert.OccurredAt)
	assert.Nil(t, alert.SnippetRef)
	assert.Equal(t, models.AlertStatusActive, alert.Status)
	assert.Equal(t, normalizeNow, alert.ReceivedAt)
	assert.Nil(t, alert.ResolvedAt)
	assert.Nil(t, alert.SOSDetails)

	require.NotNil(t, alert.CameraDetails)
	assert.Equal(t, models.CameraDetails{
		Place:       DefaultPlace,
		AlertType:   DefaultCameraAlertType,
		CameraID:    DefaultCameraID,
		ThreatLevel: DefaultThreatLevel,
		RiskFactors: DefaultRiskFactors,
		Lighting:    DefaultLighting,
		Behavior:    DefaultBehavior,
	}, *alert.CameraDetails)
}

func TestNormalizeCameraAlert_SuppliedFields(t *testing.T) {
	raw := models.RawFields{
		"severity":        "high",
		"description":     "Loitering near ATM",
		"lat":             "13.01",
		"lng":             77.7,
		"place":           "MG Road",
		"alertType":       "Loitering",
		"cameraId":        "CAM-17",
		"threatLevel":     "ELEVATED",
		"riskFactors":     "Night",
		"lighting":        "Dim",
		"behavior":        "Pacing",
		"personCount":     "3",
		"motionIntensity": 0.75,
		"brightnessLevel": 42.0,
		"timestamp":       "2024-04-30T22:00:00Z",
		"snippet":         "clip-17.mp4",
	}

	alert := NormalizeCameraAlert(raw, "id", testFallback, normalizeNow)

	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, "Loitering near ATM", alert.Description)
	assert.Equal(t, 13.01, alert.Lat)
	assert.Equal(t, 77.7, alert.Lng)
	assert.Equal(t, "2024-04-30T22:00:00Z", alert.OccurredAt)
	require.NotNil(t, alert.SnippetRef)
	assert.Equal(t, "clip-17.mp4", *alert.SnippetRef)
	assert.Equal(t, "MG Road", alert.Place)
	assert.Equal(t, "CAM-17", alert.CameraID)
	assert.Equal(t, 3, alert.PersonCount)
	assert.Equal(t, 0.75, alert.MotionIntensity)
	assert.Equal(t, 42, alert.BrightnessLevel)
}

func TestNormalizeCameraAlert_LenientCoercion(t *testing.T) {
	tests := []struct {
		name  string
		raw   models.RawFields
		check func(t *testing.T, alert *models.Alert)
	}{
		{
			name: "unknown severity becomes medium",
			raw:  models.RawFields{"severity": "apocalyptic"},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, models.SeverityMedium, alert.Severity)
			},
		},
		{
			name: "negative person count clamps to zero",
			raw:  models.RawFields{"personCount": -4},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, 0, alert.PersonCount)
			},
		},
		{
			name: "non numeric values fall back",
			raw:  models.RawFields{"lat": "north", "personCount": "many", "motionIntensity": map[string]interface{}{"x": 1}},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, testFallback.Lat, alert.Lat)
				assert.Equal(t, 0, alert.PersonCount)
				assert.Equal(t, 0.0, alert.MotionIntensity)
			},
		},
		{
			name: "booleans are not numbers",
			raw:  models.RawFields{"lat": true, "personCount": true},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, testFallback.Lat, alert.Lat)
				assert.Equal(t, 0, alert.PersonCount)
			},
		},
		{
			name: "integer overflow falls back to default",
			raw:  models.RawFields{"brightnessLevel": 1e20, "personCount": "1e30"},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, 0, alert.BrightnessLevel)
				assert.Equal(t, 0, alert.PersonCount)
			},
		},
		{
			name: "integer fields accept in range values",
			raw:  models.RawFields{"brightnessLevel": -12.7, "personCount": "3"},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, -12, alert.BrightnessLevel)
				assert.Equal(t, 3, alert.PersonCount)
			},
		},
		{
			name: "out of range coordinates fall back per field",
			raw:  models.RawFields{"lat": 91.0, "lng": 77.1},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, testFallback.Lat, alert.Lat)
				assert.Equal(t, 77.1, alert.Lng)
			},
		},
		{
			name: "non finite coordinates fall back",
			raw:  models.RawFields{"lat": math.NaN(), "lng": "Inf"},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, testFallback.Lat, alert.Lat)
				assert.Equal(t, testFallback.Lng, alert.Lng)
			},
		},
		{
			name: "blank strings count as absent",
			raw:  models.RawFields{"place": "   ", "snippetRef": ""},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, DefaultPlace, alert.Place)
				assert.Nil(t, alert.SnippetRef)
			},
		},
		{
			name: "time key is accepted",
			raw:  models.RawFields{"time": "2024-01-01T00:00:00"},
			check: func(t *testing.T, alert *models.Alert) {
				assert.Equal(t, "2024-01-01T00:00:00", alert.OccurredAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, NormalizeCameraAlert(tt.raw, "id", testFallback, normalizeNow))
		})
	}
}

func TestNormalizeSOSAlert(t *testing.T) {
	alert := NormalizeSOSAlert(models.RawFields{"severity": "LOW"}, "SOS-ALERT-1-ab", testFallback, normalizeNow)

	assert.Equal(t, models.AlertKindSOS, alert.Kind)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, DefaultSOSDescription, alert.Description)
	assert.Nil(t, alert.CameraDetails)
	require.NotNil(t, alert.SOSDetails)
	assert.Equal(t, DefaultUserName, alert.UserName)
	assert.Equal(t, DefaultUserPhone, alert.UserPhone)

	alert = NormalizeSOSAlert(models.RawFields{"userName": "Meera", "userPhone": 9876543210.0, "lat": 12.5, "lng": 77.1}, "id", testFallback, normalizeNow)
	assert.Equal(t, "Meera", alert.UserName)
	assert.Equal(t, "9876543210", alert.UserPhone)
	assert.Equal(t, 12.5, alert.Lat)
}

func TestNormalizeOfficerProfile(t *testing.T) {
	profile := NormalizeOfficerProfile(models.RawFields{}, testFallback)
	assert.Equal(t, models.OfficerProfile{
		Name: DefaultOfficerName,
		Lat:  testFallback.Lat,
		Lng:  testFallback.Lng,
		Unit: DefaultOfficerUnit,
	}, profile)

	profile = NormalizeOfficerProfile(models.RawFields{"name": "Ravi", "unit": "PCR-7", "lat": 13, "lng": "77.61"}, testFallback)
	assert.Equal(t, "Ravi", profile.Name)
	assert.Equal(t, "PCR-7", profile.Unit)
	assert.Equal(t, 13.0, profile.Lat)
	assert.Equal(t, 77.61, profile.Lng)
}
