package models

import "time"

// Standard error wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Alert endpoints

type AlertResponse struct {
	Success bool   `json:"success"`
	Alert   *Alert `json:"alert"`
}

type ClearAlertsResponse struct {
	Success bool       `json:"success"`
	Cleared int        `json:"cleared"`
	Type    ClearScope `json:"type"`
}

type AlertCounts struct {
	Camera         int `json:"camera"`
	SOS            int `json:"sos"`
	Total          int `json:"total"`
	ActiveCamera   int `json:"activeCamera"`
	ActiveSOS      int `json:"activeSos"`
	ActiveTracking int `json:"activeTracking"`
}

type AlertsSnapshot struct {
	Success        bool            `json:"success"`
	CameraAlerts   []*Alert        `json:"cameraAlerts"`
	SOSAlerts      []*Alert        `json:"sosAlerts"`
	ActiveTracking []TrackingEntry `json:"activeTracking"`
	Counts         AlertCounts     `json:"counts"`
}

type AlertList struct {
	Success bool      `json:"success"`
	Kind    AlertKind `json:"kind"`
	Alerts  []*Alert  `json:"alerts"`
	Count   int       `json:"count"`
}

type TrackingData struct {
	Success  bool            `json:"success"`
	Tracking []TrackingEntry `json:"tracking"`
	Officers []OfficerEntry  `json:"officers"`
	Counts   TrackingCounts  `json:"counts"`
}

type TrackingCounts struct {
	Tracking int `json:"tracking"`
	Officers int `json:"officers"`
}

// Health Check Response
type HealthResponse struct {
	Status           string         `json:"status"`
	Timestamp        time.Time      `json:"timestamp"`
	StartedAt        time.Time      `json:"startedAt"`
	UptimeSeconds    int64          `json:"uptimeSeconds"`
	Alerts           AlertCounts    `json:"alerts"`
	OfficersOnline   int            `json:"officersOnline"`
	ConnectedClients int            `json:"connectedClients"`
	Process          *ProcessHealth `json:"process,omitempty"`
}

type ProcessHealth struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rssBytes"`
	CPUPercent float64 `json:"cpuPercent"`
	Goroutines int     `json:"goroutines"`
}

type SnippetList struct {
	Success  bool       `json:"success"`
	Snippets []BlobInfo `json:"snippets"`
	Count    int        `json:"count"`
}

type BlobInfo struct {
	Ref        string    `json:"ref"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

type UploadSnippetResponse struct {
	Success    bool   `json:"success"`
	SnippetRef string `json:"snippetRef"`
}

// Error Response Codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeAuthentication = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization  = "AUTHORIZATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal       = "INTERNAL_ERROR"
)
