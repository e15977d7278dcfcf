package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// ingestRoutes maps sensor-facing routes to what they ingest.
var ingestRoutes = map[string]string{
	"/send-alert":     "camera",
	"/send-sos-alert": "sos",
	"/upload-snippet": "snippet",
}

// RequestLogConfig controls the access log.
type RequestLogConfig struct {
	Logger *logrus.Logger

	// Log sensor payloads on ingestion routes. Multipart uploads are never logged.
	LogIngestBody bool
	MaxBodySize   int64

	// Path prefixes that are not logged at all
	SkipPaths []string
}

// RequestLogger tags every request with an id and writes one structured line
// per request once the handler is done.
func RequestLogger(config RequestLogConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = 4096
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		path := c.Request.URL.Path
		if hasPrefix(path, config.SkipPaths) {
			c.Next()
			return
		}

		kind, ingest := ingestRoutes[path]

		var body []byte
		if ingest && config.LogIngestBody && isJSON(c.ContentType()) {
			body = peekBody(c, config.MaxBodySize)
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": float64(latency.Microseconds()) / 1000.0,
			"ip":         c.ClientIP(),
		}
		if ingest {
			fields["ingest"] = kind
			fields["api_key_present"] = c.GetHeader(APIKeyHeader) != ""
		}
		if len(body) > 0 {
			fields["payload"] = string(body)
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.ByType(gin.ErrorTypeAny).String()
		}

		entry := config.Logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case status == http.StatusForbidden && ingest:
			entry.Warn("Ingestion rejected")
		case status == http.StatusTooManyRequests:
			entry.Warn("Rate limited")
		case status >= http.StatusBadRequest:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}

// LoggerForEnvironment logs sensor payloads in development only.
func LoggerForEnvironment(environment string) gin.HandlerFunc {
	return RequestLogger(RequestLogConfig{
		Logger:        logrus.StandardLogger(),
		LogIngestBody: environment == "development",
		MaxBodySize:   8192,
		SkipPaths:     []string{"/health", "/metrics"},
	})
}

// peekBody reads up to max bytes and puts them back in front of the rest of the body.
func peekBody(c *gin.Context, max int64) []byte {
	if c.Request.Body == nil {
		return nil
	}
	head, err := io.ReadAll(io.LimitReader(c.Request.Body, max))
	if err != nil {
		return nil
	}
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), c.Request.Body), c.Request.Body}
	return head
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}
