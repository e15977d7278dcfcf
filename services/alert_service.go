package services

import (
	"alertrelay/interfaces"
	"alertrelay/metrics"
	"alertrelay/models"
	"alertrelay/repositories"
	"alertrelay/utils"
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AlertService is the ingestion gateway plus the resolve and clear operations.
// Every store access runs through the executor.
type AlertService struct {
	alertRepo *repositories.AlertRepository
	executor  interfaces.Executor
	notifier  interfaces.Notifier
	metrics   *metrics.Metrics
	ids       *utils.IDGenerator
	apiKey    string
	fallback  models.Position
	now       func() time.Time
}

func NewAlertService(
	alertRepo *repositories.AlertRepository,
	executor interfaces.Executor,
	notifier interfaces.Notifier,
	m *metrics.Metrics,
	apiKey string,
	fallback models.Position,
) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		executor:  executor,
		notifier:  notifier,
		metrics:   m,
		ids:       utils.NewIDGenerator(time.Now),
		apiKey:    apiKey,
		fallback:  fallback,
		now:       time.Now,
	}
}

// IngestCamera validates the credential, normalizes raw and publishes the alert.
func (as *AlertService) IngestCamera(ctx context.Context, credential string, raw models.RawFields) (*models.Alert, error) {
	return as.ingest(ctx, credential, raw, models.AlertKindCamera)
}

func (as *AlertService) IngestSOS(ctx context.Context, credential string, raw models.RawFields) (*models.Alert, error) {
	return as.ingest(ctx, credential, raw, models.AlertKindSOS)
}

// Authenticate checks the shared secret for an ingestion of kind. Callers run it
// before reading the request body.
func (as *AlertService) Authenticate(credential string, kind models.AlertKind) error {
	if credential != as.apiKey {
		as.metrics.AlertRejected(string(kind), "invalid_api_key")
		logrus.WithField("kind", kind).Warn("Alert rejected: invalid API key")
		return utils.NewInvalidAPIKeyError()
	}
	return nil
}

func (as *AlertService) ingest(ctx context.Context, credential string, raw models.RawFields, kind models.AlertKind) (*models.Alert, error) {
	if err := as.Authenticate(credential, kind); err != nil {
		return nil, err
	}

	var (
		alert *models.Alert
		event string
	)
	now := as.now()
	switch kind {
	case models.AlertKindSOS:
		alert = NormalizeSOSAlert(raw, as.ids.Next(models.SOSAlertIDPrefix), as.fallback, now)
		event = models.WSTypeNewSOSAlert
	default:
		alert = NormalizeCameraAlert(raw, as.ids.Next(models.CameraAlertIDPrefix), as.fallback, now)
		event = models.WSTypeNewCameraAlert
	}

	var published *models.Alert
	err := as.executor.Execute(ctx, func() {
		as.alertRepo.Append(alert)
		as.notifier.NotifyAll(event, alert)
		published = alert.Clone()
	})
	if err != nil {
		as.metrics.AlertRejected(string(kind), "hub_unavailable")
		return nil, err
	}

	as.metrics.AlertIngested(string(kind))
	logrus.WithFields(logrus.Fields{
		"alertId":  published.ID,
		"kind":     kind,
		"severity": published.Severity,
	}).Info("Alert ingested")

	return published, nil
}

// Resolve marks an alert resolved. An empty kind is inferred from the id prefix.
func (as *AlertService) Resolve(ctx context.Context, alertID string, kind string) (*models.Alert, error) {
	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return nil, utils.NewAlertNotFoundError()
	}

	alertKind, ok := models.ParseAlertKind(kind)
	if !ok {
		if strings.TrimSpace(kind) != "" {
			return nil, utils.NewAlertNotFoundError()
		}
		alertKind = models.KindFromAlertID(alertID)
	}

	var (
		resolved *models.Alert
		findErr  error
	)
	err := as.executor.Execute(ctx, func() {
		alert, err := as.alertRepo.Resolve(alertID, alertKind, as.now())
		if err != nil {
			findErr = err
			return
		}
		resolved = alert.Clone()
		as.notifier.NotifyAll(models.WSTypeAlertResolved, models.WSAlertResolved{
			AlertID:   alertID,
			AlertType: alertKind,
			Alert:     resolved,
		})
	})
	if err != nil {
		return nil, err
	}
	if findErr != nil {
		return nil, findErr
	}

	as.metrics.AlertResolved(string(alertKind))
	logrus.WithFields(logrus.Fields{"alertId": alertID, "kind": alertKind}).Info("Alert resolved")
	return resolved, nil
}

// Clear empties the collections selected by scope. An empty scope clears both.
func (as *AlertService) Clear(ctx context.Context, scope models.ClearScope) (int, error) {
	switch scope {
	case models.ClearCamera, models.ClearSOS, models.ClearAll:
	case "":
		scope = models.ClearAll
	default:
		return 0, utils.NewBadRequestError("alertType must be camera, sos or all")
	}

	cleared := 0
	err := as.executor.Execute(ctx, func() {
		cleared = as.alertRepo.Clear(scope)
		as.notifier.NotifyAll(models.ClearedEventFor(scope), models.WSAlertsCleared{Cleared: cleared})
	})
	if err != nil {
		return 0, err
	}

	as.metrics.AlertsCleared(cleared)
	logrus.WithFields(logrus.Fields{"scope": scope, "cleared": cleared}).Info("Alerts cleared")
	return cleared, nil
}
