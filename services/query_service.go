package services

import (
	"alertrelay/interfaces"
	"alertrelay/models"
	"alertrelay/repositories"
	"alertrelay/storage"
	"context"
	"os"
	"runtime"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
)

const snippetListCacheKey = "snippets"

// QueryService serves read-only views. It never mutates state and never fails:
// lookups that cannot complete yield empty results.
type QueryService struct {
	alertRepo    *repositories.AlertRepository
	presenceRepo *repositories.PresenceRepository
	trackingRepo *repositories.TrackingRepository
	executor     interfaces.Executor
	connections  interfaces.ConnectionCounter
	blobs        storage.BlobStore
	snippetCache *gocache.Cache
	startedAt    time.Time
	now          func() time.Time
}

func NewQueryService(
	alertRepo *repositories.AlertRepository,
	presenceRepo *repositories.PresenceRepository,
	trackingRepo *repositories.TrackingRepository,
	executor interfaces.Executor,
	connections interfaces.ConnectionCounter,
	blobs storage.BlobStore,
	snippetListTTL time.Duration,
) *QueryService {
	return &QueryService{
		alertRepo:    alertRepo,
		presenceRepo: presenceRepo,
		trackingRepo: trackingRepo,
		executor:     executor,
		connections:  connections,
		blobs:        blobs,
		snippetCache: gocache.New(snippetListTTL, 2*snippetListTTL),
		startedAt:    time.Now(),
		now:          time.Now,
	}
}

// Alerts returns both collections, the active tracking sessions and counts.
func (qs *QueryService) Alerts(ctx context.Context) models.AlertsSnapshot {
	snapshot := models.AlertsSnapshot{
		Success:        true,
		CameraAlerts:   []*models.Alert{},
		SOSAlerts:      []*models.Alert{},
		ActiveTracking: []models.TrackingEntry{},
	}

	err := qs.executor.Execute(ctx, func() {
		snapshot.CameraAlerts = qs.alertRepo.Snapshot(models.AlertKindCamera)
		snapshot.SOSAlerts = qs.alertRepo.Snapshot(models.AlertKindSOS)
		snapshot.ActiveTracking = qs.trackingRepo.SnapshotAll()
		snapshot.Counts = qs.alertCounts()
	})
	if err != nil {
		logrus.WithError(err).Warn("Alert snapshot unavailable")
	}
	return snapshot
}

func (qs *QueryService) AlertsByKind(ctx context.Context, kind models.AlertKind) models.AlertList {
	list := models.AlertList{Success: true, Kind: kind, Alerts: []*models.Alert{}}

	err := qs.executor.Execute(ctx, func() {
		list.Alerts = qs.alertRepo.Snapshot(kind)
	})
	if err != nil {
		logrus.WithError(err).Warn("Alert list unavailable")
	}
	list.Count = len(list.Alerts)
	return list
}

func (qs *QueryService) TrackingData(ctx context.Context) models.TrackingData {
	data := models.TrackingData{
		Success:  true,
		Tracking: []models.TrackingEntry{},
		Officers: []models.OfficerEntry{},
	}

	err := qs.executor.Execute(ctx, func() {
		data.Tracking = qs.trackingRepo.SnapshotAll()
		data.Officers = qs.presenceRepo.SnapshotAll()
	})
	if err != nil {
		logrus.WithError(err).Warn("Tracking data unavailable")
	}
	data.Counts = models.TrackingCounts{
		Tracking: len(data.Tracking),
		Officers: len(data.Officers),
	}
	return data
}

func (qs *QueryService) Health(ctx context.Context) models.HealthResponse {
	now := qs.now()
	health := models.HealthResponse{
		Status:        "healthy",
		Timestamp:     now,
		StartedAt:     qs.startedAt,
		UptimeSeconds: int64(now.Sub(qs.startedAt).Seconds()),
	}

	err := qs.executor.Execute(ctx, func() {
		health.Alerts = qs.alertCounts()
		health.OfficersOnline = qs.presenceRepo.Count()
	})
	if err != nil {
		health.Status = "degraded"
		logrus.WithError(err).Warn("Health counts unavailable")
	}
	if qs.connections != nil {
		health.ConnectedClients = qs.connections.LiveConnections()
	}
	health.Process = processHealth()
	return health
}

// Snippets lists stored media, caching the listing briefly.
func (qs *QueryService) Snippets(ctx context.Context) models.SnippetList {
	if cached, ok := qs.snippetCache.Get(snippetListCacheKey); ok {
		blobs := cached.([]models.BlobInfo)
		return models.SnippetList{Success: true, Snippets: blobs, Count: len(blobs)}
	}

	blobs := []models.BlobInfo{}
	if qs.blobs != nil {
		listed, err := qs.blobs.List(ctx)
		if err != nil {
			logrus.WithError(err).Warn("Failed to list snippets")
		} else {
			blobs = listed
			qs.snippetCache.SetDefault(snippetListCacheKey, blobs)
		}
	}
	return models.SnippetList{Success: true, Snippets: blobs, Count: len(blobs)}
}

// InvalidateSnippets drops the cached listing after an upload.
func (qs *QueryService) InvalidateSnippets() {
	qs.snippetCache.Delete(snippetListCacheKey)
}

// alertCounts must run on the executor.
func (qs *QueryService) alertCounts() models.AlertCounts {
	camera := qs.alertRepo.Count(models.AlertKindCamera)
	sos := qs.alertRepo.Count(models.AlertKindSOS)
	return models.AlertCounts{
		Camera:         camera,
		SOS:            sos,
		Total:          camera + sos,
		ActiveCamera:   qs.alertRepo.CountActive(models.AlertKindCamera),
		ActiveSOS:      qs.alertRepo.CountActive(models.AlertKindSOS),
		ActiveTracking: qs.trackingRepo.Count(),
	}
}

// processHealth returns nil when the process cannot be inspected.
func processHealth() *models.ProcessHealth {
	pid := int32(os.Getpid())
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return nil
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		cpuPercent = 0
	}
	return &models.ProcessHealth{
		PID:        pid,
		RSSBytes:   memInfo.RSS,
		CPUPercent: cpuPercent,
		Goroutines: runtime.NumGoroutine(),
	}
}
