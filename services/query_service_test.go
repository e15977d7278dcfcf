package services

import (
	"alertrelay/models"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedConnections int

func (c fixedConnections) LiveConnections() int { return int(c) }

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs []models.BlobInfo
	err   error
	calls int
}

func (s *fakeBlobStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	return name, nil
}

func (s *fakeBlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, models.BlobInfo, error) {
	return nil, models.BlobInfo{}, errors.New("not implemented")
}

func (s *fakeBlobStore) List(ctx context.Context) ([]models.BlobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.blobs, s.err
}

func newQueryFixture(blobs *fakeBlobStore) (*fixture, *QueryService) {
	f := newFixture(100)
	qs := NewQueryService(f.alerts, f.presence, f.tracking, f.executor, fixedConnections(3), blobs, time.Minute)
	return f, qs
}

func TestQueryService_Alerts(t *testing.T) {
	f, qs := newQueryFixture(&fakeBlobStore{})
	ctx := context.Background()

	cam, err := f.alertSvc.IngestCamera(ctx, "secret", models.RawFields{})
	require.NoError(t, err)
	_, err = f.alertSvc.IngestSOS(ctx, "secret", models.RawFields{})
	require.NoError(t, err)
	_, err = f.alertSvc.Resolve(ctx, cam.ID, "")
	require.NoError(t, err)
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": cam.ID}))

	snapshot := qs.Alerts(ctx)

	assert.True(t, snapshot.Success)
	assert.Len(t, snapshot.CameraAlerts, 1)
	assert.Len(t, snapshot.SOSAlerts, 1)
	require.Len(t, snapshot.ActiveTracking, 1)
	assert.Equal(t, "c1", snapshot.ActiveTracking[0].ConnID)
	assert.Equal(t, models.AlertCounts{
		Camera:         1,
		SOS:            1,
		Total:          2,
		ActiveCamera:   0,
		ActiveSOS:      1,
		ActiveTracking: 1,
	}, snapshot.Counts)

	byKind := qs.AlertsByKind(ctx, models.AlertKindSOS)
	assert.Equal(t, 1, byKind.Count)
	assert.Equal(t, models.AlertKindSOS, byKind.Kind)
}

func TestQueryService_AlertsNeverFails(t *testing.T) {
	f, qs := newQueryFixture(&fakeBlobStore{})
	f.executor.stopped = true

	snapshot := qs.Alerts(context.Background())
	assert.NotNil(t, snapshot.CameraAlerts)
	assert.NotNil(t, snapshot.SOSAlerts)
	assert.NotNil(t, snapshot.ActiveTracking)

	data := qs.TrackingData(context.Background())
	assert.NotNil(t, data.Tracking)
	assert.NotNil(t, data.Officers)

	health := qs.Health(context.Background())
	assert.Equal(t, "degraded", health.Status)
}

func TestQueryService_TrackingData(t *testing.T) {
	f, qs := newQueryFixture(&fakeBlobStore{})
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestOfficerLogin, map[string]interface{}{"name": "Ravi"}))
	f.trackSvc.OnEvent("c2", wsRequest(models.WSRequestOfficerLogin, map[string]interface{}{"name": "Anu"}))
	f.trackSvc.OnEvent("c2", wsRequest(models.WSRequestStartTracking, map[string]interface{}{"alertId": "SOS-ALERT-1-00"}))

	data := qs.TrackingData(context.Background())

	assert.Equal(t, models.TrackingCounts{Tracking: 1, Officers: 2}, data.Counts)
	assert.Equal(t, "c2", data.Tracking[0].ConnID)
	assert.Equal(t, "Ravi", data.Officers[0].Name)
}

func TestQueryService_Health(t *testing.T) {
	f, qs := newQueryFixture(&fakeBlobStore{})
	_, err := f.alertSvc.IngestCamera(context.Background(), "secret", models.RawFields{})
	require.NoError(t, err)
	f.trackSvc.OnEvent("c1", wsRequest(models.WSRequestOfficerLogin, nil))

	health := qs.Health(context.Background())

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 1, health.Alerts.Total)
	assert.Equal(t, 1, health.OfficersOnline)
	assert.Equal(t, 3, health.ConnectedClients)
	assert.GreaterOrEqual(t, health.UptimeSeconds, int64(0))
	if health.Process != nil {
		assert.Positive(t, health.Process.Goroutines)
	}
}

func TestQueryService_SnippetsCached(t *testing.T) {
	blobs := &fakeBlobStore{blobs: []models.BlobInfo{{Ref: "a.mp4", Size: 10}}}
	_, qs := newQueryFixture(blobs)

	first := qs.Snippets(context.Background())
	second := qs.Snippets(context.Background())

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, blobs.calls)

	qs.InvalidateSnippets()
	qs.Snippets(context.Background())
	assert.Equal(t, 2, blobs.calls)
}

func TestQueryService_SnippetsFailureIsEmpty(t *testing.T) {
	blobs := &fakeBlobStore{err: errors.New("disk gone")}
	_, qs := newQueryFixture(blobs)

	list := qs.Snippets(context.Background())
	assert.True(t, list.Success)
	assert.Empty(t, list.Snippets)
	assert.NotNil(t, list.Snippets)

	qs.Snippets(context.Background())
	assert.Equal(t, 2, blobs.calls, "failures are not cached")
}
