package repositories

import (
	"alertrelay/models"
	"alertrelay/utils"
	"time"
)

// AlertRepository holds the camera and SOS collections, newest first, each capped at
// maxAlerts. It does no locking: the hub loop is its only caller.
type AlertRepository struct {
	maxAlerts int
	camera    []*models.Alert
	sos       []*models.Alert
}

func NewAlertRepository(maxAlerts int) *AlertRepository {
	if maxAlerts < 1 {
		maxAlerts = 1
	}
	return &AlertRepository{
		maxAlerts: maxAlerts,
		camera:    make([]*models.Alert, 0, maxAlerts),
		sos:       make([]*models.Alert, 0, maxAlerts),
	}
}

func (r *AlertRepository) collection(kind models.AlertKind) *[]*models.Alert {
	if kind == models.AlertKindSOS {
		return &r.sos
	}
	return &r.camera
}

// Append inserts alert at the head of its collection and evicts the oldest entries
// past the cap.
func (r *AlertRepository) Append(alert *models.Alert) {
	list := r.collection(alert.Kind)

	updated := make([]*models.Alert, 0, len(*list)+1)
	updated = append(updated, alert)
	updated = append(updated, *list...)
	if len(updated) > r.maxAlerts {
		updated = updated[:r.maxAlerts]
	}
	*list = updated
}

// Find returns the live record; callers outside the loop must Clone it.
func (r *AlertRepository) Find(id string, kind models.AlertKind) (*models.Alert, bool) {
	for _, alert := range *r.collection(kind) {
		if alert.ID == id {
			return alert, true
		}
	}
	return nil, false
}

// Resolve marks the alert resolved and stamps resolvedAt. Resolving an already
// resolved alert succeeds again and re-stamps.
func (r *AlertRepository) Resolve(id string, kind models.AlertKind, now time.Time) (*models.Alert, error) {
	alert, ok := r.Find(id, kind)
	if !ok {
		return nil, utils.NewAlertNotFoundError()
	}

	resolvedAt := now
	alert.Status = models.AlertStatusResolved
	alert.ResolvedAt = &resolvedAt
	return alert, nil
}

// Clear empties the selected collections and returns how many alerts were removed.
func (r *AlertRepository) Clear(scope models.ClearScope) int {
	cleared := 0
	if scope == models.ClearCamera || scope == models.ClearAll {
		cleared += len(r.camera)
		r.camera = make([]*models.Alert, 0, r.maxAlerts)
	}
	if scope == models.ClearSOS || scope == models.ClearAll {
		cleared += len(r.sos)
		r.sos = make([]*models.Alert, 0, r.maxAlerts)
	}
	return cleared
}

// Snapshot returns deep copies in store order (newest first).
func (r *AlertRepository) Snapshot(kind models.AlertKind) []*models.Alert {
	list := *r.collection(kind)
	out := make([]*models.Alert, 0, len(list))
	for _, alert := range list {
		out = append(out, alert.Clone())
	}
	return out
}

func (r *AlertRepository) Count(kind models.AlertKind) int {
	return len(*r.collection(kind))
}

func (r *AlertRepository) CountActive(kind models.AlertKind) int {
	active := 0
	for _, alert := range *r.collection(kind) {
		if alert.Status == models.AlertStatusActive {
			active++
		}
	}
	return active
}
