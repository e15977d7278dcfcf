package repositories

import (
	"alertrelay/models"
	"sort"
	"time"
)

// TrackingRepository keeps at most one tracking session per connection. It reads
// the presence registry for the responder's starting position.
type TrackingRepository struct {
	sessions map[string]*models.TrackingSession
	presence *PresenceRepository
}

func NewTrackingRepository(presence *PresenceRepository) *TrackingRepository {
	return &TrackingRepository{
		sessions: make(map[string]*models.TrackingSession),
		presence: presence,
	}
}

// Start replaces any session for connID. The responder position comes from the
// connection's presence, or fallback when there is none. The alert is not checked
// against the alert store.
func (r *TrackingRepository) Start(connID, alertID string, alertLat, alertLng float64, kind models.AlertKind, fallback models.Position, now time.Time) models.TrackingSession {
	position := fallback
	if r.presence != nil {
		if officer, ok := r.presence.Get(connID); ok {
			position = models.Position{Lat: officer.Lat, Lng: officer.Lng}
		}
	}

	session := &models.TrackingSession{
		AlertID:   alertID,
		AlertLat:  alertLat,
		AlertLng:  alertLng,
		AlertType: kind,
		Lat:       position.Lat,
		Lng:       position.Lng,
		StartedAt: now,
		Status:    models.TrackingStatusTracking,
	}
	r.sessions[connID] = session
	return *session
}

// UpdatePosition reports false when connID has no session.
func (r *TrackingRepository) UpdatePosition(connID string, lat, lng float64) (models.TrackingSession, bool) {
	session, ok := r.sessions[connID]
	if !ok {
		return models.TrackingSession{}, false
	}
	session.Lat = lat
	session.Lng = lng
	return *session, true
}

// Stop reports whether a session existed.
func (r *TrackingRepository) Stop(connID string) bool {
	_, ok := r.sessions[connID]
	delete(r.sessions, connID)
	return ok
}

// Remove is Stop under the name used on disconnect.
func (r *TrackingRepository) Remove(connID string) bool {
	return r.Stop(connID)
}

func (r *TrackingRepository) Get(connID string) (models.TrackingSession, bool) {
	session, ok := r.sessions[connID]
	if !ok {
		return models.TrackingSession{}, false
	}
	return *session, true
}

// SnapshotAll is ordered by start time, then connection id.
func (r *TrackingRepository) SnapshotAll() []models.TrackingEntry {
	entries := make([]models.TrackingEntry, 0, len(r.sessions))
	for connID, session := range r.sessions {
		entries = append(entries, models.TrackingEntry{ConnID: connID, TrackingSession: *session})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].StartedAt.Equal(entries[j].StartedAt) {
			return entries[i].StartedAt.Before(entries[j].StartedAt)
		}
		return entries[i].ConnID < entries[j].ConnID
	})
	return entries
}

func (r *TrackingRepository) Count() int {
	return len(r.sessions)
}
