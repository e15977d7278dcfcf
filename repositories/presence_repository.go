package repositories

import (
	"alertrelay/models"
	"sort"
	"time"
)

// PresenceRepository maps connection ids to logged-in officers.
type PresenceRepository struct {
	officers map[string]*models.OfficerPresence
}

func NewPresenceRepository() *PresenceRepository {
	return &PresenceRepository{
		officers: make(map[string]*models.OfficerPresence),
	}
}

// Login replaces any previous presence for connID.
func (r *PresenceRepository) Login(connID string, profile models.OfficerProfile, now time.Time) models.OfficerPresence {
	presence := &models.OfficerPresence{
		Name:      profile.Name,
		Lat:       profile.Lat,
		Lng:       profile.Lng,
		Unit:      profile.Unit,
		Status:    models.OfficerStatusAvailable,
		LoginTime: now,
	}
	r.officers[connID] = presence
	return *presence
}

// UpdatePosition reports false when connID has no presence.
func (r *PresenceRepository) UpdatePosition(connID string, lat, lng float64) bool {
	presence, ok := r.officers[connID]
	if !ok {
		return false
	}
	presence.Lat = lat
	presence.Lng = lng
	return true
}

func (r *PresenceRepository) Get(connID string) (models.OfficerPresence, bool) {
	presence, ok := r.officers[connID]
	if !ok {
		return models.OfficerPresence{}, false
	}
	return *presence, true
}

func (r *PresenceRepository) Remove(connID string) {
	delete(r.officers, connID)
}

// SnapshotAll is ordered by login time, then connection id.
func (r *PresenceRepository) SnapshotAll() []models.OfficerEntry {
	entries := make([]models.OfficerEntry, 0, len(r.officers))
	for connID, presence := range r.officers {
		entries = append(entries, models.OfficerEntry{ConnID: connID, OfficerPresence: *presence})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].LoginTime.Equal(entries[j].LoginTime) {
			return entries[i].LoginTime.Before(entries[j].LoginTime)
		}
		return entries[i].ConnID < entries[j].ConnID
	})
	return entries
}

func (r *PresenceRepository) Count() int {
	return len(r.officers)
}
