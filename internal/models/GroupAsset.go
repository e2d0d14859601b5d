package models

import (
	"sort"
	"time"
)

type GroupAsset struct {
	Group    string    `json:"group"`
	Filename string    `json:"filename"`
	StoredAt time.Time `json:"stored_at"`
	Seq      int       `json:"seq"`
}

// Newer orders assets by (StoredAt, Seq).
func (a GroupAsset) Newer(b GroupAsset) bool {
	if a.StoredAt.Equal(b.StoredAt) {
		return a.Seq > b.Seq
	}
	return a.StoredAt.After(b.StoredAt)
}

// ExpiresAt is the instant the asset stops being eligible as active.
func (a GroupAsset) ExpiresAt(retention time.Duration) time.Time {
	return a.StoredAt.Add(retention)
}

// SelectActive picks the newest asset whose age is below retention and
// returns every expired asset scanned before it. Assets past the first
// valid one are not visited. On a miss every asset is expired.
func SelectActive(assets []GroupAsset, now time.Time, retention time.Duration) (*GroupAsset, []GroupAsset) {
	sorted := make([]GroupAsset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Newer(sorted[j])
	})

	var expired []GroupAsset
	for i := range sorted {
		if now.Sub(sorted[i].StoredAt) < retention {
			active := sorted[i]
			return &active, expired
		}
		expired = append(expired, sorted[i])
	}
	return nil, expired
}
