package model

import (
	"maps"
	"time"
)

// DismissedNoticesAttribute is the name of the per-user attribute holding the
// dismissal record.
const DismissedNoticesAttribute = "stellarwp_dismissed_notices"

// DismissalRecord maps a notice key to the unix time (seconds) it was dismissed.
type DismissalRecord map[string]int64

// DismissedAt returns when key was dismissed
func (r DismissalRecord) DismissedAt(key string) (time.Time, bool) {
	ts, ok := r[key]
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// Has reports whether key was dismissed
func (r DismissalRecord) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Set inserts or overwrites key with at
func (r DismissalRecord) Set(key string, at time.Time) {
	r[key] = at.Unix()
}

// Clone returns an independent copy. A nil record clones to an empty one.
func (r DismissalRecord) Clone() DismissalRecord {
	if r == nil {
		return DismissalRecord{}
	}
	return maps.Clone(r)
}
