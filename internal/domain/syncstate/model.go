package syncstate

import "time"

// Entry is one persisted key/value pair used for cross-run bookkeeping such
// as the last sync report and cached asset locations.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Fresh reports whether the entry was updated within the given TTL.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.UpdatedAt) < ttl
}
