package common

import "time"

// Freshness TTLs for cached data components
const (
	FreshnessSeries       = 1 * time.Hour
	FreshnessFundamentals = 7 * 24 * time.Hour // statements move slowly
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
