package session

import "time"

// Duration bounds a session's lifetime.
//
// Absolute is the maximum lifetime counted from issuance. Inactivity, when
// set, is a sliding window counted from the last activity and capped by
// Absolute.
type Duration struct {
	Absolute   time.Duration `env:"ABSOLUTE" envDefault:"0"`
	Inactivity time.Duration `env:"INACTIVITY" envDefault:"0"`
}

// CalculateExpiration returns the expiry for a session issued at issuedAt
// and last active at lastActivity.
func CalculateExpiration(issuedAt, lastActivity time.Time, d Duration) time.Time {
	maxExpiry := issuedAt.Add(d.Absolute)
	if d.Inactivity <= 0 {
		return maxExpiry
	}

	idleExpiry := lastActivity.Add(d.Inactivity)
	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}
