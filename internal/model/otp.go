package model

import "time"

// MaxOTPAttempts is the verification attempt budget per challenge.
const MaxOTPAttempts = 5

// OTPChallengeTTL is how long a locally simulated challenge stays valid.
// The real backend enforces its own TTL.
const OTPChallengeTTL = 5 * time.Minute

// OTPChallenge binds a one-time passcode to a single transfer reference.
// Session-scoped: it survives a reload within one session but never a
// fresh login.
type OTPChallenge struct {
	Ref          string `json:"ref"`
	Code         string `json:"code"`
	ExpiresAt    int64  `json:"expiresAt"` // epoch millis
	AttemptsLeft int    `json:"attemptsLeft"`
}

// Expired reports whether the challenge is past its validity window.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.UnixMilli() > c.ExpiresAt
}
