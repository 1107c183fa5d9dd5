package services

import "time"

const (
	KeyGameSession  = "game:session:%s"
	KeySessionIndex = "game:sessions"
	KeyFlipRecord   = "flip:record:%s"
	KeyRateLimit    = "ratelimit:%s:%s"

	TTLGameSession = 7 * 24 * time.Hour  // 7 days
	TTLFlipRecord  = 30 * 24 * time.Hour // 30 days, audit window

	DefaultRateLimitJoin = 30  // Max 30 joins per minute
	DefaultRateLimitFlip = 60  // Max 60 flips per minute
	DefaultRateLimitRead = 120 // Max 120 state reads per minute
)
