package models

import "time"

// TokenPair is a freshly issued access/refresh token pair. The TTLs are
// returned alongside the tokens so the transport layer can set cookie
// expirations that match the token validity windows exactly.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}
