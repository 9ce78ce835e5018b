package models

import "time"

type CredentialKind int

const (
	// CredentialLocal is a password account; PassHash holds the bcrypt hash.
	CredentialLocal CredentialKind = iota
	// CredentialExternal is an account authenticated by an outside identity
	// provider; there is no local password to compare against.
	CredentialExternal
)

// Credential is a tagged variant instead of a sentinel password string, so
// external-provider accounts can never be confused with local ones.
type Credential struct {
	Kind     CredentialKind
	PassHash []byte
	Provider string
}

func (c Credential) IsExternal() bool {
	return c.Kind == CredentialExternal
}

// User is an account document. Tokens is the allowlist of currently valid
// refresh tokens: a refresh token not present here is dead even if its
// signature still verifies.
type User struct {
	ID              string
	Email           string
	Credential      Credential
	UserName        string
	ProfileImageURL string
	Tokens          []string
	CreatedAt       time.Time
}
