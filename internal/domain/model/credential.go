package model

import "time"

// Credential is a stored password entry keyed by service name. EncryptedPassword
// holds whatever the configured cipher produced; the store never sees plaintext.
type Credential struct {
	Service           string
	Username          string
	EncryptedPassword string
	UpdatedAt         time.Time
}
