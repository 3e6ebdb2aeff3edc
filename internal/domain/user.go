package domain

import "time"

// CredentialVersion is the schema version written on every new credential.
const CredentialVersion = 2

// Credential is the versioned password record stored with a user.
type Credential struct {
	Version   int    `json:"version"`
	Algorithm string `json:"algorithm"`
	Hash      string `json:"hash"`
}

// User represents an account held in the user collection.
//
// LegacyPassword carries the unversioned "password" field written by older
// clients (SHA-256 hex, base64, or plain text). It is emptied once the record
// is upgraded to a versioned Credential.
type User struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	Email          string      `json:"email,omitempty"`
	Credential     *Credential `json:"credential,omitempty"`
	LegacyPassword string      `json:"password,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Versioned reports whether the user carries an explicit credential record.
func (u User) Versioned() bool {
	return u.Credential != nil && u.Credential.Version >= CredentialVersion
}

// Sanitized returns a copy without any password material.
func (u User) Sanitized() User {
	u.Credential = nil
	u.LegacyPassword = ""
	return u
}
