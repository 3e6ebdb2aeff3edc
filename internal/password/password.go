// Package password hashes and verifies user passwords.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmSHA256 = "sha256"
	AlgorithmBcrypt = "bcrypt"
	// AlgorithmBase64 is a reversible encoding, not a hash.
	AlgorithmBase64 = "base64"
)

// Hasher produces and checks password digests for one algorithm.
type Hasher interface {
	Algorithm() string
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// New returns the hasher registered for algorithm.
func New(algorithm string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmSHA256:
		return SHA256{}, nil
	case AlgorithmBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	case AlgorithmBase64:
		return Base64{}, nil
	}
	return nil, fmt.Errorf("unknown password algorithm %q", algorithm)
}

// Insecure reports whether the hasher's output can be reversed.
func Insecure(h Hasher) bool {
	return h.Algorithm() == AlgorithmBase64
}

type SHA256 struct{}

func (SHA256) Algorithm() string { return AlgorithmSHA256 }

func (SHA256) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256) Verify(hash, password string) bool {
	computed, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(computed)) == 1
}

type Bcrypt struct {
	Cost int
}

func (Bcrypt) Algorithm() string { return AlgorithmBcrypt }

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (Bcrypt) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Base64 struct{}

func (Base64) Algorithm() string { return AlgorithmBase64 }

func (Base64) Hash(password string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(password)), nil
}

func (h Base64) Verify(hash, password string) bool {
	computed, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) == 1
}

var (
	hexDigest   = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

// LooksHashed is the format guess older clients used to tell a digest from a
// plain-text password. Any alphanumeric plain-text password matches the base64
// shape, so the result is only advisory.
func LooksHashed(s string) bool {
	return hexDigest.MatchString(s) || base64Shape.MatchString(s)
}

// VerifyLegacy checks a password against an unversioned stored value. A
// SHA-256 hex digest is only ever compared as a digest; any other value is
// tried as base64 and then as verbatim plain text. It returns the format that
// matched.
func VerifyLegacy(stored, password string) (format string, ok bool) {
	if stored == "" {
		return "", false
	}
	if hexDigest.MatchString(stored) {
		if (SHA256{}).Verify(stored, password) {
			return AlgorithmSHA256, true
		}
		return "", false
	}
	if (Base64{}).Verify(stored, password) {
		return AlgorithmBase64, true
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1 {
		return "plain", true
	}
	return "", false
}
