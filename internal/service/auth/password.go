package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by NewHasher.
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// Hasher hashes new passwords with the configured scheme and verifies
// stored hashes of either scheme.
type Hasher struct {
	scheme     string
	bcryptCost int
}

func NewHasher(scheme string) (*Hasher, error) {
	switch scheme {
	case SchemeSHA256, SchemeBcrypt:
		return &Hasher{scheme: scheme, bcryptCost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}

func (h *Hasher) Hash(password string) (string, error) {
	if h.scheme == SchemeBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(hashed), nil
	}
	return sha256Hex(password), nil
}

// Matches reports whether password produces stored.
func (h *Hasher) Matches(stored, password string) (bool, error) {
	if strings.HasPrefix(stored, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
	candidate := sha256Hex(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(candidate)) == 1, nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
