package widget

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	sessionPrefix    = "sess_"
	shortSessionSize = 8
)

// SessionIDFunc produces a session token. It is called once per widget.
type SessionIDFunc func() string

// ShortSessionID returns "sess_" followed by 8 base-36 characters drawn
// from a random UUID.
func ShortSessionID() string {
	id := uuid.New()
	s := new(big.Int).SetBytes(id[:]).Text(36)
	if len(s) < shortSessionSize {
		s = strings.Repeat("0", shortSessionSize-len(s)) + s
	}
	return sessionPrefix + s[len(s)-shortSessionSize:]
}

// UUIDSessionID returns "sess_" followed by a random UUID.
func UUIDSessionID() string {
	return sessionPrefix + uuid.NewString()
}

// SessionIDFormat resolves a configured format name. Unknown names fall
// back to the short format.
func SessionIDFormat(name string) SessionIDFunc {
	if name == "uuid" {
		return UUIDSessionID
	}
	return ShortSessionID
}
