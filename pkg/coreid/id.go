// Package coreid implements the opaque 128-bit identifiers used for
// workspaces, agents, operations, sessions, and terminals.
package coreid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ID is a 128-bit opaque identifier rendered as a hyphenated hex string.
type ID [16]byte

// Nil is the zero value of ID.
var Nil ID

// New generates a fresh random ID.
func New() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable, which we treat as unrecoverable.
		panic(fmt.Sprintf("coreid: failed to read random bytes: %v", err))
	}
	return id
}

// String renders the ID as xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
func (id ID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], id[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], id[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], id[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], id[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], id[10:16])
	return string(buf[:])
}

// IsZero reports whether this is the zero ID.
func (id ID) IsZero() bool {
	return id == Nil
}

// Parse parses a hyphenated hex string back into an ID.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != 36 {
		return id, fmt.Errorf("coreid: invalid length %d", len(s))
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return id, fmt.Errorf("coreid: malformed id %q", s)
	}
	raw := s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36]
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return id, fmt.Errorf("coreid: malformed id %q: %w", s, err)
	}
	copy(id[:], decoded)
	return id, nil
}

// MustParse parses s and panics on error; useful in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}
