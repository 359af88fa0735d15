// Package identity handles the endpoint's onion identity: the
// persistent ed25519 service key and the v3 onion address derived
// from it.
//
// Identities on the wire are opaque strings — either a published
// onion address or the literal "anonymous".  Equality is exact string
// match; nothing here canonicalises case or punctuation.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	onionSuffix  = ".onion"
	onionVersion = 0x03

	// AddressLen is the length of a v3 onion address including the
	// ".onion" suffix: 56 base32 characters + 6.
	AddressLen = 62
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// FromPublicKey derives the v3 onion address for an ed25519 service
// public key: base32(pubkey ‖ checksum ‖ version) + ".onion".
func FromPublicKey(pub ed25519.PublicKey) string {
	raw := make([]byte, 0, ed25519.PublicKeySize+3)
	raw = append(raw, pub...)
	raw = append(raw, checksum(pub)...)
	raw = append(raw, onionVersion)
	return strings.ToLower(b32.EncodeToString(raw)) + onionSuffix
}

// Validate reports whether addr is a well-formed v3 onion address.
// It checks the suffix, length, base32 alphabet, version byte and
// embedded checksum.  It does not prove the service exists.
func Validate(addr string) error {
	if !strings.HasSuffix(addr, onionSuffix) {
		return fmt.Errorf("identity: %q is not a .onion address", addr)
	}
	if len(addr) != AddressLen {
		return fmt.Errorf("identity: %q has length %d, want %d", addr, len(addr), AddressLen)
	}
	encoded := strings.ToUpper(strings.TrimSuffix(addr, onionSuffix))
	raw, err := b32.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("identity: %q is not base32: %w", addr, err)
	}
	if len(raw) != ed25519.PublicKeySize+3 {
		return fmt.Errorf("identity: %q decodes to %d bytes, want %d", addr, len(raw), ed25519.PublicKeySize+3)
	}
	if raw[len(raw)-1] != onionVersion {
		return fmt.Errorf("identity: %q has version %d, want %d", addr, raw[len(raw)-1], onionVersion)
	}
	pub := ed25519.PublicKey(raw[:ed25519.PublicKeySize])
	want := checksum(pub)
	got := raw[ed25519.PublicKeySize : ed25519.PublicKeySize+2]
	if got[0] != want[0] || got[1] != want[1] {
		return fmt.Errorf("identity: %q has a bad checksum", addr)
	}
	return nil
}

// checksum is the first two bytes of
// SHA3-256(".onion checksum" ‖ pubkey ‖ version).
func checksum(pub ed25519.PublicKey) []byte {
	h := sha3.New256()
	h.Write([]byte(".onion checksum"))
	h.Write(pub)
	h.Write([]byte{onionVersion})
	return h.Sum(nil)[:2]
}

// ── key persistence ──────────────────────────────────────────────────

// LoadOrCreateKey returns the service key stored at path, generating
// and saving a fresh one when no key exists yet.  The containing
// directory is created with owner-only permissions.
func LoadOrCreateKey(path string) (ed25519.PrivateKey, error) {
	seed, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("identity: key file %s holds %d bytes, want %d", path, len(seed), ed25519.SeedSize)
		}
		return ed25519.NewKeyFromSeed(seed), nil
	case os.IsNotExist(err):
		return GenerateKey(path)
	default:
		return nil, fmt.Errorf("identity: reading key file: %w", err)
	}
}

// GenerateKey creates a fresh service key and writes its seed to path,
// replacing any previous key.  The old onion address stops working.
func GenerateKey(path string) (ed25519.PrivateKey, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("identity: creating key directory: %w", err)
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generating key: %w", err)
	}
	if err := os.WriteFile(path, priv.Seed(), 0o600); err != nil {
		return nil, fmt.Errorf("identity: writing key file: %w", err)
	}
	return priv, nil
}
