// Package auth — password hashing.
//
// Passwords are hashed with argon2id, the memory-hard Argon2 variant.
// Memory-hardness matters because GPU/ASIC crackers are limited by memory
// bandwidth, not raw compute — 64 MiB per guess keeps offline attacks
// expensive in a way plain bcrypt's work factor cannot.
//
// Each hash gets a fresh random 16-byte salt and is stored in the standard
// PHC string format, which embeds the parameters and salt:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<b64 salt>$<b64 key>
//
// Verify re-derives the key with the parameters from the stored string, so
// the cost can be raised later without breaking existing hashes.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (RFC 9106 second recommended option: 64 MiB, 3
// passes, 4 lanes).
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

var errHashMismatch = errors.New("auth: password does not match")

// PasswordService hashes and verifies passwords. A struct rather than free
// functions so tests can dial the memory cost down.
type PasswordService struct {
	time    uint32
	memory  uint32
	threads uint8
}

// NewPasswordService returns a PasswordService with production parameters.
func NewPasswordService() *PasswordService {
	return &PasswordService{time: argonTime, memory: argonMemory, threads: argonThreads}
}

// NewPasswordServiceForTest returns a service with minimal cost parameters.
// Hashing at 64 MiB per call makes test suites crawl; 8 MiB keeps the
// logic identical and the tests fast. Not for production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{time: 1, memory: 8 * 1024, threads: 1}
}

// Hash derives an argon2id hash of plaintext under a fresh random salt and
// returns it PHC-encoded.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, p.time, p.memory, p.threads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify checks plaintext against a stored PHC-encoded hash. Returns nil on
// match, a non-nil error otherwise. The comparison is constant-time.
func (p *PasswordService) Verify(encoded, plaintext string) error {
	salt, key, time, memory, threads, err := decodeHash(encoded)
	if err != nil {
		return err
	}

	derived := argon2.IDKey([]byte(plaintext), salt, time, memory, threads, uint32(len(key)))

	if subtle.ConstantTimeCompare(key, derived) != 1 {
		return errHashMismatch
	}
	return nil
}

// decodeHash parses the PHC string produced by Hash.
func decodeHash(encoded string) (salt, key []byte, time, memory uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, errors.New("auth: malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("auth: parsing hash version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, fmt.Errorf("auth: unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("auth: parsing hash parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("auth: decoding salt: %w", err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("auth: decoding key: %w", err)
	}

	return salt, key, time, memory, threads, nil
}
