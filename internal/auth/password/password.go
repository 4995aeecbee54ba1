package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters for newly hashed passwords. Verify reads the
// costs back out of the encoded string, so these can be raised later
// without invalidating credentials hashed under the old values.
const (
	hashPasses  uint32 = 1
	hashMemory  uint32 = 64 * 1024
	hashThreads uint8  = 4
	keyLength   uint32 = 32
	saltLength         = 16
)

// Hash derives an Argon2id digest of password and returns it in the
// standard $argon2id$v=19$m=..,t=..,p=..$salt$digest encoding stored on
// account rows.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest := argon2.IDKey([]byte(password), salt, hashPasses, hashMemory, hashThreads, keyLength)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		hashMemory, hashPasses, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether password matches an encoded Argon2id hash.
// Malformed encodings verify as false; a credential check never needs to
// distinguish a bad password from a corrupt hash.
func Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	memory, passes, threads, ok := parseCosts(parts[3])
	if !ok {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, passes, memory, threads, uint32(len(digest)))
	return subtle.ConstantTimeCompare(digest, check) == 1
}

// parseCosts decodes the "m=..,t=..,p=.." segment of an encoded hash.
func parseCosts(segment string) (memory, passes uint32, threads uint8, ok bool) {
	fields := strings.Split(segment, ",")
	if len(fields) != 3 {
		return 0, 0, 0, false
	}

	m, err := parseCost(fields[0], "m=", 32)
	if err != nil {
		return 0, 0, 0, false
	}
	t, err := parseCost(fields[1], "t=", 32)
	if err != nil {
		return 0, 0, 0, false
	}
	p, err := parseCost(fields[2], "p=", 8)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint32(m), uint32(t), uint8(p), true
}

func parseCost(field, prefix string, bits int) (uint64, error) {
	raw, found := strings.CutPrefix(field, prefix)
	if !found {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(raw, 10, bits)
}
