package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Default argon2id cost parameters, following the OWASP password storage
// recommendations: 19 MiB of memory, 2 iterations, 1 lane.
const (
	defaultMemory  uint32 = 19 * 1024
	defaultTime    uint32 = 2
	defaultThreads uint8  = 1

	saltLen = 16
	keyLen  = 32
)

type (
	// Hash is a parsed argon2id hash in PHC string format,
	// e.g. $argon2id$v=19$m=19456,t=2,p=1$<salt>$<digest>.
	Hash struct {
		encoded string

		memory  uint32
		time    uint32
		threads uint8
		salt    []byte
		digest  []byte
	}
)

// HashPassword derives an argon2id hash of input with a fresh random salt
// and returns it serialized as a PHC string. This is the offline
// provisioning path (passwd subcommand), not the request path.
func HashPassword(input string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	digest := argon2.IDKey([]byte(input), salt, defaultTime, defaultMemory, defaultThreads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, defaultMemory, defaultTime, defaultThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest)), nil
}

func (h *Hash) verify(input string) bool {
	derived := argon2.IDKey([]byte(input), h.salt, h.time, h.memory, h.threads, uint32(len(h.digest)))
	return subtle.ConstantTimeCompare(derived, h.digest) == 1
}

func parsePHC(s string) (*Hash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("malformed PHC string")
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("malformed version field %q", parts[2])
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}
	h := Hash{encoded: s}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return nil, fmt.Errorf("malformed parameter field %q", parts[3])
	}
	if h.memory == 0 || h.time == 0 || h.threads == 0 {
		return nil, fmt.Errorf("invalid cost parameters %q", parts[3])
	}
	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("malformed salt, cause %w", err)
	}
	if h.digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("malformed digest, cause %w", err)
	}
	if len(h.digest) == 0 {
		return nil, fmt.Errorf("empty digest")
	}
	return &h, nil
}
