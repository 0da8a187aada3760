package session

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/andrebq/dumbauth/internal/datastore"
)

// Tokens are id (8 bytes, big-endian) followed by the raw secret, encoded
// as URL-safe base64 without padding. Fixed-width fields make the layout
// unambiguous without delimiters.
const rawTokenLen = 8 + datastore.SecretLen

func encodeToken(id datastore.SessionID, secret [datastore.SecretLen]byte) string {
	buf := make([]byte, rawTokenLen)
	binary.BigEndian.PutUint64(buf, uint64(id))
	copy(buf[8:], secret[:])
	return base64.RawURLEncoding.EncodeToString(buf)
}

func decodeToken(token string) (datastore.SessionID, [datastore.SecretLen]byte, bool) {
	var secret [datastore.SecretLen]byte
	buf, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(buf) != rawTokenLen {
		return 0, secret, false
	}
	copy(secret[:], buf[8:])
	return datastore.SessionID(binary.BigEndian.Uint64(buf)), secret, true
}
