package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-256 of the envelope "type len\0content".
// Object ids in the store are always HashObject values.
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// BlobHash returns the id a blob holding data would be stored under.
func BlobHash(data []byte) Hash {
	return HashObject(TypeBlob, data)
}

// CommitHash returns the id of a fully populated commit. Callers must only
// invoke it once every field of c is final.
func CommitHash(c *CommitObj) Hash {
	return HashObject(TypeCommit, MarshalCommit(c))
}

// IsHex reports whether s consists only of lowercase hex digits.
func IsHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
