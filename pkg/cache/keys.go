package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a namespaced key from JSON-marshalable parts.
// Key format: prefix:hash(parts...).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// SourceKey addresses a loaded graph document: the hash of the source bytes
// combined with the load options that shaped the ingestion. Any change to
// either produces a different key.
func SourceKey(sourceHash string, opts any) string {
	return hashKey("graph", sourceHash, opts)
}

// ArtifactKey addresses a rendered artifact derived from a graph document.
func ArtifactKey(graphKey, format string) string {
	return hashKey("artifact", graphKey, format)
}
