package redis

import "strings"

const (
	// KeyPrefixBlob is the prefix for every blob written by the store
	KeyPrefixBlob = "smartnote:blob:"
)

// BlobKey returns the Redis key for a blob
func BlobKey(key string) string {
	return KeyPrefixBlob + key
}

// ExtractBlobKey strips the prefix from a Redis key. ok is false when the
// key does not belong to the store.
func ExtractBlobKey(redisKey string) (string, bool) {
	key, ok := strings.CutPrefix(redisKey, KeyPrefixBlob)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
