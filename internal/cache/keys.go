package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	GlobalKeyPrefix = "studyhub"

	// NoContentHash stands in for the content hash when a request carries no source material.
	NoContentHash = "no-content"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ContentHash returns the hex MD5 of content, or NoContentHash when content is empty.
func ContentHash(content string) string {
	if content == "" {
		return NoContentHash
	}
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
