package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// PrefixSource namespaces downloaded source PDFs
const PrefixSource = "source"

// GenerateKey generates a cache key from a URL.
// The key is a SHA256 hash of the normalized URL.
func GenerateKey(rawURL string) string {
	hash := sha256.Sum256([]byte(normalizeForKey(rawURL)))
	return hex.EncodeToString(hash[:])
}

// SourceKey generates the cache key for a source PDF download
func SourceKey(rawURL string) string {
	return PrefixSource + ":" + GenerateKey(rawURL)
}

// normalizeForKey lowercases the host and drops the fragment and default
// ports. Paths are kept as-is since file servers may be case sensitive.
func normalizeForKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}
	u.Fragment = ""

	return u.String()
}
