package utils

import (
	"net/url"
	"os"
	"strings"
)

// BuildObjectAccessURL returns the public URL of objectKey. STORAGE_ACCESS_BASE_URL may
// contain an {objectKey} placeholder; without it the default GCS host is used.
func BuildObjectAccessURL(bucket, objectKey string) string {
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}
	return "https://storage.googleapis.com/" + bucket + "/" + objectKey
}

// ExtractObjectKeyFromURL is the inverse of BuildObjectAccessURL. It returns "" when
// rawURL does not point into bucket.
func ExtractObjectKeyFromURL(bucket, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if strings.HasPrefix(rawURL, "gs://") {
		parts := strings.SplitN(strings.TrimPrefix(rawURL, "gs://"), "/", 2)
		if len(parts) == 2 && parts[0] == bucket {
			return parts[1]
		}
		return ""
	}

	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			parts := strings.Split(base, "{objectKey}")
			if len(parts) == 2 && strings.HasPrefix(rawURL, parts[0]) && strings.HasSuffix(rawURL, parts[1]) {
				trimmed := strings.TrimSuffix(strings.TrimPrefix(rawURL, parts[0]), parts[1])
				if decoded, err := url.QueryUnescape(trimmed); err == nil {
					return decoded
				}
				return trimmed
			}
		} else if prefix := strings.TrimRight(base, "/") + "/"; strings.HasPrefix(rawURL, prefix) {
			return strings.TrimPrefix(rawURL, prefix)
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	p := strings.TrimPrefix(parsed.Path, "/")
	if host == "storage.googleapis.com" || host == "storage.cloud.google.com" {
		parts := strings.SplitN(p, "/", 2)
		if len(parts) == 2 && parts[0] == bucket {
			return parts[1]
		}
	}
	if host == bucket+".storage.googleapis.com" {
		return p
	}
	return ""
}
