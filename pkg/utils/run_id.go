package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateRunID creates a human-readable run ID.
// Format: {slug}-{8charHexUUID}
//
// Example:
//   - Input: name="Small Town.yaml"
//   - Output: "small-town-a3f8e2b1"
//
// An empty name or one without any letters or digits becomes "run".
func GenerateRunID(name string) string {
	return slugify(name) + "-" + generateShortUUID()
}

// slugify lowercases name, drops a trailing file extension and replaces
// runs of other characters with a single hyphen
func slugify(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "run"
	}
	return slug
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
