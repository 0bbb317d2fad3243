package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its ASCII alphanumeric runs with dashes.
// Names without any such characters get a short random slug.
func Slugify(s string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return uuid.NewString()[:8]
	}
	return slug
}
