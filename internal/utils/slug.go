package utils

import (
	"strings"
	"unicode"

	"github.com/teamspace/collab-api/internal/constants"
)

// Slugify derives a URL-safe slug from a display name: lowercase ASCII
// letters and digits, hyphen-separated. Uniqueness is enforced by the
// database constraints, not here.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > constants.MaxSlugLength {
		slug = strings.Trim(slug[:constants.MaxSlugLength], "-")
	}
	return slug
}
