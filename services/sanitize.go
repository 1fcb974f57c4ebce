package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips all HTML from user-submitted text fields
var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText removes any HTML markup from a form value and trims
// surrounding whitespace
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
