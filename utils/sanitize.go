package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML (story bodies) to prevent XSS while
// keeping the common formatting subset.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all markup; used for titles, names and bios.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}
