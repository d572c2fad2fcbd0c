package utils

import "github.com/microcosm-cc/bluemonday"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML content to prevent XSS attacks while
// keeping common formatting tags. Used for post and comment bodies.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeStrict strips all HTML. Used for titles, where markup is never
// legitimate.
func SanitizeStrict(input string) string {
	return strictPolicy.Sanitize(input)
}
