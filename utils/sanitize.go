package utils

import "github.com/microcosm-cc/bluemonday"

var (
	// ugcPolicy allows basic formatting in descriptions and feedback.
	ugcPolicy = bluemonday.UGCPolicy()
	// strictPolicy strips all markup from titles and names.
	strictPolicy = bluemonday.StrictPolicy()
)

// SanitizeUGC cleans user-supplied rich text (descriptions, feedback).
func SanitizeUGC(s string) string {
	return ugcPolicy.Sanitize(s)
}

// SanitizeStrict strips all HTML from plain-text fields (titles, names).
func SanitizeStrict(s string) string {
	return strictPolicy.Sanitize(s)
}
