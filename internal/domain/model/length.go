package model

import "regexp"

// MaxPostLength is the platform's displayable-length budget in counting units.
const MaxPostLength = 280

// urlUnitLength is what the platform charges for any URL, regardless of its
// literal length (t.co wrapping).
const urlUnitLength = 23

var urlPattern = regexp.MustCompile(`https?://\S+`)

// PostLength returns the platform-counted length of content: every URL
// counts as a fixed 23 units, all other characters count as one unit each.
func PostLength(content string) int {
	count := len([]rune(content))
	for _, url := range urlPattern.FindAllString(content, -1) {
		count = count - len([]rune(url)) + urlUnitLength
	}
	return count
}

// ValidPostLength reports whether content fits the platform's length budget.
func ValidPostLength(content string) bool {
	return PostLength(content) <= MaxPostLength
}
