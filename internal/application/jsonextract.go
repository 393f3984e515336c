package application

import (
	"encoding/json"
	"errors"
)

var (
	// errNoJSONValue indicates the text contains no JSON value of the
	// requested shape.
	errNoJSONValue = errors.New("no JSON value found in response")

	// errTruncatedJSON indicates a JSON value opens but never closes.
	errTruncatedJSON = errors.New("JSON value in response is truncated")
)

// extractJSONObject returns the first balanced, valid JSON object embedded
// in text. Model responses often wrap the payload in prose or markdown
// fences, so the scanner skips anything before the first candidate brace
// and tolerates stray braces in the surrounding prose.
func extractJSONObject(text string) (string, error) {
	return extractJSONValue(text, '{', '}')
}

// extractJSONArray returns the first balanced, valid JSON array embedded
// in text.
func extractJSONArray(text string) (string, error) {
	return extractJSONValue(text, '[', ']')
}

// extractJSONValue scans text for balanced open..close candidates,
// tracking string literals and escapes so delimiters inside strings do not
// count toward nesting. Candidates that do not parse as JSON are skipped
// and the scan resumes at the next opening delimiter.
func extractJSONValue(text string, open, close byte) (string, error) {
	sawTruncated := false

	for start := 0; start < len(text); start++ {
		if text[start] != open {
			continue
		}

		end, ok := scanBalanced(text, start, open, close)
		if !ok {
			sawTruncated = true
			continue
		}

		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	if sawTruncated {
		return "", errTruncatedJSON
	}
	return "", errNoJSONValue
}

// scanBalanced walks text from the opening delimiter at start and returns
// the index of the matching closing delimiter. ok is false when the value
// never closes.
func scanBalanced(text string, start int, open, close byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}
