package util

import "unicode/utf8"

// TruncateRightWithSuffix keeps the first n runes of text, appending suffix only if truncation happens.
func TruncateRightWithSuffix(text string, n int, suffix string) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}

	if n <= 0 {
		return suffix
	}

	i := 0
	for j := range text {
		if i == n {
			return text[:j] + suffix
		}
		i++
	}

	return text
}
