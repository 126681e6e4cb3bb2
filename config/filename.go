package config

import (
	"strings"
	"unicode"
)

const badFileName = "_bad_file_name_"

// CleanFileName makes file name out of arbitrary text: separators, characters
// the platform does not allow and control characters are removed, leading
// dots and trailing dots and spaces are trimmed.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(forbiddenNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	out = strings.TrimRight(out, ". ")
	if len(out) == 0 {
		return badFileName
	}
	return out
}
