package markup

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrWrapBudgetTooSmall is returned when layout leaves less than one
// character per line.
var ErrWrapBudgetTooSmall = errors.New("wrap budget is less than one character")

// Wrap breaks text into lines of at most maxChars characters using greedy
// first fit. A word longer than maxChars is never split and occupies a line
// of its own. Empty text produces a single empty line.
func Wrap(text string, maxChars int) ([]string, error) {
	if maxChars < 1 {
		return nil, ErrWrapBudgetTooSmall
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}, nil
	}

	var (
		lines []string
		line  strings.Builder
		width int
	)
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if width > 0 && width+1+n > maxChars {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		if width > 0 {
			line.WriteByte(' ')
			width++
		}
		line.WriteString(word)
		width += n
	}
	return append(lines, line.String()), nil
}
