package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// StringRule validates a single required string field. Lengths are counted
// in runes so accented characters count as one character.
type StringRule struct {
	MaxLen   int
	NotBlank bool
	Pattern  *regexp.Regexp
}

// Valid reports whether the value satisfies the rule. The empty string never
// validates; every field covered by a StringRule is required.
func (r StringRule) Valid(value string) bool {
	if value == "" {
		return false
	}
	if r.MaxLen > 0 && utf8.RuneCountInString(value) > r.MaxLen {
		return false
	}
	if r.NotBlank && strings.TrimSpace(value) == "" {
		return false
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		return false
	}
	return true
}
