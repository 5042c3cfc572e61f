// Package validation holds the field checks shared by the create and edit
// forms. Validation is presence-and-shape only; the server stays the
// authority on everything else.
package validation

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail reports whether s looks like an address: something, an "@",
// something, a dot, something. Whitespace-only input is rejected.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Errors maps a field name to its message. A nil Errors is valid and empty.
type Errors map[string]string

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Empty reports whether no field has a message.
func (e Errors) Empty() bool { return len(e) == 0 }

// Clone returns a copy that the caller may modify.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
