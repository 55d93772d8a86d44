package batchfile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases and trims s, collapsing inner whitespace runs.
// A Caser is stateful, so one is built per call.
func Normalize(s string) string {
	return cases.Lower(language.Spanish).String(strings.Join(strings.Fields(s), " "))
}
