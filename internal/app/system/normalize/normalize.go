// Package normalize provides helper functions for consistent string normalization
// of visitor input. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls so forms, the pickup API and the rate limiter
// agree on what a value looks like.
package normalize

import "strings"

// Email normalizes an email address by trimming whitespace and converting to lowercase.
// This is the canonical way to normalize emails before relay, logging or comparison.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's name and collapses inner runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone trims a phone number. Inner separators are kept as typed.
func Phone(s string) string {
	return strings.TrimSpace(s)
}

// Amount trims a money amount and drops digit-grouping commas, so
// "1,500" becomes "1500".
func Amount(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// Subject normalizes a contact subject value by trimming whitespace and converting to lowercase.
func Subject(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Message normalizes multi-line text: line endings become \n and the
// whole value is trimmed. Inner blank lines are kept.
func Message(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
