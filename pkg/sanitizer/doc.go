// Package sanitizer normalizes free-form input before it is validated
// and persisted. Participant names arrive from chat surfaces and carry
// arbitrary whitespace, casing and decoration.
package sanitizer
