// Package errors provides structured domain errors for coursebot.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors
	CodeConfigMissing Code = "CONFIG_MISSING"
	CodeConfigInvalid Code = "CONFIG_INVALID"

	// Catalog errors
	CodeCourseNotFound  Code = "COURSE_NOT_FOUND"
	CodeCourseInvalid   Code = "COURSE_INVALID"
	CodeCourseDuplicate Code = "COURSE_DUPLICATE"

	// Interaction errors
	CodeEventUnrecognized Code = "EVENT_UNRECOGNIZED"
	CodeSenderMissing     Code = "SENDER_MISSING"
	CodeHandoffInvalid    Code = "HANDOFF_INVALID"
)

// Internal reports whether the code marks an internal-consistency fault that
// operators must see, as opposed to expected noise from the chat transport.
func (c Code) Internal() bool {
	switch c {
	case CodeEventUnrecognized:
		return false
	default:
		return true
	}
}
