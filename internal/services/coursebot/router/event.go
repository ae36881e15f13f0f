package router

import "strings"

const (
	// CoursePayloadPrefix prefixes the course id in list button payloads.
	CoursePayloadPrefix = "course_"
	// BackPayload is the payload of the detail view's back button.
	BackPayload = "back_to_list"
)

// EventKind enumerates the inbound events the router understands.
type EventKind int

const (
	EventUnrecognized EventKind = iota
	EventStart
	EventSelectCourse
	EventBack
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventSelectCourse:
		return "select_course"
	case EventBack:
		return "back"
	default:
		return "unrecognized"
	}
}

// Event is a decoded inbound chat event. CourseID is set only for
// EventSelectCourse.
type Event struct {
	Kind     EventKind
	CourseID string
}

// StartEvent is the event for a new session (the /start command).
func StartEvent() Event {
	return Event{Kind: EventStart}
}

// ParsePayload decodes an untrusted button payload. Anything that is not
// "back_to_list" or "course_" followed by a non-empty id is unrecognized.
// Whether the id exists in the catalog is checked by the router.
func ParsePayload(payload string) Event {
	if payload == BackPayload {
		return Event{Kind: EventBack}
	}
	if id, ok := strings.CutPrefix(payload, CoursePayloadPrefix); ok && id != "" {
		return Event{Kind: EventSelectCourse, CourseID: id}
	}
	return Event{Kind: EventUnrecognized}
}

// CoursePayload returns the button payload that selects courseID.
func CoursePayload(courseID string) string {
	return CoursePayloadPrefix + courseID
}
