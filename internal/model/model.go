// Package model defines the core domain types for the guest list.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Attendance is the tri-state RSVP answer of a guest.
type Attendance int

const (
	AttendanceUnknown Attendance = iota
	AttendanceYes
	AttendanceNo
)

// String returns the literal text form stored for the value: "true",
// "false", or "" for Unknown.
func (a Attendance) String() string {
	switch a {
	case AttendanceYes:
		return "true"
	case AttendanceNo:
		return "false"
	default:
		return ""
	}
}

// ParseAttendance is the inverse of String.
func ParseAttendance(s string) (Attendance, error) {
	switch s {
	case "true":
		return AttendanceYes, nil
	case "false":
		return AttendanceNo, nil
	case "":
		return AttendanceUnknown, nil
	}
	return AttendanceUnknown, fmt.Errorf("invalid attendance %q", s)
}

// MarshalJSON encodes Yes and No as JSON booleans. Unknown encodes as null,
// but Guest omits it entirely through omitempty.
func (a Attendance) MarshalJSON() ([]byte, error) {
	switch a {
	case AttendanceYes:
		return []byte("true"), nil
	case AttendanceNo:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null and the loose boolean spellings clients send:
// true, "true", 1, "1", "yes" and false, "false", 0, "0", "no".
func (a *Attendance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", `"true"`, "1", `"1"`, `"yes"`:
		*a = AttendanceYes
	case "false", `"false"`, "0", `"0"`, `"no"`:
		*a = AttendanceNo
	case "null":
		*a = AttendanceUnknown
	default:
		return fmt.Errorf("cannot cast %s to boolean", data)
	}
	return nil
}

// Guest is a single attendee record.
type Guest struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Allergies   string     `json:"allergies,omitempty"`
	Other       string     `json:"other,omitempty"`
	IsAttending Attendance `json:"isAttending,omitempty"`
}

// CreateGuestRequest is the payload for creating a new guest.
// IsAttending stays raw so a bad value surfaces as a field validation error
// instead of a body decoding error.
type CreateGuestRequest struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Allergies   string          `json:"allergies"`
	Other       string          `json:"other"`
	IsAttending json.RawMessage `json:"isAttending"`
}

// GuestList is the envelope returned by the list endpoint.
type GuestList struct {
	Guests []Guest `json:"guests"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SaveErrorResponse is returned when a guest could not be persisted.
type SaveErrorResponse struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// FieldError describes why a single field was rejected.
type FieldError struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Path    string `json:"path"`
}

// ValidationError collects field errors keyed by field path.
type ValidationError struct {
	Fields map[string]FieldError
}

// Add records a field error, replacing any earlier one for the same path.
func (e *ValidationError) Add(path, kind, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]FieldError)
	}
	e.Fields[path] = FieldError{Message: message, Kind: kind, Path: path}
}

// HasErrors reports whether any field error was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	msgs := make([]string, 0, len(paths))
	for _, p := range paths {
		msgs = append(msgs, e.Fields[p].Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}
