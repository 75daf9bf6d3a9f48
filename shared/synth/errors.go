package synth

import (
	"errors"
	"fmt"
)

// ErrorMarker prefixes every error in the plain-text rendering of a result.
const ErrorMarker = "❌ Error: "

type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindInvalidCSV        ErrorKind = "invalid_csv"
	KindNoColumns         ErrorKind = "no_columns"
	KindMissingInput      ErrorKind = "missing_input"
	KindModelLoad         ErrorKind = "model_load"
	KindGeneration        ErrorKind = "generation"
)

var kindMessages = map[ErrorKind]string{
	KindMissingCredential: "API Key not found. Make sure API_KEY is set in your environment (.env).",
	KindInvalidCSV:        "the provided file is not a valid CSV or has no clear header row.",
	KindNoColumns:         "no valid columns detected in the file.",
	KindMissingInput:      "you must provide a file or a description to generate data.",
	KindModelLoad:         "error loading the model",
	KindGeneration:        "generation failed",
}

// Error is the failure side of a generation result.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Message is the user-facing text. Model load and generation failures carry
// their cause; input errors do not, so their text is stable.
func (e *Error) Message() string {
	msg := kindMessages[e.Kind]

	switch e.Kind {
	case KindModelLoad, KindGeneration:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", msg, e.Cause)
		}
	}

	return msg
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf reports the kind of a synth error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}

	return ""
}

// Render serializes a result for plain-text channels: the CSV on success,
// the marker-prefixed message on failure.
func Render(res *Result, err error) string {
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			return ErrorMarker + se.Message()
		}

		return ErrorMarker + newError(KindGeneration, err).Message()
	}

	if res == nil {
		return ""
	}

	return res.CSV
}
