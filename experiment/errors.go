package experiment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes metadata loading errors.
type ErrorCode string

const (
	// ErrCodeMalformedHeader indicates an invalid plate header document.
	ErrCodeMalformedHeader ErrorCode = "MALFORMED_HEADER"

	// ErrCodeMalformedExperiment indicates an experiment document missing
	// required fields or carrying an unparseable well reference.
	ErrCodeMalformedExperiment ErrorCode = "MALFORMED_EXPERIMENT"

	// ErrCodeUnknownPlate indicates a well reference naming an undefined
	// plate, an unprefixed reference with no default plate, or a plate
	// directory that does not exist.
	ErrCodeUnknownPlate ErrorCode = "UNKNOWN_PLATE"

	// ErrCodeAmbiguousWell indicates more than one data file matching a
	// well label within one plate directory.
	ErrCodeAmbiguousWell ErrorCode = "AMBIGUOUS_WELL"

	// ErrCodeMissingWell indicates no data file matching a well label.
	ErrCodeMissingWell ErrorCode = "MISSING_WELL"

	// ErrCodeWellLoad indicates the underlying data file could not be
	// read or parsed.
	ErrCodeWellLoad ErrorCode = "WELL_LOAD"
)

// Error represents a metadata loading failure.
//
// All loading errors are fatal to the enclosing LoadExperiments call;
// Error carries the context (document position, reference text, plate
// path) the caller needs to diagnose the input.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Document is the 1-based position of the offending document within
	// the metadata file, or 0 when the error is not tied to a document.
	Document int

	// Reference is the well reference text as written, if any.
	Reference string

	// Plate is the plate directory involved, if any.
	Plate string

	// Err is the underlying cause (well load errors).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var ctx []string
	if e.Document > 0 {
		ctx = append(ctx, fmt.Sprintf("document=%d", e.Document))
	}
	if e.Reference != "" {
		ctx = append(ctx, fmt.Sprintf("ref=%q", e.Reference))
	}
	if e.Plate != "" {
		ctx = append(ctx, fmt.Sprintf("plate=%s", e.Plate))
	}
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(ctx) > 0 {
		msg += " (" + strings.Join(ctx, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// hasCode reports whether err is or wraps an *Error with the given code.
func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsMalformedHeader reports whether err is a malformed header error.
func IsMalformedHeader(err error) bool { return hasCode(err, ErrCodeMalformedHeader) }

// IsMalformedExperiment reports whether err is a malformed experiment error.
func IsMalformedExperiment(err error) bool { return hasCode(err, ErrCodeMalformedExperiment) }

// IsUnknownPlate reports whether err is an unknown plate error.
func IsUnknownPlate(err error) bool { return hasCode(err, ErrCodeUnknownPlate) }

// IsAmbiguousWell reports whether err is an ambiguous well error.
func IsAmbiguousWell(err error) bool { return hasCode(err, ErrCodeAmbiguousWell) }

// IsMissingWell reports whether err is a missing well error.
func IsMissingWell(err error) bool { return hasCode(err, ErrCodeMissingWell) }

// IsWellLoad reports whether err is a well load error.
func IsWellLoad(err error) bool { return hasCode(err, ErrCodeWellLoad) }
