package model

import (
	"errors"
	"fmt"
)

// FailureKind classifies everything the core reports to the UI layer
type FailureKind string

const (
	FailureRepair               FailureKind = "RepairFailure"               // Text could not be coerced to JSON
	FailureEmptyShape           FailureKind = "EmptyOrUnrecognizedShape"    // Parsed but unusable
	FailurePartialNormalization FailureKind = "PartialNormalizationWarning" // Fields dropped, result usable
	FailureCorruptState         FailureKind = "CorruptPersistedState"       // Stored section undecodable
	FailureReadFailed           FailureKind = "StorageReadFailed"           // Store could not be read; data may still be there
	FailureQuotaExceeded        FailureKind = "StorageQuotaExceeded"        // Store capacity exhausted
	FailureWriteFailed          FailureKind = "StorageWriteFailed"          // Any other write failure
	FailureDanglingCleared      FailureKind = "DanglingReferenceCleared"    // Informational cascade notice
)

// Fatal reports whether the kind means the operation did not take effect
func (k FailureKind) Fatal() bool {
	switch k {
	case FailurePartialNormalization, FailureDanglingCleared:
		return false
	default:
		return true
	}
}

// Failure is a typed error carrying its kind and the section it concerns
type Failure struct {
	Kind    FailureKind
	Section string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", f.Kind, f.Message)
	if f.Section != "" {
		msg = fmt.Sprintf("%s [%s]: %s", f.Kind, f.Section, f.Message)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the failure kind carried by err, or "" when err is not a Failure
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// Event is what the UI layer receives: failures and informational notices alike
type Event struct {
	Kind    FailureKind       `json:"kind"`
	Section string            `json:"section,omitempty"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data,omitempty"`
}

// EventFromError converts a Failure (or any error) into an event
func EventFromError(err error) Event {
	var f *Failure
	if errors.As(err, &f) {
		return Event{Kind: f.Kind, Section: f.Section, Message: f.Error()}
	}
	return Event{Kind: FailureWriteFailed, Message: err.Error()}
}
