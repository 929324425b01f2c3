// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Remote collection failures are split into two kinds:
// transport failures (network unreachable, malformed payloads) and remote rejections
// (any non-2xx status). Callers treat both the same way but report them differently.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Transport indicates the request never produced a usable response:
	// the network was unreachable or the payload could not be decoded.
	Transport Kind = "transport"
	// RemoteRejection indicates the service answered with a non-2xx status.
	RemoteRejection Kind = "remote_rejection"
	// InvalidRecord indicates a record could not be encoded or coerced.
	InvalidRecord Kind = "invalid_record"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code for RemoteRejection errors.
	Status int
	Err    error
}

func (e *E) Error() string {
	if e.Status != 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s (status %d): %v", e.Kind, e.Message, e.Status, e.Err)
		}
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Rejected builds a RemoteRejection for the given status and response body.
func Rejected(msg string, status int, body string) *E {
	e := &E{Kind: RemoteRejection, Message: msg, Status: status}
	if body != "" {
		e.Err = stderrors.New(body)
	}
	return e
}

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return KindOf(err) == Transport }

// IsRejection reports whether err is a non-2xx answer from the remote service.
func IsRejection(err error) bool { return KindOf(err) == RemoteRejection }

// StatusOf returns the HTTP status carried by a RemoteRejection, or 0.
func StatusOf(err error) int {
	var e *E
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}
