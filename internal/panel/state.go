// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package panel

import "errors"

// State is the panel's position in its operation cycle.
type State int

const (
	// Idle accepts new operations.
	Idle State = iota
	// Submitting has a create, update or delete request in flight.
	Submitting
	// Refreshing is reloading the collection after a successful mutation or on mount.
	Refreshing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

var (
	// ErrBusy is returned when an operation starts while another is in flight.
	ErrBusy = errors.New("another operation is still in progress")
	// ErrMissingID is returned by Remove for records that were never persisted.
	ErrMissingID = errors.New("record has no id")
	// ErrClosed is returned once the panel has been closed; late results are discarded.
	ErrClosed = errors.New("panel is closed")
)
