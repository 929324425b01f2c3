// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with a
// remote collection service. It defines the API contract for listing, creating,
// updating and deleting records, and an HTTP implementation following the
// conventional REST verb mapping.
package backend

import (
	"context"

	"menagerie/cli/internal/record"
)

// API defines the collection operations a panel depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// List reads the full collection in the order the service returns it.
	List(ctx context.Context) ([]record.Record, error)
	// Create stores a new record. The record's id, if any, is not sent.
	Create(ctx context.Context, r record.Record) error
	// Update replaces the record addressed by id.
	Update(ctx context.Context, id string, r record.Record) error
	// Delete removes the record addressed by id.
	Delete(ctx context.Context, id string) error
}
