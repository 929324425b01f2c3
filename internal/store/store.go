// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package store persists one resource collection for the reference collection
// service. Every backend stores records of a single schema and assigns ids on
// creation: sequential integers for integer-id schemas, UUIDs for text-id ones.
package store

import (
	"context"
	"errors"
	"fmt"

	"menagerie/cli/internal/dsn"
	"menagerie/cli/internal/record"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Store is a persistent collection of records.
type Store interface {
	// List returns every record in a stable order.
	List(ctx context.Context) ([]record.Record, error)
	Get(ctx context.Context, id string) (record.Record, error)
	// Create stores r under a new id, ignoring any id r carries, and
	// returns the stored record.
	Create(ctx context.Context, r record.Record) (record.Record, error)
	// Update replaces the record with the given id.
	Update(ctx context.Context, id string, r record.Record) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open connects to the store described by rawDSN and prepares it for schema.
func Open(ctx context.Context, rawDSN string, schema record.Schema) (Store, error) {
	if err := dsn.Validate(rawDSN); err != nil {
		return nil, err
	}
	info, err := dsn.ParseInfo(rawDSN)
	if err != nil {
		return nil, err
	}
	switch info.Type {
	case dsn.DBTypeMemory:
		return NewMemory(schema), nil
	case dsn.DBTypePostgreSQL:
		return OpenPostgres(ctx, info, schema)
	case dsn.DBTypeMySQL:
		return OpenMySQL(ctx, info, schema)
	case dsn.DBTypeDynamoDB:
		return OpenDynamo(ctx, info, schema)
	}
	return nil, fmt.Errorf("unsupported store type %q", info.Type)
}

// prepare coerces every schema field of r, filling absent ones with zero
// values, so stores never persist partial or mistyped records.
func prepare(schema record.Schema, r record.Record) (map[string]any, error) {
	out := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		v := r.Get(f.Name)
		if v == nil {
			out[f.Name] = f.Zero()
			continue
		}
		c, err := f.Coerce(v)
		if err != nil {
			return nil, err
		}
		out[f.Name] = c
	}
	return out, nil
}
