// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package collection holds the last fetched snapshot of a remote collection.
package collection

import (
	"context"
	"sync"
	"time"

	"menagerie/cli/internal/record"
)

// Source reads a full collection.
type Source interface {
	List(ctx context.Context) ([]record.Record, error)
}

// Cache keeps the most recent successful snapshot of a remote collection.
// A snapshot is only ever replaced as a whole; a failed read leaves the last
// good snapshot in place and records the error.
type Cache struct {
	src Source

	mu        sync.RWMutex
	items     []record.Record
	err       error
	fetchedAt time.Time
	// loaded is false until the first successful read
	loaded bool
}

// New creates an empty cache reading from src.
func New(src Source) *Cache {
	return &Cache{src: src, items: []record.Record{}}
}

// Refresh reads the whole collection and replaces the snapshot, including with
// an empty one. On failure nothing is merged and the snapshot is kept.
// A read whose context is already done when it returns is discarded.
func (c *Cache) Refresh(ctx context.Context) ([]record.Record, error) {
	items, err := c.src.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		c.err = err
		return nil, err
	}
	if items == nil {
		items = []record.Record{}
	}
	c.items = items
	c.err = nil
	c.loaded = true
	c.fetchedAt = time.Now()
	return clone(items), nil
}

// Snapshot returns a copy of the current records in remote order.
func (c *Cache) Snapshot() []record.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.items)
}

// Len returns the number of records in the snapshot.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Err returns the error of the last refresh, or nil if it succeeded.
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// FetchedAt returns when the snapshot was last replaced; zero before the first success.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Loaded reports whether at least one refresh has succeeded.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func clone(in []record.Record) []record.Record {
	out := make([]record.Record, len(in))
	copy(out, in)
	return out
}
