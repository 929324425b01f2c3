// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"menagerie/cli/internal/record"
)

// Memory keeps records in process memory in insertion order.
type Memory struct {
	schema record.Schema

	mu    sync.RWMutex
	order []string
	items map[string]record.Record
	seq   int64
}

// NewMemory creates an empty in-memory store.
func NewMemory(schema record.Schema) *Memory {
	return &Memory{schema: schema, items: map[string]record.Record{}}
}

func (m *Memory) List(ctx context.Context) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]record.Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return record.Record{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) Create(ctx context.Context, r record.Record) (record.Record, error) {
	values, err := prepare(m.schema, r)
	if err != nil {
		return record.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextIDLocked()
	stored := record.New(id, values)
	m.items[id] = stored
	m.order = append(m.order, id)
	return stored, nil
}

func (m *Memory) Update(ctx context.Context, id string, r record.Record) error {
	values, err := prepare(m.schema, r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	m.items[id] = record.New(id, values)
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) nextIDLocked() string {
	if m.schema.IDKind == record.Integer {
		m.seq++
		return strconv.FormatInt(m.seq, 10)
	}
	return uuid.NewString()
}
