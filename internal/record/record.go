// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package record

import (
	"maps"
)

// Record is one entity of a resource kind. It is an immutable value:
// every modifier returns a new Record and never touches the receiver.
type Record struct {
	id     string
	values map[string]any
}

// New builds a record from an id (empty for unsaved records) and field values.
// The values map is copied.
func New(id string, values map[string]any) Record {
	return Record{id: id, values: maps.Clone(values)}
}

// ID returns the externally assigned identifier, or "" for unsaved records.
func (r Record) ID() string { return r.id }

// HasID reports whether the record has been persisted remotely.
func (r Record) HasID() bool { return r.id != "" }

// Get returns the value of a field, or nil when absent.
func (r Record) Get(name string) any { return r.values[name] }

// Values returns a copy of the field values.
func (r Record) Values() map[string]any { return maps.Clone(r.values) }

// With returns a copy of r with one field replaced.
func (r Record) With(name string, value any) Record {
	values := maps.Clone(r.values)
	if values == nil {
		values = make(map[string]any, 1)
	}
	values[name] = value
	return Record{id: r.id, values: values}
}

// WithID returns a copy of r carrying id.
func (r Record) WithID(id string) Record {
	return Record{id: id, values: maps.Clone(r.values)}
}

// Equal reports whether both records carry the same id and field values.
func (r Record) Equal(o Record) bool {
	return r.id == o.id && maps.Equal(r.values, o.values)
}

// Find returns the record with the given id.
func Find(records []Record, id string) (Record, bool) {
	for _, r := range records {
		if r.id == id {
			return r, true
		}
	}
	return Record{}, false
}
