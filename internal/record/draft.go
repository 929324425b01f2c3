// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package record

import (
	"fmt"

	cerrors "menagerie/cli/internal/errors"
)

// Draft holds the single record being created or edited.
//
// The mode is derived from the record itself: a draft whose record carries an
// id is in update mode, otherwise it is in create mode. There is no separate
// flag to keep in sync.
type Draft struct {
	schema Schema
	rec    Record
}

// NewDraft returns an empty create-mode draft for the schema.
func NewDraft(s Schema) Draft {
	return Draft{schema: s, rec: s.Empty()}
}

func (d Draft) Schema() Schema { return d.schema }
func (d Draft) Record() Record { return d.rec }

// Updating reports whether the draft targets an existing record.
func (d Draft) Updating() bool { return d.rec.HasID() }

// SetField coerces raw by the field's kind and returns a draft with only that
// field replaced. On error the receiver is returned unchanged.
func (d Draft) SetField(name string, raw any) (Draft, error) {
	f, ok := d.schema.Lookup(name)
	if !ok {
		return d, cerrors.New(cerrors.InvalidRecord, fmt.Sprintf("%s has no field %q", d.schema.Name, name))
	}
	v, err := f.Coerce(raw)
	if err != nil {
		return d, err
	}
	return Draft{schema: d.schema, rec: d.rec.With(name, v)}, nil
}

// Reset returns an empty create-mode draft.
func (d Draft) Reset() Draft {
	return NewDraft(d.schema)
}

// Load replaces the held record wholesale and switches to update mode.
// Only persisted records (with an id) can be loaded.
func (d Draft) Load(r Record) (Draft, error) {
	if !r.HasID() {
		return d, cerrors.New(cerrors.InvalidRecord, "cannot edit a record without an id")
	}
	return Draft{schema: d.schema, rec: r}, nil
}

// MissingRequired lists required text fields that are still blank.
func (d Draft) MissingRequired() []string {
	var missing []string
	for _, f := range d.schema.Fields {
		if !f.Required || f.Kind != Text {
			continue
		}
		if s, _ := d.rec.Get(f.Name).(string); s == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
