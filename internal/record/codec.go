// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	cerrors "menagerie/cli/internal/errors"
)

const idKey = "id"

// Marshal encodes r as a JSON object keyed by field name.
// The id is omitted for unsaved records and otherwise encoded by IDKind.
func (s Schema) Marshal(r Record) ([]byte, error) {
	out, err := s.toWire(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// MarshalList encodes a slice of records as a JSON array (never null).
func (s Schema) MarshalList(records []Record) ([]byte, error) {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		w, err := s.toWire(r)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return json.Marshal(out)
}

func (s Schema) toWire(r Record) (map[string]any, error) {
	out := make(map[string]any, len(s.Fields)+1)
	for _, f := range s.Fields {
		v := r.Get(f.Name)
		if v == nil {
			v = f.Zero()
		}
		out[f.Name] = v
	}
	if !r.HasID() {
		return out, nil
	}
	if s.IDKind == Integer {
		n, err := strconv.ParseInt(r.ID(), 10, 64)
		if err != nil {
			return nil, cerrors.Wrap(cerrors.InvalidRecord, fmt.Sprintf("%s id %q is not an integer", s.Name, r.ID()), err)
		}
		out[idKey] = n
	} else {
		out[idKey] = r.ID()
	}
	return out, nil
}

// Unmarshal decodes a single JSON object into a record.
// Missing fields take their zero value; unknown keys are ignored.
func (s Schema) Unmarshal(data []byte) (Record, error) {
	var raw map[string]any
	if err := decode(data, &raw); err != nil {
		return Record{}, err
	}
	return s.fromWire(raw)
}

// UnmarshalList decodes a JSON array of records. A JSON null decodes to an
// empty, non-nil slice. Any malformed element fails the whole list.
func (s Schema) UnmarshalList(data []byte) ([]Record, error) {
	var raw []map[string]any
	if err := decode(data, &raw); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(raw))
	for i, item := range raw {
		r, err := s.fromWire(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return cerrors.Wrap(cerrors.InvalidRecord, "malformed JSON", err)
	}
	return nil
}

func (s Schema) fromWire(raw map[string]any) (Record, error) {
	values := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			values[f.Name] = f.Zero()
			continue
		}
		c, err := f.Coerce(v)
		if err != nil {
			return Record{}, err
		}
		values[f.Name] = c
	}
	id, err := s.wireID(raw[idKey])
	if err != nil {
		return Record{}, err
	}
	return Record{id: id, values: values}, nil
}

// wireID reads the id attribute. Integer ids sent in float notation (7.0,
// 1e2) are normalized so the record can be addressed and sent back.
func (s Schema) wireID(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case json.Number:
		if s.IDKind == Integer {
			if n, err := id.Int64(); err == nil {
				return strconv.FormatInt(n, 10), nil
			}
			if f, err := id.Float64(); err == nil {
				if n, err := coerceInteger(idKey, f); err == nil {
					return strconv.FormatInt(n.(int64), 10), nil
				}
			}
		}
		return id.String(), nil
	}
	return "", cerrors.New(cerrors.InvalidRecord, fmt.Sprintf("unsupported id type %T", v))
}
