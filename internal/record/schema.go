// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package record defines the field schema, the immutable Record value and the
// Draft holder shared by every resource panel.
//
// A Schema is a declarative list of named, typed fields. All coercion, JSON
// encoding and empty-record construction is driven by the schema, so the same
// code serves every resource kind.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	cerrors "menagerie/cli/internal/errors"
)

// Kind is the semantic type of a field.
type Kind string

const (
	Text    Kind = "text"
	Integer Kind = "integer"
	Float   Kind = "float"
	Boolean Kind = "boolean"
)

// Field describes one domain attribute of a record.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
}

// Schema describes a resource kind's record shape.
// Fields never include the id; IDKind tells how the id travels on the wire.
type Schema struct {
	Name   string
	IDKind Kind
	Fields []Field
}

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns field names in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Empty returns the canonical empty record: zero values, false flags, no id.
func (s Schema) Empty() Record {
	values := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		values[f.Name] = f.Zero()
	}
	return Record{values: values}
}

// Zero returns the zero value for the field's kind.
func (f Field) Zero() any {
	switch f.Kind {
	case Integer:
		return int64(0)
	case Float:
		return float64(0)
	case Boolean:
		return false
	default:
		return ""
	}
}

// Coerce converts raw into the field's kind.
// Empty text coerces to the zero value, matching what a blank form input yields.
func (f Field) Coerce(raw any) (any, error) {
	switch f.Kind {
	case Integer:
		return coerceInteger(f.Name, raw)
	case Float:
		return coerceFloat(f.Name, raw)
	case Boolean:
		return coerceBool(f.Name, raw)
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		if raw == nil {
			return "", nil
		}
		return fmt.Sprint(raw), nil
	}
}

func invalid(field string, raw any, err error) error {
	return cerrors.Wrap(cerrors.InvalidRecord, fmt.Sprintf("field %q: cannot use %v", field, raw), err)
}

// float64 bounds of int64; 1<<63 itself is already out of range.
const (
	minInt64      = -(1 << 63)
	maxInt64Bound = 1 << 63
)

func coerceInteger(name string, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return int64(0), nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, invalid(name, raw, err)
		}
		return n, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, invalid(name, raw, err)
		}
		return n, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, invalid(name, raw, fmt.Errorf("not an integer"))
		}
		if v < minInt64 || v >= maxInt64Bound {
			return nil, invalid(name, raw, fmt.Errorf("out of range"))
		}
		return int64(v), nil
	}
	return nil, invalid(name, raw, fmt.Errorf("unsupported type %T", raw))
}

func coerceFloat(name string, raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return float64(0), nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, invalid(name, raw, err)
		}
		return n, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, invalid(name, raw, err)
		}
		return n, nil
	}
	return nil, invalid(name, raw, fmt.Errorf("unsupported type %T", raw))
}

func coerceBool(name string, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, invalid(name, raw, err)
		}
		return b, nil
	}
	return nil, invalid(name, raw, fmt.Errorf("unsupported type %T", raw))
}
