// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"menagerie/cli/internal/record"
)

// dialect captures the SQL differences between the relational backends.
type dialect struct {
	name string
	// placeholder returns the n-th (1-based) bind parameter
	placeholder func(n int) string
	quote       func(ident string) string
	// serialID is the column definition of a generated integer key
	serialID string
	// returning is appended to INSERT to read back a generated key
	returning bool
	types     map[record.Kind]string
}

var mysqlDialect = dialect{
	name:        "mysql",
	placeholder: func(int) string { return "?" },
	quote:       func(s string) string { return "`" + s + "`" },
	serialID:    "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY",
	types: map[record.Kind]string{
		record.Text:    "VARCHAR(255) NOT NULL DEFAULT ''",
		record.Integer: "BIGINT NOT NULL DEFAULT 0",
		record.Float:   "DOUBLE NOT NULL DEFAULT 0",
		record.Boolean: "BOOLEAN NOT NULL DEFAULT FALSE",
	},
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	quote:       func(s string) string { return `"` + s + `"` },
	serialID:    "BIGSERIAL PRIMARY KEY",
	returning:   true,
	types: map[record.Kind]string{
		record.Text:    "TEXT NOT NULL DEFAULT ''",
		record.Integer: "BIGINT NOT NULL DEFAULT 0",
		record.Float:   "DOUBLE PRECISION NOT NULL DEFAULT 0",
		record.Boolean: "BOOLEAN NOT NULL DEFAULT FALSE",
	},
}

// queries holds the statements for one schema in one dialect.
type queries struct {
	createTable string
	selectAll   string
	selectOne   string
	insert      string
	update      string
	delete      string
}

func buildQueries(d dialect, s record.Schema) queries {
	table := d.quote(s.Name)
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = d.quote(f.Name)
	}
	id := d.quote("id")

	defs := make([]string, 0, len(s.Fields)+1)
	if s.IDKind == record.Integer {
		defs = append(defs, id+" "+d.serialID)
	} else {
		defs = append(defs, id+" VARCHAR(64) NOT NULL PRIMARY KEY")
	}
	for i, f := range s.Fields {
		defs = append(defs, cols[i]+" "+d.types[f.Kind])
	}

	all := id + ", " + strings.Join(cols, ", ")

	// text ids are generated client side and bound first
	insertCols := cols
	if s.IDKind != record.Integer {
		insertCols = append([]string{id}, cols...)
	}
	binds := make([]string, len(insertCols))
	for i := range binds {
		binds[i] = d.placeholder(i + 1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(insertCols, ", "), strings.Join(binds, ", "))
	if d.returning {
		insert += " RETURNING " + id
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = " + d.placeholder(i+1)
	}

	return queries{
		createTable: fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", ")),
		selectAll:   fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", all, table, id),
		selectOne:   fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", all, table, id, d.placeholder(1)),
		insert:      insert,
		update:      fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", table, strings.Join(sets, ", "), id, d.placeholder(len(cols)+1)),
		delete:      fmt.Sprintf("DELETE FROM %s WHERE %s = %s", table, id, d.placeholder(1)),
	}
}

// insertArgs returns the bind values for INSERT and the id to report for
// text-id schemas (empty for generated integer keys).
func insertArgs(s record.Schema, values map[string]any) ([]any, string) {
	args := fieldArgs(s, values)
	if s.IDKind == record.Integer {
		return args, ""
	}
	id := uuid.NewString()
	return append([]any{id}, args...), id
}

// updateArgs returns the bind values for UPDATE: fields, then the id.
func updateArgs(s record.Schema, id string, values map[string]any) ([]any, error) {
	key, err := idArg(s, id)
	if err != nil {
		return nil, err
	}
	return append(fieldArgs(s, values), key), nil
}

func fieldArgs(s record.Schema, values map[string]any) []any {
	args := make([]any, len(s.Fields))
	for i, f := range s.Fields {
		args[i] = values[f.Name]
	}
	return args
}

// idArg converts an id to its column type. A malformed integer id cannot
// match any row.
func idArg(s record.Schema, id string) (any, error) {
	if s.IDKind != record.Integer {
		return id, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	return n, nil
}

// row scans one result row of selectAll/selectOne.
type row struct {
	intID   int64
	textID  string
	targets []any
}

func newRow(s record.Schema) *row {
	r := &row{targets: make([]any, 0, len(s.Fields)+1)}
	if s.IDKind == record.Integer {
		r.targets = append(r.targets, &r.intID)
	} else {
		r.targets = append(r.targets, &r.textID)
	}
	for _, f := range s.Fields {
		switch f.Kind {
		case record.Integer:
			r.targets = append(r.targets, new(sql.NullInt64))
		case record.Float:
			r.targets = append(r.targets, new(sql.NullFloat64))
		case record.Boolean:
			r.targets = append(r.targets, new(sql.NullBool))
		default:
			r.targets = append(r.targets, new(sql.NullString))
		}
	}
	return r
}

func (r *row) record(s record.Schema) record.Record {
	id := r.textID
	if s.IDKind == record.Integer {
		id = strconv.FormatInt(r.intID, 10)
	}
	values := make(map[string]any, len(s.Fields))
	for i, f := range s.Fields {
		switch t := r.targets[i+1].(type) {
		case *sql.NullInt64:
			values[f.Name] = t.Int64
		case *sql.NullFloat64:
			values[f.Name] = t.Float64
		case *sql.NullBool:
			values[f.Name] = t.Bool
		case *sql.NullString:
			values[f.Name] = t.String
		}
	}
	return record.New(id, values)
}
