// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"menagerie/cli/internal/dsn"
	"menagerie/cli/internal/record"
)

// MySQL stores records in one MySQL table named after the schema.
type MySQL struct {
	db     *sql.DB
	schema record.Schema
	q      queries
}

// OpenMySQL connects, verifies the connection and creates the table if needed.
func OpenMySQL(ctx context.Context, info *dsn.DSNInfo, schema record.Schema) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn.NewMySQLResolver().DriverDSN(info))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	m := NewMySQL(db, schema)
	if _, err := db.ExecContext(ctx, m.q.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table %s: %w", schema.Name, err)
	}
	return m, nil
}

// NewMySQL wraps an open database handle.
func NewMySQL(db *sql.DB, schema record.Schema) *MySQL {
	return &MySQL{db: db, schema: schema, q: buildQueries(mysqlDialect, schema)}
}

func (m *MySQL) List(ctx context.Context) ([]record.Record, error) {
	rows, err := m.db.QueryContext(ctx, m.q.selectAll)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []record.Record{}
	for rows.Next() {
		r := newRow(m.schema)
		if err := rows.Scan(r.targets...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r.record(m.schema))
	}
	return out, rows.Err()
}

func (m *MySQL) Get(ctx context.Context, id string) (record.Record, error) {
	key, err := idArg(m.schema, id)
	if err != nil {
		return record.Record{}, err
	}
	r := newRow(m.schema)
	err = m.db.QueryRowContext(ctx, m.q.selectOne, key).Scan(r.targets...)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("query: %w", err)
	}
	return r.record(m.schema), nil
}

func (m *MySQL) Create(ctx context.Context, r record.Record) (record.Record, error) {
	values, err := prepare(m.schema, r)
	if err != nil {
		return record.Record{}, err
	}
	args, id := insertArgs(m.schema, values)
	res, err := m.db.ExecContext(ctx, m.q.insert, args...)
	if err != nil {
		return record.Record{}, fmt.Errorf("insert: %w", err)
	}
	if id == "" {
		n, err := res.LastInsertId()
		if err != nil {
			return record.Record{}, fmt.Errorf("insert id: %w", err)
		}
		id = strconv.FormatInt(n, 10)
	}
	return record.New(id, values), nil
}

func (m *MySQL) Update(ctx context.Context, id string, r record.Record) error {
	values, err := prepare(m.schema, r)
	if err != nil {
		return err
	}
	args, err := updateArgs(m.schema, id, values)
	if err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, m.q.update, args...); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	// MySQL reports zero affected rows for unchanged values, so existence
	// is checked separately.
	_, err = m.Get(ctx, id)
	return err
}

func (m *MySQL) Delete(ctx context.Context, id string) error {
	key, err := idArg(m.schema, id)
	if err != nil {
		return err
	}
	res, err := m.db.ExecContext(ctx, m.q.delete, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MySQL) Close() error { return m.db.Close() }
