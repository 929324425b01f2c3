// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"menagerie/cli/internal/dsn"
	"menagerie/cli/internal/record"
)

// Postgres stores records in one PostgreSQL table named after the schema.
type Postgres struct {
	pool   *pgxpool.Pool
	schema record.Schema
	q      queries
}

// OpenPostgres creates a connection pool and the table if needed.
func OpenPostgres(ctx context.Context, info *dsn.DSNInfo, schema record.Schema) (*Postgres, error) {
	normalized, err := dsn.NewPostgreSQLResolver().Normalize(info)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	p := NewPostgres(pool, schema)
	if _, err := pool.Exec(ctx, p.q.createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table %s: %w", schema.Name, err)
	}
	return p, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool, schema record.Schema) *Postgres {
	return &Postgres{pool: pool, schema: schema, q: buildQueries(postgresDialect, schema)}
}

func (p *Postgres) List(ctx context.Context) ([]record.Record, error) {
	rows, err := p.pool.Query(ctx, p.q.selectAll)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []record.Record{}
	for rows.Next() {
		r := newRow(p.schema)
		if err := rows.Scan(r.targets...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r.record(p.schema))
	}
	return out, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, id string) (record.Record, error) {
	key, err := idArg(p.schema, id)
	if err != nil {
		return record.Record{}, err
	}
	r := newRow(p.schema)
	err = p.pool.QueryRow(ctx, p.q.selectOne, key).Scan(r.targets...)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.Record{}, ErrNotFound
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("query: %w", err)
	}
	return r.record(p.schema), nil
}

// Create runs the insert in a transaction, reading the generated key back
// with RETURNING.
func (p *Postgres) Create(ctx context.Context, r record.Record) (record.Record, error) {
	values, err := prepare(p.schema, r)
	if err != nil {
		return record.Record{}, err
	}
	args, id := insertArgs(p.schema, values)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return record.Record{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if p.schema.IDKind == record.Integer {
		var n int64
		if err := tx.QueryRow(ctx, p.q.insert, args...).Scan(&n); err != nil {
			return record.Record{}, fmt.Errorf("insert: %w", err)
		}
		id = strconv.FormatInt(n, 10)
	} else {
		var got string
		if err := tx.QueryRow(ctx, p.q.insert, args...).Scan(&got); err != nil {
			return record.Record{}, fmt.Errorf("insert: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return record.Record{}, fmt.Errorf("commit failed: %w", err)
	}
	return record.New(id, values), nil
}

func (p *Postgres) Update(ctx context.Context, id string, r record.Record) error {
	values, err := prepare(p.schema, r)
	if err != nil {
		return err
	}
	args, err := updateArgs(p.schema, id, values)
	if err != nil {
		return err
	}
	ct, err := p.pool.Exec(ctx, p.q.update, args...)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	key, err := idArg(p.schema, id)
	if err != nil {
		return err
	}
	ct, err := p.pool.Exec(ctx, p.q.delete, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
