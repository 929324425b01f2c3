// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// PostgreSQLResolver handles PostgreSQL DSN parsing and normalization
type PostgreSQLResolver struct{}

// NewPostgreSQLResolver creates a new PostgreSQL resolver
func NewPostgreSQLResolver() *PostgreSQLResolver {
	return &PostgreSQLResolver{}
}

// Parse parses a postgres:// or postgresql:// DSN.
func (r *PostgreSQLResolver) Parse(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid PostgreSQL connection string")
	}
	var scheme string
	switch {
	case strings.HasPrefix(dsn, "postgresql://"):
		scheme = "postgresql"
	case strings.HasPrefix(dsn, "postgres://"):
		scheme = "postgres"
	default:
		return nil, NewParseError(dsn, "missing or invalid scheme", "use postgres:// or postgresql://")
	}
	return parseHostDSN(DBTypePostgreSQL, "5432", scheme, dsn)
}

// Normalize returns the canonical postgresql:// URL accepted by pgx.
func (r *PostgreSQLResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	return hostURL("postgresql", info), nil
}

// Validate checks if the DSN is valid for PostgreSQL
func (r *PostgreSQLResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	return validatePort(dsn, info)
}
