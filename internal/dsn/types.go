// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "fmt"

// DBType names the store backend a DSN selects.
type DBType string

const (
	DBTypePostgreSQL DBType = "postgresql"
	DBTypeMySQL      DBType = "mysql"
	DBTypeDynamoDB   DBType = "dynamodb"
	DBTypeMemory     DBType = "memory"
	DBTypeUnknown    DBType = "unknown"
)

// DSNInfo is a parsed store DSN. For DynamoDB, Database holds the table name
// and Host is empty.
type DSNInfo struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// Param returns the query option key, or fallback when it is unset.
func (d *DSNInfo) Param(key, fallback string) string {
	if v, ok := d.Params[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Resolver parses and rebuilds DSNs for one store type.
type Resolver interface {
	Parse(dsn string) (*DSNInfo, error)
	// Normalize renders info as the connection string the driver expects.
	Normalize(info *DSNInfo) (string, error)
	Validate(dsn string) error
}

// ParseError describes a rejected DSN. Hint, when set, tells the user what a
// valid one looks like.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	msg := "invalid store DSN: " + e.Reason
	if e.Hint != "" {
		msg += fmt.Sprintf(" (%s)", e.Hint)
	}
	return msg
}

func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{DSN: dsn, Reason: reason, Hint: hint}
}
