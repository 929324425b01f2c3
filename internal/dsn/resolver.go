// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

const memoryDSN = "memory://"

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(dsn)

	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DBTypePostgreSQL
	}
	if strings.HasPrefix(lower, "mysql://") {
		return DBTypeMySQL
	}
	if strings.HasPrefix(lower, "dynamodb://") {
		return DBTypeDynamoDB
	}
	if strings.HasPrefix(lower, memoryDSN) {
		return DBTypeMemory
	}

	return DBTypeUnknown
}

// resolverFor returns the resolver for a DSN, or an error for unknown schemes.
func resolverFor(dsn string) (Resolver, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid store connection string")
	}
	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	case DBTypeDynamoDB:
		return NewDynamoDBResolver(), nil
	case DBTypeMemory:
		return memoryResolver{}, nil
	}
	return nil, NewParseError(dsn, "unknown store type", "use memory://, postgres://, mysql:// or dynamodb://")
}

// Parse parses a DSN string and returns normalized connection string
// This is the main entry point for DSN parsing
func Parse(dsn string) (string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}

	info, err := resolver.Parse(dsn)
	if err != nil {
		return "", err
	}

	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}
	return resolver.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(dsn)
}

// memoryResolver accepts only the bare memory:// DSN.
type memoryResolver struct{}

func (memoryResolver) Parse(dsn string) (*DSNInfo, error) {
	if !strings.EqualFold(dsn, memoryDSN) {
		return nil, NewParseError(dsn, "memory store takes no options", "use memory://")
	}
	return &DSNInfo{Type: DBTypeMemory, Params: map[string]string{}, Original: dsn}, nil
}

func (memoryResolver) Normalize(*DSNInfo) (string, error) { return memoryDSN, nil }

func (r memoryResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}
