// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net/url"
	"regexp"
	"strings"
)

// DynamoDB table names: 3-255 characters of letters, digits, '_', '-' and '.'.
var reTableName = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,255}$`)

// DynamoDBResolver handles dynamodb://table?region=...&endpoint=... DSNs.
// Credentials are never part of the DSN; they come from the AWS default chain.
type DynamoDBResolver struct{}

// NewDynamoDBResolver creates a new DynamoDB resolver
func NewDynamoDBResolver() *DynamoDBResolver {
	return &DynamoDBResolver{}
}

// Parse extracts the table name and the region/endpoint parameters.
func (r *DynamoDBResolver) Parse(dsn string) (*DSNInfo, error) {
	if !strings.HasPrefix(strings.ToLower(dsn), "dynamodb://") {
		return nil, NewParseError(dsn, "missing or invalid scheme", "use dynamodb://table?region=us-east-1")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, NewParseError(dsn, err.Error(), "use dynamodb://table?region=us-east-1")
	}
	if parsed.User != nil {
		return nil, NewParseError(dsn, "credentials are not accepted in the DSN", "configure AWS credentials through the environment or ~/.aws")
	}
	info := &DSNInfo{
		Type:     DBTypeDynamoDB,
		Database: parsed.Host,
		Params:   make(map[string]string),
		Original: dsn,
	}
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			info.Params[key] = values[0]
		}
	}
	if info.Database == "" {
		return nil, NewParseError(dsn, "missing table name", "use dynamodb://table?region=us-east-1")
	}
	return info, nil
}

// Normalize returns the DSN with parameters in sorted order.
func (r *DynamoDBResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	u := url.URL{Scheme: "dynamodb", Host: info.Database}
	if len(info.Params) > 0 {
		q := url.Values{}
		for k, v := range info.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Validate checks the table name and the endpoint, when given.
func (r *DynamoDBResolver) Validate(dsn string) error {
	info, err := r.Parse(dsn)
	if err != nil {
		return err
	}
	if !reTableName.MatchString(info.Database) {
		return NewParseError(dsn, "invalid table name: "+info.Database, "use 3-255 letters, digits, '_', '-' or '.'")
	}
	if ep := info.Params["endpoint"]; ep != "" {
		if u, err := url.Parse(ep); err != nil || u.Scheme == "" || u.Host == "" {
			return NewParseError(dsn, "invalid endpoint: "+ep, "use a full URL such as http://localhost:8000")
		}
	}
	return nil
}
