// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"menagerie/cli/internal/dsn"
	"menagerie/cli/internal/record"
)

const (
	keyAttr     = "id"
	mustExist   = "attribute_exists(id)"
	mustBeFresh = "attribute_not_exists(id)"
)

// DynamoClient defines the DynamoDB operations used by the store.
type DynamoClient interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Dynamo stores records as items of one DynamoDB table keyed by a string "id".
// Only text-id schemas are supported; ids are UUIDs.
type Dynamo struct {
	client DynamoClient
	table  string
	schema record.Schema
}

// OpenDynamo loads AWS configuration from the default chain, honouring the
// DSN's region and endpoint, and checks that the table exists.
func OpenDynamo(ctx context.Context, info *dsn.DSNInfo, schema record.Schema) (*Dynamo, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := info.Param("region", ""); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}
	endpoint := info.Param("endpoint", "")
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	d, err := NewDynamo(client, info.Database, schema)
	if err != nil {
		return nil, err
	}
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)}); err != nil {
		return nil, fmt.Errorf("dynamodb: describe table %s: %w", d.table, err)
	}
	return d, nil
}

// NewDynamo wraps a client.
func NewDynamo(client DynamoClient, table string, schema record.Schema) (*Dynamo, error) {
	if schema.IDKind != record.Text {
		return nil, fmt.Errorf("dynamodb: %s needs text ids", schema.Name)
	}
	return &Dynamo{client: client, table: table, schema: schema}, nil
}

// List scans the whole table, following pagination, and orders by id.
func (d *Dynamo) List(ctx context.Context) ([]record.Record, error) {
	out := []record.Record{}
	var start map[string]dbtypes.AttributeValue
	for {
		page, err := d.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb: scan: %w", err)
		}
		var docs []map[string]any
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &docs); err != nil {
			return nil, fmt.Errorf("dynamodb: decode scan page: %w", err)
		}
		for _, doc := range docs {
			r, err := d.fromDoc(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		start = page.LastEvaluatedKey
	}
	slices.SortFunc(out, func(a, b record.Record) int { return strings.Compare(a.ID(), b.ID()) })
	return out, nil
}

func (d *Dynamo) Get(ctx context.Context, id string) (record.Record, error) {
	res, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       d.key(id),
	})
	if err != nil {
		return record.Record{}, fmt.Errorf("dynamodb: get item: %w", err)
	}
	if res.Item == nil {
		return record.Record{}, ErrNotFound
	}
	var doc map[string]any
	if err := attributevalue.UnmarshalMap(res.Item, &doc); err != nil {
		return record.Record{}, fmt.Errorf("dynamodb: decode item %s: %w", id, err)
	}
	return d.fromDoc(doc)
}

func (d *Dynamo) Create(ctx context.Context, r record.Record) (record.Record, error) {
	values, err := prepare(d.schema, r)
	if err != nil {
		return record.Record{}, err
	}
	id := uuid.NewString()
	if err := d.put(ctx, id, values, mustBeFresh); err != nil {
		return record.Record{}, err
	}
	return record.New(id, values), nil
}

func (d *Dynamo) Update(ctx context.Context, id string, r record.Record) error {
	values, err := prepare(d.schema, r)
	if err != nil {
		return err
	}
	return d.put(ctx, id, values, mustExist)
}

func (d *Dynamo) Delete(ctx context.Context, id string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(d.table),
		Key:                 d.key(id),
		ConditionExpression: aws.String(mustExist),
	})
	return d.conditional("delete item", err)
}

func (d *Dynamo) Close() error { return nil }

func (d *Dynamo) put(ctx context.Context, id string, values map[string]any, condition string) error {
	item, err := d.toItem(id, values)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String(condition),
	})
	return d.conditional("put item", err)
}

// conditional maps a failed existence condition to ErrNotFound.
func (d *Dynamo) conditional(op string, err error) error {
	if err == nil {
		return nil
	}
	var ccf *dbtypes.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrNotFound
	}
	return fmt.Errorf("dynamodb: %s: %w", op, err)
}

func (d *Dynamo) key(id string) map[string]dbtypes.AttributeValue {
	return map[string]dbtypes.AttributeValue{keyAttr: &dbtypes.AttributeValueMemberS{Value: id}}
}

// toItem encodes the record values plus the key attribute.
func (d *Dynamo) toItem(id string, values map[string]any) (map[string]dbtypes.AttributeValue, error) {
	doc := maps.Clone(values)
	doc[keyAttr] = id
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: marshal item %s: %w", id, err)
	}
	return item, nil
}

// fromDoc coerces a decoded item back into the schema. Numbers decode as
// float64 and missing or NULL attributes take the field's zero value.
func (d *Dynamo) fromDoc(doc map[string]any) (record.Record, error) {
	id, ok := doc[keyAttr].(string)
	if !ok || id == "" {
		return record.Record{}, fmt.Errorf("dynamodb: item without string id")
	}
	values := make(map[string]any, len(d.schema.Fields))
	for _, f := range d.schema.Fields {
		raw := doc[f.Name]
		if raw == nil {
			values[f.Name] = f.Zero()
			continue
		}
		v, err := f.Coerce(raw)
		if err != nil {
			return record.Record{}, fmt.Errorf("dynamodb: item %s: %w", id, err)
		}
		values[f.Name] = v
	}
	return record.New(id, values), nil
}
