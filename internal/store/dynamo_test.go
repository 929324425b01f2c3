// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menagerie/cli/internal/catalog"
)

// fakeDynamo is a single-table DynamoDB that pages scans two items at a time.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]dbtypes.AttributeValue
	scans int
	fail  error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]dbtypes.AttributeValue{}}
}

func keyOf(m map[string]dbtypes.AttributeValue) string {
	return m["id"].(*dbtypes.AttributeValueMemberS).Value
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.scans++
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	// reverse order so the store has to sort
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	start := 0
	if params.ExclusiveStartKey != nil {
		after := keyOf(params.ExclusiveStartKey)
		for i, k := range keys {
			if k == after {
				start = i + 1
			}
		}
	}
	end := min(start+2, len(keys))
	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, f.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]dbtypes.AttributeValue{"id": &dbtypes.AttributeValueMemberS{Value: keys[end-1]}}
	}
	return out, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(params.Key)]}, nil
}

func (f *fakeDynamo) check(condition *string, exists bool) error {
	switch aws.ToString(condition) {
	case mustExist:
		if !exists {
			return &dbtypes.ConditionalCheckFailedException{Message: aws.String("missing")}
		}
	case mustBeFresh:
		if exists {
			return &dbtypes.ConditionalCheckFailedException{Message: aws.String("exists")}
		}
	}
	return nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(params.Item)
	_, exists := f.items[k]
	if err := f.check(params.ConditionExpression, exists); err != nil {
		return nil, err
	}
	f.items[k] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(params.Key)
	_, exists := f.items[k]
	if err := f.check(params.ConditionExpression, exists); err != nil {
		return nil, err
	}
	delete(f.items, k)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoStore(t *testing.T) {
	d, err := NewDynamo(newFakeDynamo(), "plants", catalog.Specimens.Schema)
	require.NoError(t, err)
	exerciseStore(t, d, catalog.Specimens.Schema, fern())
}

func TestDynamoRejectsIntegerIDs(t *testing.T) {
	_, err := NewDynamo(newFakeDynamo(), "pokemon", catalog.Creatures.Schema)
	assert.Error(t, err)
}

func TestDynamoListFollowsPagesAndSorts(t *testing.T) {
	fake := newFakeDynamo()
	d, err := NewDynamo(fake, "plants", catalog.Specimens.Schema)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := d.Create(ctx, fern())
		require.NoError(t, err)
	}
	rows, err := d.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, 3, fake.scans)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1].ID(), rows[i].ID())
	}
}

func TestDynamoItemEncoding(t *testing.T) {
	fake := newFakeDynamo()
	d, err := NewDynamo(fake, "plants", catalog.Specimens.Schema)
	require.NoError(t, err)

	r, err := d.Create(context.Background(), fern())
	require.NoError(t, err)

	item := fake.items[r.ID()]
	assert.Equal(t, &dbtypes.AttributeValueMemberN{Value: "3"}, item["water_interval"])
	assert.Equal(t, &dbtypes.AttributeValueMemberN{Value: "0.9"}, item["height"])
	assert.Equal(t, &dbtypes.AttributeValueMemberBOOL{Value: true}, item["indoor"])
	assert.Equal(t, &dbtypes.AttributeValueMemberS{Value: "Boston Fern"}, item["name"])
	assert.Equal(t, &dbtypes.AttributeValueMemberS{Value: r.ID()}, item["id"])
}

func TestDynamoItemDecoding(t *testing.T) {
	fake := newFakeDynamo()
	fake.items["a1"] = map[string]dbtypes.AttributeValue{
		"id":             &dbtypes.AttributeValueMemberS{Value: "a1"},
		"name":           &dbtypes.AttributeValueMemberS{Value: "Aloe"},
		"water_interval": &dbtypes.AttributeValueMemberN{Value: "14"},
		"height":         &dbtypes.AttributeValueMemberN{Value: "0.45"},
		"indoor":         &dbtypes.AttributeValueMemberBOOL{Value: false},
		"native":         &dbtypes.AttributeValueMemberNULL{Value: true},
	}
	d, err := NewDynamo(fake, "plants", catalog.Specimens.Schema)
	require.NoError(t, err)

	r, err := d.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", r.ID())
	assert.Equal(t, "Aloe", r.Get("name"))
	assert.Equal(t, int64(14), r.Get("water_interval"))
	assert.Equal(t, 0.45, r.Get("height"))
	assert.Equal(t, false, r.Get("indoor"))
	assert.Equal(t, "", r.Get("native"))
	assert.Equal(t, "", r.Get("family"))
}

func TestDynamoItemDecodingErrors(t *testing.T) {
	tests := []struct {
		name string
		item map[string]dbtypes.AttributeValue
	}{
		{
			name: "fractional integer",
			item: map[string]dbtypes.AttributeValue{
				"id":             &dbtypes.AttributeValueMemberS{Value: "b1"},
				"water_interval": &dbtypes.AttributeValueMemberN{Value: "2.5"},
			},
		},
		{
			name: "numeric id",
			item: map[string]dbtypes.AttributeValue{
				"id": &dbtypes.AttributeValueMemberN{Value: "7"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeDynamo()
			fake.items["b1"] = tt.item
			d, err := NewDynamo(fake, "plants", catalog.Specimens.Schema)
			require.NoError(t, err)

			_, err = d.Get(context.Background(), "b1")
			assert.Error(t, err)
		})
	}
}

func TestDynamoScanError(t *testing.T) {
	fake := newFakeDynamo()
	fake.fail = errors.New("throttled")
	d, err := NewDynamo(fake, "plants", catalog.Specimens.Schema)
	require.NoError(t, err)

	_, err = d.List(context.Background())
	assert.ErrorContains(t, err, "throttled")
}
