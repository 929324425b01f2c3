// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "menagerie/cli/internal/errors"
)

var plantSchema = Schema{
	Name:   "plants",
	IDKind: Text,
	Fields: []Field{
		{Name: "name", Kind: Text, Required: true},
		{Name: "water_interval", Kind: Integer},
		{Name: "height", Kind: Float},
		{Name: "indoor", Kind: Boolean},
	},
}

var pokemonSchema = Schema{
	Name:   "pokemon",
	IDKind: Integer,
	Fields: []Field{
		{Name: "name", Kind: Text, Required: true},
		{Name: "type", Kind: Text, Required: true},
		{Name: "hp", Kind: Integer, Required: true},
	},
}

func TestEmpty(t *testing.T) {
	r := plantSchema.Empty()
	assert.False(t, r.HasID())
	assert.Equal(t, map[string]any{
		"name":           "",
		"water_interval": int64(0),
		"height":         float64(0),
		"indoor":         false,
	}, r.Values())
}

func TestSetFieldCoercion(t *testing.T) {
	tests := []struct {
		name  string
		field string
		raw   any
		want  any
	}{
		{name: "text passes through", field: "name", raw: "Monstera", want: "Monstera"},
		{name: "integer from text", field: "water_interval", raw: "7", want: int64(7)},
		{name: "integer from padded text", field: "water_interval", raw: " 12 ", want: int64(12)},
		{name: "integer from blank", field: "water_interval", raw: "", want: int64(0)},
		{name: "integer from int", field: "water_interval", raw: 3, want: int64(3)},
		{name: "float from text", field: "height", raw: "1.25", want: 1.25},
		{name: "float from int", field: "height", raw: 2, want: float64(2)},
		{name: "bool from bool", field: "indoor", raw: true, want: true},
		{name: "bool from text", field: "indoor", raw: "true", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDraft(plantSchema).SetField(tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Record().Get(tt.field))
		})
	}
}

func TestSetFieldChangesOnlyNamedField(t *testing.T) {
	base, err := NewDraft(plantSchema).Load(New("a1", map[string]any{
		"name":           "Fern",
		"water_interval": int64(3),
		"height":         0.4,
		"indoor":         true,
	}))
	require.NoError(t, err)

	for _, name := range plantSchema.Names() {
		t.Run(name, func(t *testing.T) {
			f, _ := plantSchema.Lookup(name)
			var raw any
			switch f.Kind {
			case Text:
				raw = "changed"
			case Integer:
				raw = "99"
			case Float:
				raw = "9.5"
			case Boolean:
				raw = false
			}
			next, err := base.SetField(name, raw)
			require.NoError(t, err)

			for _, other := range plantSchema.Names() {
				if other == name {
					continue
				}
				assert.Equal(t, base.Record().Get(other), next.Record().Get(other), "field %s", other)
			}
			assert.Equal(t, base.Record().ID(), next.Record().ID())
			// receiver untouched
			assert.Equal(t, "Fern", base.Record().Get("name"))
		})
	}
}

func TestSetFieldRejects(t *testing.T) {
	d := NewDraft(plantSchema)

	_, err := d.SetField("colour", "green")
	assert.Equal(t, cerrors.InvalidRecord, cerrors.KindOf(err))

	same, err := d.SetField("water_interval", "often")
	assert.Error(t, err)
	assert.True(t, same.Record().Equal(d.Record()))

	_, err = d.SetField("water_interval", 2.5)
	assert.Error(t, err)

	_, err = d.SetField("water_interval", 1e19)
	assert.Error(t, err)

	_, err = d.SetField("water_interval", -1e19)
	assert.Error(t, err)

	_, err = d.SetField("water_interval", float64(1<<63))
	assert.Error(t, err)

	big, err := d.SetField("water_interval", float64(1<<62))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<62), big.Record().Get("water_interval"))

	_, err = d.SetField("indoor", "maybe")
	assert.Error(t, err)
}

func TestDraftModes(t *testing.T) {
	d := NewDraft(pokemonSchema)
	assert.False(t, d.Updating())

	_, err := d.Load(pokemonSchema.Empty())
	assert.Error(t, err, "unsaved records cannot be edited")

	row := New("7", map[string]any{"name": "Pikachu", "type": "Electric", "hp": int64(35)})
	loaded, err := d.Load(row)
	require.NoError(t, err)
	assert.True(t, loaded.Updating())
	assert.True(t, loaded.Record().Equal(row))

	reset := loaded.Reset()
	assert.False(t, reset.Updating())
	assert.True(t, reset.Record().Equal(pokemonSchema.Empty()))
	assert.True(t, reset.Reset().Record().Equal(reset.Record()))
}

func TestMissingRequired(t *testing.T) {
	d := NewDraft(pokemonSchema)
	assert.Equal(t, []string{"name", "type"}, d.MissingRequired())

	d, _ = d.SetField("name", "Bulbasaur")
	d, _ = d.SetField("type", "Grass")
	assert.Empty(t, d.MissingRequired())
}

func TestMarshal(t *testing.T) {
	draft := New("", map[string]any{"name": "Bulbasaur", "type": "Grass", "hp": int64(45)})
	b, err := pokemonSchema.Marshal(draft)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Bulbasaur","type":"Grass","hp":45}`, string(b))

	b, err = pokemonSchema.Marshal(draft.WithID("7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"Bulbasaur","type":"Grass","hp":45}`, string(b))

	_, err = pokemonSchema.Marshal(draft.WithID("seven"))
	assert.Error(t, err)

	b, err = plantSchema.Marshal(plantSchema.Empty().WithID("c0ffee"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c0ffee","name":"","water_interval":0,"height":0,"indoor":false}`, string(b))
}

func TestUnmarshalList(t *testing.T) {
	records, err := pokemonSchema.UnmarshalList([]byte(`[
		{"id":1,"name":"Bulbasaur","type":"Grass","hp":45},
		{"id":4,"name":"Charmander","type":"Fire"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID())
	assert.Equal(t, int64(45), records[0].Get("hp"))
	assert.Equal(t, int64(0), records[1].Get("hp"))

	r, ok := Find(records, "4")
	assert.True(t, ok)
	assert.Equal(t, "Charmander", r.Get("name"))
}

func TestUnmarshalIntegerIDNotation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "plain", body: `[{"id":7}]`, want: "7"},
		{name: "trailing zero", body: `[{"id":7.0}]`, want: "7"},
		{name: "exponent", body: `[{"id":1e2}]`, want: "100"},
		{name: "string", body: `[{"id":"12"}]`, want: "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := pokemonSchema.UnmarshalList([]byte(tt.body))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].ID())

			b, err := pokemonSchema.Marshal(records[0])
			require.NoError(t, err, "record can be sent back")
			assert.Contains(t, string(b), `"id":`+tt.want)
		})
	}

	records, err := plantSchema.UnmarshalList([]byte(`[{"id":7.0}]`))
	require.NoError(t, err)
	assert.Equal(t, "7.0", records[0].ID(), "text ids keep their spelling")
}

func TestUnmarshalListNullAndMalformed(t *testing.T) {
	records, err := pokemonSchema.UnmarshalList([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = pokemonSchema.UnmarshalList([]byte(`[{"id":1,"hp":"lots"}]`))
	assert.Error(t, err)

	_, err = pokemonSchema.UnmarshalList([]byte(`[{"id":1`))
	assert.Equal(t, cerrors.InvalidRecord, cerrors.KindOf(err))
}
