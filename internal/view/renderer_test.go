package view

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/record"
)

func init() {
	pterm.DisableStyling()
}

func bulbasaur() record.Record {
	return record.New("1", map[string]any{
		"name": "Bulbasaur", "type": "Grass", "hp": int64(45), "attack": int64(49),
		"defense": int64(49), "sp_attack": int64(65), "sp_defense": int64(65), "speed": int64(45),
	})
}

func TestTableData(t *testing.T) {
	data := TableData(catalog.Creatures.Schema, []record.Record{bulbasaur()})
	require.Len(t, data, 2)
	assert.Equal(t, []string{"ID", "Name", "Type", "HP", "Attack", "Defense", "Sp. Attack", "Sp. Defense", "Speed"}, data[0])
	assert.Equal(t, []string{"1", "Bulbasaur", "Grass", "45", "49", "49", "65", "65", "45"}, data[1])
}

func TestFormatValue(t *testing.T) {
	s := catalog.Specimens.Schema
	height, _ := s.Lookup("height")
	indoor, _ := s.Lookup("indoor")
	name, _ := s.Lookup("name")

	assert.Equal(t, "1.25", FormatValue(height, 1.25))
	assert.Equal(t, "3", FormatValue(height, float64(3)))
	assert.Equal(t, "yes", FormatValue(indoor, true))
	assert.Equal(t, "no", FormatValue(indoor, nil))
	assert.Equal(t, "", FormatValue(name, nil))
	assert.Equal(t, "Fern", FormatValue(name, "Fern"))
}

func TestFormTitleFollowsMode(t *testing.T) {
	d := record.NewDraft(catalog.Creatures.Schema)
	assert.Equal(t, "New creature", FormTitle(catalog.Creatures, d))

	d, err := d.Load(record.New("7", nil))
	require.NoError(t, err)
	assert.Equal(t, "Edit creature #7", FormTitle(catalog.Creatures, d))
}

func TestFormTextFlagsMissingRequired(t *testing.T) {
	d := record.NewDraft(catalog.Creatures.Schema)
	d, err := d.SetField("name", "Bulbasaur")
	require.NoError(t, err)

	text := FormText(d)
	assert.Contains(t, text, "Bulbasaur")
	assert.NotContains(t, lineOf(text, "Name"), "(required)")
	assert.Contains(t, lineOf(text, "Type"), "(required)")
}

func TestRendererCollection(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, catalog.Creatures)

	r.ShowHeader()
	r.ShowHeader()
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Creatures")))

	buf.Reset()
	require.NoError(t, r.Collection(nil))
	assert.Contains(t, buf.String(), "No creatures yet.")

	buf.Reset()
	require.NoError(t, r.Collection([]record.Record{bulbasaur()}))
	assert.Contains(t, buf.String(), "Bulbasaur")

	buf.Reset()
	r.Status(listState{n: 1, loaded: true, at: time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC), err: errors.New("down")})
	assert.Contains(t, buf.String(), "1 creatures")
	assert.Contains(t, buf.String(), "09:30:00")
	assert.Contains(t, buf.String(), "last known list")
}

type listState struct {
	n      int
	loaded bool
	at     time.Time
	err    error
}

func (s listState) Len() int             { return s.n }
func (s listState) Loaded() bool         { return s.loaded }
func (s listState) FetchedAt() time.Time { return s.at }
func (s listState) RefreshErr() error    { return s.err }

func TestStatusBeforeFirstLoad(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, catalog.Specimens)

	r.Status(listState{})
	assert.Contains(t, buf.String(), "specimens not loaded yet")
	assert.NotContains(t, buf.String(), "0 specimens")
	assert.NotContains(t, buf.String(), "Could not load")

	buf.Reset()
	r.Status(listState{err: errors.New("refused")})
	assert.Contains(t, buf.String(), "not loaded yet")
	assert.Contains(t, buf.String(), "Could not load the list")
	assert.NotContains(t, buf.String(), "last known list")

	buf.Reset()
	r.Status(listState{loaded: true, at: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)})
	assert.Contains(t, buf.String(), "0 specimens")
	assert.NotContains(t, buf.String(), "not loaded")
}

func TestRowLabel(t *testing.T) {
	assert.Equal(t, "#1  Bulbasaur  Grass", RowLabel(catalog.Creatures.Schema, bulbasaur()))
}

func lineOf(text, prefix string) string {
	for _, l := range bytes.Split([]byte(text), []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(l), []byte(prefix)) {
			return string(l)
		}
	}
	return ""
}
