// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package panel

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menagerie/cli/internal/catalog"
	cerrors "menagerie/cli/internal/errors"
	"menagerie/cli/internal/record"
)

// fakeAPI is an in-memory collection service that records every call.
type fakeAPI struct {
	mu      sync.Mutex
	records []record.Record
	nextID  int
	calls   []string
	fail    map[string]error
	// when set, mutations wait for a value (or context cancellation)
	block   chan struct{}
	started chan struct{}
}

func newFakeAPI(seed ...record.Record) *fakeAPI {
	return &fakeAPI{records: seed, nextID: 100, fail: map[string]error{}}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	op := call
	for i, c := range call {
		if c == ' ' {
			op = call[:i]
			break
		}
	}
	return f.fail[op]
}

func (f *fakeAPI) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return cerrors.Wrap(cerrors.Transport, "request", ctx.Err())
	}
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) List(ctx context.Context) ([]record.Record, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]record.Record(nil), f.records...), nil
}

func (f *fakeAPI) Create(ctx context.Context, r record.Record) error {
	if err := f.record("create"); err != nil {
		return err
	}
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.records = append(f.records, r.WithID(strconv.Itoa(f.nextID)))
	return nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, r record.Record) error {
	if err := f.record("update " + id); err != nil {
		return err
	}
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID() == id {
			f.records[i] = r.WithID(id)
		}
	}
	return nil
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if err := f.record("delete " + id); err != nil {
		return err
	}
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, r := range f.records {
		if r.ID() != id {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

type reports struct {
	mu  sync.Mutex
	ops []string
}

func (r *reports) Report(resource, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, resource+"/"+op)
}

func (r *reports) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func creature(id, name string, hp int64) record.Record {
	return record.New(id, map[string]any{
		"name": name, "type": "Normal",
		"hp": hp, "attack": int64(1), "defense": int64(1),
		"sp_attack": int64(1), "sp_defense": int64(1), "speed": int64(1),
	})
}

func fillBulbasaur(t *testing.T, p *Panel) {
	t.Helper()
	fields := []struct {
		name string
		raw  any
	}{
		{"name", "Bulbasaur"}, {"type", "Grass"}, {"hp", "45"}, {"attack", "49"},
		{"defense", "49"}, {"sp_attack", "65"}, {"sp_defense", "65"}, {"speed", "45"},
	}
	for _, f := range fields {
		require.NoError(t, p.SetField(f.name, f.raw))
	}
}

func TestInitializeEmptyCollection(t *testing.T) {
	api := newFakeAPI()
	p := New(catalog.Creatures, api)
	assert.False(t, p.Loaded())

	require.NoError(t, p.Initialize(context.Background()))
	assert.Empty(t, p.Collection())
	assert.True(t, p.Loaded())
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, []string{"list"}, api.Calls())

	require.NoError(t, p.Initialize(context.Background()))
	assert.Equal(t, []string{"list"}, api.Calls(), "initialize runs once")
	assert.Equal(t, Idle, p.State())
}

func TestSubmitCreate(t *testing.T) {
	api := newFakeAPI()
	p := New(catalog.Creatures, api)
	require.NoError(t, p.Initialize(context.Background()))

	fillBulbasaur(t, p)
	require.NoError(t, p.Submit(context.Background()))

	assert.Equal(t, []string{"list", "create", "list"}, api.Calls())
	rows := p.Collection()
	require.Len(t, rows, 1)
	assert.Equal(t, "Bulbasaur", rows[0].Get("name"))
	assert.Equal(t, int64(65), rows[0].Get("sp_attack"))
	assert.True(t, rows[0].HasID(), "server assigned an id")

	assert.True(t, p.Draft().Record().Equal(catalog.Creatures.Schema.Empty()))
	assert.False(t, p.Draft().Updating())
	assert.Equal(t, Idle, p.State())
}

func TestSubmitUpdateRoutesByID(t *testing.T) {
	api := newFakeAPI(creature("7", "Squirtle", 44))
	p := New(catalog.Creatures, api)
	require.NoError(t, p.Initialize(context.Background()))

	require.NoError(t, p.SelectForEdit(p.Collection()[0]))
	require.NoError(t, p.SetField("hp", "50"))
	require.NoError(t, p.Submit(context.Background()))

	assert.Equal(t, []string{"list", "update 7", "list"}, api.Calls())
	assert.Equal(t, int64(50), p.Collection()[0].Get("hp"))
	assert.False(t, p.Draft().Updating())
}

func TestRemove(t *testing.T) {
	api := newFakeAPI(creature("1", "Bulbasaur", 45), creature("3", "Venusaur", 80))
	p := New(catalog.Creatures, api)
	require.NoError(t, p.Initialize(context.Background()))

	require.NoError(t, p.Remove(context.Background(), "3"))

	assert.Equal(t, []string{"list", "delete 3", "list"}, api.Calls())
	_, found := record.Find(p.Collection(), "3")
	assert.False(t, found)
	assert.Len(t, p.Collection(), 1)
}

func TestRemoveWithoutID(t *testing.T) {
	api := newFakeAPI()
	p := New(catalog.Creatures, api)

	assert.ErrorIs(t, p.Remove(context.Background(), ""), ErrMissingID)
	assert.Empty(t, api.Calls())
	assert.Equal(t, Idle, p.State())
}

func TestSubmitFailureKeepsDraftAndCollection(t *testing.T) {
	api := newFakeAPI(creature("1", "Bulbasaur", 45))
	rep := &reports{}
	p := New(catalog.Creatures, api, WithReporter(rep))
	require.NoError(t, p.Initialize(context.Background()))
	before := p.Collection()

	fillBulbasaur(t, p)
	require.NoError(t, p.SetField("name", "Ivysaur"))
	draft := p.Draft()

	api.fail["create"] = cerrors.Rejected("create pokemon", 500, "db down")
	err := p.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, cerrors.IsRejection(err))

	assert.True(t, p.Draft().Record().Equal(draft.Record()), "unsaved edits kept")
	assert.Equal(t, before, p.Collection())
	assert.Equal(t, []string{"list", "create"}, api.Calls(), "no reload after failure")
	assert.Equal(t, []string{"creatures/create"}, rep.all())
	assert.Equal(t, Idle, p.State())
}

func TestRemoveFailureKeepsCollection(t *testing.T) {
	api := newFakeAPI(creature("3", "Venusaur", 80))
	rep := &reports{}
	p := New(catalog.Creatures, api, WithReporter(rep))
	require.NoError(t, p.Initialize(context.Background()))

	api.fail["delete"] = cerrors.Wrap(cerrors.Transport, "delete pokemon", errors.New("connection refused"))
	assert.Error(t, p.Remove(context.Background(), "3"))
	assert.Len(t, p.Collection(), 1)
	assert.Equal(t, []string{"creatures/delete"}, rep.all())
}

func TestReloadFailureAfterMutation(t *testing.T) {
	api := newFakeAPI(creature("1", "Bulbasaur", 45))
	rep := &reports{}
	p := New(catalog.Creatures, api, WithReporter(rep))
	require.NoError(t, p.Initialize(context.Background()))

	fillBulbasaur(t, p)
	api.fail["list"] = cerrors.Wrap(cerrors.Transport, "list pokemon", errors.New("timeout"))

	require.NoError(t, p.Submit(context.Background()), "the mutation itself succeeded")
	assert.False(t, p.Draft().Updating())
	assert.True(t, p.Draft().Record().Equal(catalog.Creatures.Schema.Empty()))
	assert.Len(t, p.Collection(), 1, "last good snapshot kept")
	assert.Error(t, p.RefreshErr())
	assert.Equal(t, []string{"creatures/refresh"}, rep.all())
	assert.Equal(t, Idle, p.State())
}

func TestSelectForEditAndCancel(t *testing.T) {
	p := New(catalog.Creatures, newFakeAPI())
	row := creature("7", "Eevee", 55)

	require.NoError(t, p.SelectForEdit(row))
	assert.True(t, p.Draft().Record().Equal(row))
	assert.True(t, p.Draft().Updating())

	assert.Error(t, p.SelectForEdit(creature("", "Ghost", 1)))
	assert.True(t, p.Draft().Record().Equal(row), "rejected selection leaves draft")

	p.CancelEdit()
	once := p.Draft()
	p.CancelEdit()
	assert.True(t, once.Record().Equal(p.Draft().Record()))
	assert.True(t, once.Record().Equal(catalog.Creatures.Schema.Empty()))
	assert.False(t, p.Draft().Updating())
}

func TestObserverTransitions(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	observe := func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	}
	api := newFakeAPI()
	p := New(catalog.Creatures, api, WithObserver(observe), WithReporter(&reports{}))

	require.NoError(t, p.Initialize(context.Background()))
	fillBulbasaur(t, p)
	require.NoError(t, p.Submit(context.Background()))

	api.fail["create"] = errors.New("nope")
	require.Error(t, p.Submit(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{
		Refreshing, Idle, // mount
		Submitting, Refreshing, Idle, // successful create
		Submitting, Idle, // failed create skips Refreshing
	}, states)
}

func TestSubmitWhileBusy(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	api.started = make(chan struct{}, 1)
	p := New(catalog.Creatures, api)
	fillBulbasaur(t, p)

	done := make(chan error, 1)
	go func() { done <- p.Submit(context.Background()) }()
	<-api.started

	assert.Equal(t, Submitting, p.State())
	assert.ErrorIs(t, p.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, p.Remove(context.Background(), "1"), ErrBusy)
	assert.ErrorIs(t, p.Refresh(context.Background()), ErrBusy)

	close(api.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"create", "list"}, api.Calls())
	assert.Equal(t, Idle, p.State())
}

func TestDraftLockedWhileSubmitting(t *testing.T) {
	api := newFakeAPI(creature("7", "Eevee", 55))
	api.block = make(chan struct{})
	api.started = make(chan struct{}, 1)
	p := New(catalog.Creatures, api)
	fillBulbasaur(t, p)

	done := make(chan error, 1)
	go func() { done <- p.Submit(context.Background()) }()
	<-api.started

	assert.ErrorIs(t, p.SetField("name", "Ivysaur"), ErrBusy)
	assert.ErrorIs(t, p.SelectForEdit(creature("7", "Eevee", 55)), ErrBusy)
	p.CancelEdit()
	assert.Equal(t, "Bulbasaur", p.Draft().Record().Get("name"), "draft is frozen in flight")

	close(api.block)
	require.NoError(t, <-done)
	assert.True(t, p.Draft().Record().Equal(catalog.Creatures.Schema.Empty()))

	require.NoError(t, p.SetField("name", "Ivysaur"), "editable again once idle")
	assert.Equal(t, "Ivysaur", p.Draft().Record().Get("name"))
}

func TestCloseDiscardsInFlight(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	api.started = make(chan struct{}, 1)
	rep := &reports{}
	p := New(catalog.Creatures, api, WithReporter(rep))
	fillBulbasaur(t, p)
	draft := p.Draft()

	done := make(chan error, 1)
	go func() { done <- p.Submit(context.Background()) }()
	<-api.started

	p.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not return after close")
	}

	assert.Empty(t, rep.all(), "late failures are not reported")
	assert.Equal(t, []string{"create"}, api.Calls(), "no reload after close")
	assert.True(t, p.Draft().Record().Equal(draft.Record()))
	assert.ErrorIs(t, p.Submit(context.Background()), ErrClosed)
	assert.ErrorIs(t, p.SetField("name", "x"), ErrClosed)
	p.Close()
}
