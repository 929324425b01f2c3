// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package panel implements the editor/list synchronization shared by every
// resource view: one Draft being authored, one Collection snapshot, and the
// controller that keeps them consistent across create, update and delete.
//
// Operations are serialized per panel. A mutation's follow-up reload is only
// issued after the mutation's response has arrived, so the reloaded snapshot
// always reflects it. While one operation is in flight further submissions and
// draft edits are rejected with ErrBusy. Closing a panel cancels in-flight requests and any
// result that arrives afterwards is discarded.
package panel

import (
	"context"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"menagerie/cli/internal/backend"
	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/collection"
	"menagerie/cli/internal/logging"
	"menagerie/cli/internal/record"
)

// Panel is the sync controller for one resource kind.
type Panel struct {
	resource catalog.Resource
	api      backend.API
	cache    *collection.Cache
	reporter Reporter
	observer func(State)
	logger   *pterm.Logger

	initOnce sync.Once
	initErr  error

	// ctx lives as long as the panel is mounted
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	draft  record.Draft
	state  State
	closed bool
}

// Option configures a Panel.
type Option func(*Panel)

// WithReporter sets where remote failures are reported.
func WithReporter(r Reporter) Option {
	return func(p *Panel) { p.reporter = r }
}

// WithObserver registers a callback invoked on every state change.
// It runs with the panel lock held and must not call back into the panel.
func WithObserver(fn func(State)) Option {
	return func(p *Panel) { p.observer = fn }
}

// WithLogger sets the structured logger used for debug traces and,
// unless WithReporter is given, for failure reports.
func WithLogger(l *pterm.Logger) Option {
	return func(p *Panel) { p.logger = l }
}

// New mounts a panel for res backed by api. Nothing is fetched until Initialize.
func New(res catalog.Resource, api backend.API, opts ...Option) *Panel {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Panel{
		resource: res,
		api:      api,
		cache:    collection.New(api),
		ctx:      ctx,
		cancel:   cancel,
		draft:    record.NewDraft(res.Schema),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = LogReporter{Logger: p.logger}
	}
	return p
}

// Resource returns the resource kind this panel manages.
func (p *Panel) Resource() catalog.Resource { return p.resource }

// Draft returns the current draft.
func (p *Panel) Draft() record.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// State returns the current operation state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Collection returns the last fetched snapshot.
func (p *Panel) Collection() []record.Record { return p.cache.Snapshot() }

// Len returns the number of records in the snapshot.
func (p *Panel) Len() int { return p.cache.Len() }

// Loaded reports whether the collection has been fetched successfully at least once.
func (p *Panel) Loaded() bool { return p.cache.Loaded() }

// FetchedAt returns when the collection was last loaded successfully.
func (p *Panel) FetchedAt() time.Time { return p.cache.FetchedAt() }

// RefreshErr returns the error of the last collection reload, if it failed.
func (p *Panel) RefreshErr() error { return p.cache.Err() }

// Initialize performs the mount-time collection load. Only the first call
// does anything; later calls return the first call's result.
func (p *Panel) Initialize(ctx context.Context) error {
	p.initOnce.Do(func() {
		p.initErr = p.Refresh(ctx)
	})
	return p.initErr
}

// Refresh reloads the collection outside of a mutation.
func (p *Panel) Refresh(ctx context.Context) error {
	if _, err := p.begin(Refreshing); err != nil {
		return err
	}
	opCtx, done := p.opContext(ctx)
	defer done()

	err := p.reload(opCtx)
	if p.finish() {
		return ErrClosed
	}
	return err
}

// SetField edits one field of the draft. The draft is locked with ErrBusy
// while a mutation is being sent.
func (p *Panel) SetField(name string, raw any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editable(); err != nil {
		return err
	}
	next, err := p.draft.SetField(name, raw)
	if err != nil {
		return err
	}
	p.draft = next
	return nil
}

// SelectForEdit copies a persisted record into the draft, switching to update mode.
func (p *Panel) SelectForEdit(r record.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editable(); err != nil {
		return err
	}
	next, err := p.draft.Load(r)
	if err != nil {
		return err
	}
	p.draft = next
	p.logger.Debug("editing", p.logger.Args("resource", p.resource.Key, "id", r.ID()))
	return nil
}

// CancelEdit discards the draft and returns to create mode. It is a no-op
// while a mutation is being sent.
func (p *Panel) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Submitting {
		return
	}
	p.draft = p.draft.Reset()
}

// editable must be called with p.mu held.
func (p *Panel) editable() error {
	if p.closed {
		return ErrClosed
	}
	if p.state == Submitting {
		return ErrBusy
	}
	return nil
}

// Submit sends the draft: an update addressed by the draft's id in update
// mode, a creation otherwise. On success the collection is reloaded and the
// draft reset. On failure draft and collection are left exactly as they were.
func (p *Panel) Submit(ctx context.Context) error {
	draft, err := p.begin(Submitting)
	if err != nil {
		return err
	}
	opCtx, done := p.opContext(ctx)
	defer done()

	rec := draft.Record()
	op := "create"
	if draft.Updating() {
		op = "update"
		err = p.api.Update(opCtx, rec.ID(), rec)
	} else {
		err = p.api.Create(opCtx, rec)
	}
	return p.complete(opCtx, op, err, func() { p.draft = p.draft.Reset() })
}

// Remove deletes the record addressed by id and reloads the collection.
// Whether the record is gone afterwards is decided by the next reload only.
func (p *Panel) Remove(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if _, err := p.begin(Submitting); err != nil {
		return err
	}
	opCtx, done := p.opContext(ctx)
	defer done()

	err := p.api.Delete(opCtx, id)
	return p.complete(opCtx, "delete", err, nil)
}

// Close unmounts the panel. In-flight requests are cancelled and their
// results discarded. Close is idempotent.
func (p *Panel) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
}

// complete finishes a mutation: on failure it returns to Idle and reports;
// on success it moves to Refreshing, applies onSuccess, reloads, then returns to Idle.
func (p *Panel) complete(ctx context.Context, op string, opErr error, onSuccess func()) error {
	if opErr != nil {
		if p.finish() {
			return ErrClosed
		}
		p.reporter.Report(p.resource.Key, op, opErr)
		return opErr
	}

	p.mu.Lock()
	if p.closed {
		p.setState(Idle)
		p.mu.Unlock()
		return ErrClosed
	}
	p.setState(Refreshing)
	if onSuccess != nil {
		onSuccess()
	}
	p.mu.Unlock()

	// A failed reload ends the cycle too; it has already been reported.
	_ = p.reload(ctx)
	if p.finish() {
		return ErrClosed
	}
	return nil
}

// reload refreshes the cache, reporting failures unless the panel was closed.
func (p *Panel) reload(ctx context.Context) error {
	_, err := p.cache.Refresh(ctx)
	if err != nil && p.ctx.Err() == nil {
		p.reporter.Report(p.resource.Key, "refresh", err)
	}
	return err
}

// begin moves Idle -> to and returns the draft as of that moment.
func (p *Panel) begin(to State) (record.Draft, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return record.Draft{}, ErrClosed
	}
	if p.state != Idle {
		return record.Draft{}, ErrBusy
	}
	p.setState(to)
	return p.draft, nil
}

// finish returns to Idle and reports whether the panel was closed meanwhile.
func (p *Panel) finish() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setState(Idle)
	return p.closed
}

// setState must be called with p.mu held.
func (p *Panel) setState(s State) {
	if p.state == s {
		return
	}
	p.logger.Trace("state", p.logger.Args("resource", p.resource.Key, "from", p.state.String(), "to", s.String()))
	p.state = s
	if p.observer != nil {
		p.observer(s)
	}
}

// opContext derives a request context that is also cancelled when the panel closes.
func (p *Panel) opContext(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
