// Package console runs the interactive administration loop: one mounted panel
// at a time, a menu of panel operations, and a switcher between resource kinds.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/logging"
	"menagerie/cli/internal/panel"
	"menagerie/cli/internal/record"
	"menagerie/cli/internal/view"
)

// Menu entries. Entries with a verb take the resource or record as argument.
const (
	actList     = "Show list"
	actNew      = "New %s"
	actContinue = "Continue editing #%s"
	actEdit     = "Edit..."
	actCancel   = "Cancel edit"
	actDelete   = "Delete..."
	actRefresh  = "Refresh"
	actSwitch   = "Switch to %s"
	actQuit     = "Quit"
	actBack     = "Back"
)

// Mounter creates a panel for a resource kind with the given options.
type Mounter func(res catalog.Resource, opts ...panel.Option) *panel.Panel

// Console is the interactive loop.
type Console struct {
	out       io.Writer
	prompt    Prompter
	mount     Mounter
	resources []catalog.Resource
	logger    *pterm.Logger
	animate   bool

	panel    *panel.Panel
	renderer *view.Renderer
	spin     *spinner
	// lastOK is whether the last run op succeeded
	lastOK bool
}

// Option configures a Console.
type Option func(*Console)

// WithSpinner enables the animated status line; only useful on a terminal.
func WithSpinner(on bool) Option {
	return func(c *Console) { c.animate = on }
}

// WithLogger sets the logger for debug traces.
func WithLogger(l *pterm.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// New creates a console. resources lists the kinds offered by the switcher.
func New(out io.Writer, p Prompter, mount Mounter, resources []catalog.Resource, opts ...Option) *Console {
	c := &Console{
		out:       out,
		prompt:    p,
		mount:     mount,
		resources: resources,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the mounted panel, or nil before Run.
func (c *Console) Current() *panel.Panel { return c.panel }

// Run mounts start and loops until the user quits or ctx is done.
// The mounted panel is always closed on return.
func (c *Console) Run(ctx context.Context, start catalog.Resource) error {
	defer c.unmount()
	if err := c.switchTo(ctx, start); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := c.step(ctx)
		if err != nil || quit {
			return err
		}
	}
}

// switchTo unmounts the current panel and mounts res in its place.
func (c *Console) switchTo(ctx context.Context, res catalog.Resource) error {
	c.unmount()
	c.logger.Debug("mount", c.logger.Args("resource", res.Key))
	c.panel = c.mount(res, panel.WithObserver(c.observe))
	c.renderer = view.NewRenderer(c.out, res)
	c.renderer.ShowHeader()
	if err := c.run(ctx, "Loading "+strings.ToLower(res.Title)+"s", c.panel.Initialize); err != nil {
		return err
	}
	return c.showList()
}

func (c *Console) unmount() {
	if c.panel == nil {
		return
	}
	c.logger.Debug("unmount", c.logger.Args("resource", c.panel.Resource().Key))
	c.panel.Close()
	c.panel = nil
}

// observe mirrors panel state into the spinner text. It runs under the
// panel lock, so it only touches the spinner.
func (c *Console) observe(s panel.State) {
	if c.spin == nil {
		return
	}
	switch s {
	case panel.Submitting:
		c.spin.SetText("Saving")
	case panel.Refreshing:
		c.spin.SetText("Refreshing list")
	}
}

// step shows the menu once and performs the chosen action.
func (c *Console) step(ctx context.Context) (quit bool, err error) {
	res := c.panel.Resource()
	draft := c.panel.Draft()

	var options []string
	actions := map[string]func(context.Context) error{}
	add := func(label string, fn func(context.Context) error) {
		options = append(options, label)
		actions[label] = fn
	}

	add(actList, func(context.Context) error { return c.showList() })
	if draft.Updating() {
		add(fmt.Sprintf(actContinue, draft.Record().ID()), c.editForm)
		add(actCancel, func(context.Context) error {
			c.panel.CancelEdit()
			pterm.Fprintln(c.out, "Edit cancelled.")
			return nil
		})
	} else {
		add(fmt.Sprintf(actNew, strings.ToLower(res.Title)), c.editForm)
	}
	if len(c.panel.Collection()) > 0 {
		add(actEdit, c.chooseEdit)
		add(actDelete, c.chooseDelete)
	}
	add(actRefresh, func(ctx context.Context) error {
		if err := c.run(ctx, "Refreshing list", c.panel.Refresh); err != nil {
			return err
		}
		return c.showList()
	})
	for _, other := range c.resources {
		if other.Key == res.Key {
			continue
		}
		other := other
		add(fmt.Sprintf(actSwitch, other.Title+"s"), func(ctx context.Context) error {
			return c.switchTo(ctx, other)
		})
	}
	options = append(options, actQuit)

	choice, err := c.prompt.Select(res.Title+"s", options)
	if err != nil {
		return true, err
	}
	if choice == actQuit {
		return true, nil
	}
	fn, ok := actions[choice]
	if !ok {
		return false, fmt.Errorf("unknown menu entry %q", choice)
	}
	return false, fn(ctx)
}

// editForm walks every field of the draft, then offers to submit it.
func (c *Console) editForm(ctx context.Context) error {
	for _, f := range c.panel.Resource().Schema.Fields {
		if err := c.promptField(f); err != nil {
			return err
		}
	}
	draft := c.panel.Draft()
	c.renderer.Draft(draft)

	ok, err := c.prompt.Confirm("Save "+view.FormTitle(c.panel.Resource(), draft)+"?", true)
	if err != nil {
		return err
	}
	if !ok {
		pterm.Fprintln(c.out, "Draft kept. Choose \""+actCancel+"\" to discard it.")
		return nil
	}
	if missing := draft.MissingRequired(); len(missing) > 0 {
		pterm.Fprintln(c.out, pterm.NewStyle(pterm.FgYellow).Sprint("Fill in the required fields: "+strings.Join(labels(draft.Schema(), missing), ", ")))
		return nil
	}
	return c.mutate(ctx, "Saving", c.panel.Submit, "Saved.")
}

// promptField asks for one field until the value is accepted.
func (c *Console) promptField(f record.Field) error {
	for {
		current := c.panel.Draft().Record().Get(f.Name)
		var raw any
		if f.Kind == record.Boolean {
			b, _ := current.(bool)
			answer, err := c.prompt.Confirm(f.Label, b)
			if err != nil {
				return err
			}
			raw = answer
		} else {
			answer, err := c.prompt.Text(f.Label, view.FormatValue(f, current))
			if err != nil {
				return err
			}
			raw = strings.TrimSpace(answer)
		}
		err := c.panel.SetField(f.Name, raw)
		if err == nil {
			return nil
		}
		if errors.Is(err, panel.ErrClosed) {
			return err
		}
		pterm.Fprintln(c.out, pterm.NewStyle(pterm.FgRed).Sprint("✗ "+logging.PresentError(f.Label, err)))
	}
}

func (c *Console) chooseEdit(context.Context) error {
	r, ok, err := c.chooseRecord("Edit which " + strings.ToLower(c.panel.Resource().Title) + "?")
	if err != nil || !ok {
		return err
	}
	if err := c.panel.SelectForEdit(r); err != nil {
		return err
	}
	c.renderer.Draft(c.panel.Draft())
	pterm.Fprintln(c.out, "Choose \""+fmt.Sprintf(actContinue, r.ID())+"\" to change it.")
	return nil
}

func (c *Console) chooseDelete(ctx context.Context) error {
	r, ok, err := c.chooseRecord("Delete which " + strings.ToLower(c.panel.Resource().Title) + "?")
	if err != nil || !ok {
		return err
	}
	sure, err := c.prompt.Confirm("Delete "+view.RowLabel(c.panel.Resource().Schema, r)+"?", false)
	if err != nil || !sure {
		return err
	}
	return c.mutate(ctx, "Deleting", func(ctx context.Context) error {
		return c.panel.Remove(ctx, r.ID())
	}, "Deleted.")
}

// chooseRecord offers the current snapshot; ok is false when the user backs out.
func (c *Console) chooseRecord(label string) (record.Record, bool, error) {
	rows := c.panel.Collection()
	schema := c.panel.Resource().Schema
	options := make([]string, 0, len(rows)+1)
	for i, r := range rows {
		options = append(options, strconv.Itoa(i+1)+". "+view.RowLabel(schema, r))
	}
	options = append(options, actBack)

	choice, err := c.prompt.Select(label, options)
	if err != nil || choice == actBack {
		return record.Record{}, false, err
	}
	i := slices.Index(options, choice)
	if i < 0 || i >= len(rows) {
		return record.Record{}, false, fmt.Errorf("unknown record %q", choice)
	}
	return rows[i], true, nil
}

// mutate runs a remote operation and shows the refreshed list on success.
func (c *Console) mutate(ctx context.Context, label string, op func(context.Context) error, done string) error {
	if err := c.run(ctx, label, op); err != nil {
		return err
	}
	if c.lastOK {
		pterm.Fprintln(c.out, pterm.NewStyle(pterm.FgGreen).Sprint("✓ "+done))
		return c.showList()
	}
	return nil
}

// run executes op behind the spinner. Remote failures have already been
// reported by the panel and do not end the loop; only cancellation does.
func (c *Console) run(ctx context.Context, label string, op func(context.Context) error) error {
	if c.animate {
		c.spin = startSpinner(c.out, label, true)
	}
	err := op(ctx)
	if c.spin != nil {
		c.spin.Stop()
		c.spin = nil
	}
	c.lastOK = err == nil
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, panel.ErrBusy):
		pterm.Fprintln(c.out, "Another operation is still running.")
	case errors.Is(err, panel.ErrClosed):
		return err
	}
	c.logger.Debug("operation failed", c.logger.Args("op", label, "error", logging.Mask(err.Error())))
	return nil
}

func (c *Console) showList() error {
	if err := c.renderer.Collection(c.panel.Collection()); err != nil {
		return err
	}
	c.renderer.Status(c.panel)
	return nil
}

func labels(s record.Schema, names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if f, ok := s.Lookup(n); ok {
			out = append(out, f.Label)
		}
	}
	return out
}
