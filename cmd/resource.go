// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/httperrors"
	"menagerie/cli/internal/panel"
	"menagerie/cli/internal/record"
	"menagerie/cli/internal/view"
)

// recordFlags are shared by the per-resource verbs.
type recordFlags struct {
	sets   []string
	id     string
	asJSON bool
}

// newResourceCmd builds "menagerie <resource> list|create|update|delete".
// Every verb drives a panel so the one-shot commands follow the same
// submit-then-reload cycle as the console.
func newResourceCmd(res catalog.Resource) *cobra.Command {
	plural := strings.ToLower(res.Title) + "s"
	parent := &cobra.Command{
		Use:   res.Key,
		Short: fmt.Sprintf("List and edit %s", plural),
	}

	var f recordFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List all " + plural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(cmd, res, func(ctx context.Context, p *panel.Panel) error {
				if err := p.RefreshErr(); err != nil {
					return err
				}
				return printCollection(cmd, p, f.asJSON)
			})
		},
	}
	list.Flags().BoolVar(&f.asJSON, "json", false, "Print the collection as JSON")

	create := &cobra.Command{
		Use:     "create",
		Short:   "Create a " + strings.ToLower(res.Title),
		Example: fmt.Sprintf("  menagerie %s create %s", res.Key, exampleSets(res.Schema)),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(cmd, res, func(ctx context.Context, p *panel.Panel) error {
				return submit(cmd, p, f.sets, "Created.")
			})
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Replace a " + strings.ToLower(res.Title) + "; unset fields keep their current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(cmd, res, func(ctx context.Context, p *panel.Panel) error {
				if err := p.RefreshErr(); err != nil {
					return err
				}
				current, ok := record.Find(p.Collection(), f.id)
				if !ok {
					return fmt.Errorf("%s #%s not found", strings.ToLower(res.Title), f.id)
				}
				if err := p.SelectForEdit(current); err != nil {
					return err
				}
				return submit(cmd, p, f.sets, "Updated.")
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete a " + strings.ToLower(res.Title),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(cmd, res, func(ctx context.Context, p *panel.Panel) error {
				if err := p.Remove(ctx, f.id); err != nil {
					return err
				}
				pterm.Fprintln(out(cmd), "Deleted.")
				return printCollection(cmd, p, false)
			})
		},
	}

	for _, c := range []*cobra.Command{create, update} {
		c.Flags().StringArrayVar(&f.sets, "set", nil, "Field value as name=value (repeatable)")
	}
	for _, c := range []*cobra.Command{update, del} {
		c.Flags().StringVar(&f.id, "id", "", "Record id")
		_ = c.MarkFlagRequired("id")
	}

	parent.AddCommand(list, create, update, del)
	return parent
}

// withPanel mounts a panel for res, loads the collection and runs fn.
func withPanel(cmd *cobra.Command, res catalog.Resource, fn func(context.Context, *panel.Panel) error) error {
	guidance := httperrors.Reporter{
		Out:   cmd.ErrOrStderr(),
		Hosts: map[string]string{res.Key: httperrors.ExtractHostFromURL(cfg.BaseURL(res.Key))},
	}
	p := panel.New(res, apiFor(res),
		panel.WithLogger(logger),
		panel.WithReporter(panel.Reporters{panel.LogReporter{Logger: logger}, guidance}),
	)
	defer p.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := p.Initialize(ctx); err != nil && !errors.Is(err, panel.ErrClosed) {
		logger.Debug("initial load failed", logger.Args("resource", res.Key, "error", err))
	}
	return fn(ctx, p)
}

func submit(cmd *cobra.Command, p *panel.Panel, sets []string, done string) error {
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("--set %q: expected name=value", s)
		}
		if err := p.SetField(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	if missing := p.Draft().MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if err := p.Submit(cmd.Context()); err != nil {
		return err
	}
	pterm.Fprintln(out(cmd), done)
	return printCollection(cmd, p, false)
}

func printCollection(cmd *cobra.Command, p *panel.Panel, asJSON bool) error {
	if asJSON {
		b, err := p.Resource().Schema.MarshalList(p.Collection())
		if err != nil {
			return err
		}
		pterm.Fprintln(out(cmd), string(b))
		return nil
	}
	r := view.NewRenderer(out(cmd), p.Resource())
	if err := r.Collection(p.Collection()); err != nil {
		return err
	}
	r.Status(p)
	return nil
}

func exampleSets(s record.Schema) string {
	parts := make([]string, 0, 2)
	for _, f := range s.Fields[:min(2, len(s.Fields))] {
		parts = append(parts, fmt.Sprintf("--set %s=...", f.Name))
	}
	return strings.Join(parts, " ")
}

func init() {
	for _, res := range catalog.All() {
		rootCmd.AddCommand(newResourceCmd(res))
	}
}
