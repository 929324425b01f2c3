// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/console"
	"menagerie/cli/internal/httperrors"
	"menagerie/cli/internal/panel"
	"menagerie/cli/internal/terminal"
)

var consoleResource string

// consoleCmd runs the interactive list/editor panel.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive collection console",
	Long: `The console shows one resource panel at a time: the collection list and an
editor bound to a single draft record. Saving or deleting reloads the list.
Switching panels discards the previous panel and any request it still has in flight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := resourceFor(consoleResource)
		if err != nil {
			return err
		}
		w := out(cmd)
		interactive := terminal.IsTerminal(os.Stdout)

		guidance := httperrors.Reporter{Out: w, Hosts: map[string]string{}}
		for _, r := range catalog.All() {
			guidance.Hosts[r.Key] = httperrors.ExtractHostFromURL(cfg.BaseURL(r.Key))
		}
		reporters := panel.Reporters{panel.LogReporter{Logger: logger}, guidance}

		mount := func(res catalog.Resource, opts ...panel.Option) *panel.Panel {
			opts = append([]panel.Option{panel.WithLogger(logger), panel.WithReporter(reporters)}, opts...)
			return panel.New(res, apiFor(res), opts...)
		}

		c := console.New(w, console.PtermPrompter{Compact: interactive}, mount, catalog.All(),
			console.WithSpinner(interactive),
			console.WithLogger(logger),
		)
		if err := c.Run(cmd.Context(), start); err != nil && cmd.Context().Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVarP(&consoleResource, "resource", "r", catalog.Creatures.Key, "Panel to open first (creatures|specimens)")
}
