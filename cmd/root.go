// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of menagerie.
// It implements the interactive console, one-shot record verbs per resource
// kind, the reference collection service and store connection management
// using the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"menagerie/cli/internal/backend"
	"menagerie/cli/internal/catalog"
	"menagerie/cli/internal/config"
	"menagerie/cli/internal/logging"
)

var (
	showVersion bool
	configPath  string
	verbose     bool

	// cfg and logger are populated by the root command's pre-run.
	cfg    = config.Default()
	logger = logging.Nop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "menagerie",
	Short: "Admin console for creature and specimen collections",
	Long: `menagerie lists, creates, edits and deletes records held by REST collection
services. Run "menagerie console" for the interactive panel or
"menagerie serve" to start a local collection service.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine())
			return nil
		}
		return cmd.Help()
	},
}

// setup loads .env, the config file and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if _, err := logging.ParseLevel(level); err != nil {
		pterm.Warning.Printfln("%v, using info", err)
	}
	logger = logging.New(level, cmd.ErrOrStderr())
	logger.Debug("configuration loaded", logger.Args("config", configPath, "timeout", cfg.RequestTimeout().String()))
	return nil
}

// Execute runs the CLI application. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("error", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/menagerie/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// resourceFor resolves a resource key given on the command line.
func resourceFor(key string) (catalog.Resource, error) {
	return catalog.Lookup(key)
}

// apiFor returns the collection client for res using the loaded config.
func apiFor(res catalog.Resource) backend.API {
	return backend.New(cfg.BaseURL(res.Key), res, cfg.RequestTimeout())
}

// out returns where command output goes; tests replace it.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
