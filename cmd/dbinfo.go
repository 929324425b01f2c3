// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"net/url"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"menagerie/cli/internal/dsn"
	"menagerie/cli/internal/logging"
)

var sourceText = map[string]string{
	"env":      "Using DSN from MENAGERIE_STORE_DSN environment variable",
	"config":   "Using DSN from config file",
	"keychain": "Using DSN from OS keychain",
	"default":  "No store configured; serve uses an in-memory store",
}

// dbinfoCmd shows the store DSN "menagerie serve" would use, password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the current collection store connection string",
	Long: `The dbinfo command displays the store DSN that "menagerie serve" would use,
with the password replaced by ***. This helps verify which database is in use
without exposing credentials.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := out(cmd)
		raw, source := resolveStoreDSN("")
		pterm.Fprintln(w, sourceText[source])
		pterm.Fprintln(w)

		title := "Store Connection"
		if info, err := dsn.ParseInfo(raw); err == nil {
			title += " (" + string(info.Type) + ")"
		}
		pterm.DefaultBox.
			WithWriter(w).
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title)).
			WithTopPadding(1).
			WithBottomPadding(1).
			WithLeftPadding(1).
			WithRightPadding(1).
			Println(maskPassword(raw))
		pterm.Fprintln(w)
		pterm.Fprintln(w, "To update this connection, run: menagerie connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}

// maskPassword replaces the password of a URL-style DSN with ***, keeping the
// user name visible. Anything that does not parse is masked wholesale.
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return logging.Mask(raw)
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	// url.UserPassword would escape the asterisks
	u.User = url.User(u.User.Username())
	return strings.Replace(u.String(), "@", ":***@", 1)
}
