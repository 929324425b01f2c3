// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import "runtime/debug"

// Version is set at build time with -ldflags "-X menagerie/cli/cmd.Version=...".
var Version = "0.0.0-dev"

// versionLine is the --version output. The VCS revision is appended when the
// binary was built from a checkout.
func versionLine() string {
	line := "menagerie " + Version
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				line += " (" + s.Value[:7] + ")"
			}
		}
	}
	return line
}
