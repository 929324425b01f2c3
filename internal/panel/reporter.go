// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package panel

import (
	"github.com/pterm/pterm"

	cerrors "menagerie/cli/internal/errors"
	"menagerie/cli/internal/logging"
)

// Reporter receives failures of remote operations. Reporting never changes
// panel state; it is the panel's observability sink.
type Reporter interface {
	Report(resource, op string, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(resource, op string, err error)

func (f ReporterFunc) Report(resource, op string, err error) { f(resource, op, err) }

// LogReporter writes failures to a structured logger.
type LogReporter struct {
	Logger *pterm.Logger
}

func (r LogReporter) Report(resource, op string, err error) {
	if r.Logger == nil || err == nil {
		return
	}
	args := []any{
		"resource", resource,
		"op", op,
		"kind", string(cerrors.KindOf(err)),
		"error", logging.Mask(err.Error()),
	}
	if status := cerrors.StatusOf(err); status != 0 {
		args = append(args, "status", status)
	}
	r.Logger.Error("operation failed", r.Logger.Args(args...))
}

// Reporters fans a failure out to several reporters in order.
type Reporters []Reporter

func (rs Reporters) Report(resource, op string, err error) {
	for _, r := range rs {
		r.Report(resource, op, err)
	}
}
