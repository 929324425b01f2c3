// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns collection service failures into user guidance.
package httperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	cerrors "menagerie/cli/internal/errors"
	"menagerie/cli/internal/logging"
)

// Category classifies a failure for presentation.
type Category string

const (
	Timeout  Category = "timeout"
	DNS      Category = "dns"
	Refused  Category = "refused"
	TLS      Category = "tls"
	Server   Category = "server"
	Rejected Category = "rejected"
	Invalid  Category = "invalid"
	Generic  Category = "generic"
)

// Guidance is what the user is shown for one failure.
type Guidance struct {
	Category Category
	Title    string
	Hints    []string
	Details  string
}

// Classify detects common failure types.
func Classify(err error) Category {
	switch {
	case err == nil:
		return ""
	case cerrors.KindOf(err) == cerrors.InvalidRecord:
		return Invalid
	case cerrors.IsRejection(err):
		if cerrors.StatusOf(err) >= 500 {
			return Server
		}
		return Rejected
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return Refused
	case isSSLError(err):
		return TLS
	}
	return Generic
}

// Describe builds the guidance for err. action reads like "creating creatures"
// and host names the service that was contacted.
func Describe(err error, action, host string) Guidance {
	if host == "" {
		host = "the collection service"
	}
	g := Guidance{Category: Classify(err)}
	switch g.Category {
	case Timeout:
		g.Title = fmt.Sprintf("⏱️  Connection timeout while %s", action)
		g.Hints = []string{
			"The service took too long to respond",
			"Check that " + host + " is not overloaded",
			"Raise \"timeout\" in config.json if responses are legitimately slow",
		}
	case DNS:
		g.Title = fmt.Sprintf("🌐 Cannot resolve %s while %s", host, action)
		g.Hints = []string{
			"Check the base URL in config.json or the MENAGERIE_*_URL variables",
			"Check your DNS settings",
		}
	case Refused:
		g.Title = fmt.Sprintf("🚫 Connection refused while %s", action)
		g.Hints = []string{
			"Is the service running? Start one with: menagerie serve",
			"Check the host and port of " + host,
		}
	case TLS:
		g.Title = fmt.Sprintf("🔒 Secure connection failed while %s", action)
		g.Hints = []string{
			"Check the service certificate",
			"Check your system date and time",
		}
	case Server:
		g.Title = fmt.Sprintf("⚠️  Server error while %s", action)
		g.Hints = []string{
			host + " failed to handle the request",
			"Your changes were not applied; the form still holds them",
		}
	case Rejected:
		g.Title = fmt.Sprintf("❌ Request rejected while %s", action)
		g.Hints = []string{
			"The service refused the record; review the form values",
		}
	case Invalid:
		g.Title = fmt.Sprintf("✏️  Invalid input while %s", action)
	default:
		g.Title = fmt.Sprintf("❌ Cannot reach %s while %s", host, action)
		g.Hints = []string{
			"Check your network connection",
			"Check the configured base URL",
		}
	}
	if err != nil {
		g.Details = shorten(logging.Mask(err.Error()), 200)
	}
	return g
}

// Render writes guidance the way the console shows it.
func Render(w io.Writer, g Guidance) {
	pterm.Fprintln(w, g.Title)
	for _, h := range g.Hints {
		pterm.Fprintln(w, "  • "+h)
	}
	if g.Details != "" {
		pterm.Fprintln(w, pterm.Gray("  "+g.Details))
	}
	pterm.Fprintln(w)
}

// Reporter prints guidance for failed panel operations.
type Reporter struct {
	Out io.Writer
	// Hosts maps resource keys to the service host shown in messages.
	Hosts map[string]string
}

// Report implements the panel reporter contract.
func (r Reporter) Report(resource, op string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	w := r.Out
	if w == nil {
		w = os.Stderr
	}
	Render(w, Describe(err, actionFor(op)+" "+resource, r.Hosts[resource]))
}

func actionFor(op string) string {
	switch op {
	case "create":
		return "creating"
	case "update":
		return "updating"
	case "delete":
		return "deleting"
	case "refresh":
		return "loading"
	}
	return op
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
