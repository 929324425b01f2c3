// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"time"

	"menagerie/cli/internal/catalog"
)

// New creates a backend API implementation for one resource kind.
// Returns HTTP client (real backend).
func New(baseURL string, res catalog.Resource, timeout time.Duration) API {
	return newHTTP(baseURL, res, timeout)
}
