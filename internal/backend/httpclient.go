// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"menagerie/cli/internal/catalog"
	cerrors "menagerie/cli/internal/errors"
	"menagerie/cli/internal/record"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// userAgent identifies the console to collection services.
var userAgent = "menagerie-cli/1.0"

// HTTP implements API over a REST collection endpoint.
type HTTP struct {
	// collectionURL is the full collection URL (e.g., "http://localhost:8080/pokemon")
	collectionURL string
	// resource carries the schema used to encode and decode records
	resource catalog.Resource
	// client is the underlying HTTP client with configured timeout
	client *http.Client
}

// newHTTP creates a new HTTP client for the resource's collection under baseURL.
// A zero timeout falls back to 10 seconds.
func newHTTP(baseURL string, res catalog.Resource, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		collectionURL: res.CollectionURL(baseURL),
		resource:      res,
		client:        &http.Client{Timeout: timeout},
	}
}

// List calls GET /{collection} and decodes the JSON array.
// A malformed body fails the whole call; nothing is partially returned.
func (h *HTTP) List(ctx context.Context) ([]record.Record, error) {
	op := "list " + h.resource.Collection
	body, err := h.do(ctx, op, http.MethodGet, h.collectionURL, nil)
	if err != nil {
		return nil, err
	}
	records, err := h.resource.Schema.UnmarshalList(body)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.Transport, op, err)
	}
	return records, nil
}

// Create calls POST /{collection} with the record minus its id.
func (h *HTTP) Create(ctx context.Context, r record.Record) error {
	op := "create " + h.resource.Collection
	payload, err := h.resource.Schema.Marshal(r.WithID(""))
	if err != nil {
		return err
	}
	_, err = h.do(ctx, op, http.MethodPost, h.collectionURL, payload)
	return err
}

// Update calls PUT /{collection}/{id} with the full record.
func (h *HTTP) Update(ctx context.Context, id string, r record.Record) error {
	op := "update " + h.resource.Collection
	if id == "" {
		return cerrors.New(cerrors.InvalidRecord, op+": missing id")
	}
	payload, err := h.resource.Schema.Marshal(r.WithID(id))
	if err != nil {
		return err
	}
	_, err = h.do(ctx, op, http.MethodPut, h.itemURL(id), payload)
	return err
}

// Delete calls DELETE /{collection}/{id}.
func (h *HTTP) Delete(ctx context.Context, id string) error {
	op := "delete " + h.resource.Collection
	if id == "" {
		return cerrors.New(cerrors.InvalidRecord, op+": missing id")
	}
	_, err := h.do(ctx, op, http.MethodDelete, h.itemURL(id), nil)
	return err
}

func (h *HTTP) itemURL(id string) string {
	return h.collectionURL + "/" + url.PathEscape(id)
}

// setStandardHeaders applies headers sent with every request.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
}

// do performs one request and returns the response body on 2xx.
// Network and read failures become Transport errors; any other status becomes
// a RemoteRejection carrying the service's error message.
func (h *HTTP) do(ctx context.Context, op, method, target string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.Transport, op, err)
	}
	h.setStandardHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.Transport, op, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, cerrors.Wrap(cerrors.Transport, op, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, cerrors.Rejected(op, resp.StatusCode, extractErrorMessage(b))
	}
	return b, nil
}

// extractErrorMessage pulls a readable message out of an error body.
// Services answer {"error": "..."}; anything else is returned trimmed.
func extractErrorMessage(b []byte) string {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err == nil {
		for _, key := range []string{"error", "message", "detail"} {
			if v, ok := raw[key].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	msg := strings.TrimSpace(string(b))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
