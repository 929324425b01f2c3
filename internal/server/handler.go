// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package server implements the REST collection service the console talks to:
// list, read, create, replace and delete records of one resource kind, backed
// by a store.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pterm/pterm"

	"menagerie/cli/internal/catalog"
	cerrors "menagerie/cli/internal/errors"
	"menagerie/cli/internal/record"
	"menagerie/cli/internal/store"
)

// maxBody caps request bodies; records are a handful of scalar fields.
const maxBody = 1 << 20

// Handler serves one resource collection.
type Handler struct {
	res    catalog.Resource
	store  store.Store
	logger *pterm.Logger
}

// NewHandler creates a handler for res backed by s.
func NewHandler(res catalog.Resource, s store.Store, logger *pterm.Logger) *Handler {
	return &Handler{res: res, store: s, logger: logger}
}

// RegisterRoutes registers the collection routes on a router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	base := "/" + h.res.Collection
	r.HandleFunc(base, h.HandleList).Methods(http.MethodGet)
	r.HandleFunc(base, h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc(base+"/{id}", h.HandleGet).Methods(http.MethodGet)
	r.HandleFunc(base+"/{id}", h.HandleUpdate).Methods(http.MethodPut)
	r.HandleFunc(base+"/{id}", h.HandleDelete).Methods(http.MethodDelete)
}

// HandleList handles GET /{collection}. An empty collection is [].
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := h.res.Schema.MarshalList(rows)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

// HandleGet handles GET /{collection}/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, http.StatusOK, rec)
}

// HandleCreate handles POST /{collection}. Any id in the body is ignored.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("record created", h.logger.Args("collection", h.res.Collection, "id", rec.ID()))
	h.writeRecord(w, r, http.StatusCreated, rec)
}

// HandleUpdate handles PUT /{collection}/{id}. The path id wins over the body.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.store.Update(r.Context(), id, in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("record updated", h.logger.Args("collection", h.res.Collection, "id", id))
	h.writeRecord(w, r, http.StatusOK, in.WithID(id))
}

// HandleDelete handles DELETE /{collection}/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("record deleted", h.logger.Args("collection", h.res.Collection, "id", id))
	writeJSON(w, http.StatusOK, map[string]string{"result": "success"})
}

// pathID returns the {id} route variable; integer collections reject
// anything that is not a number.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if h.res.Schema.IDKind == record.Integer {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+h.res.Collection+" id")
			return "", false
		}
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (record.Record, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return record.Record{}, false
	}
	rec, err := h.res.Schema.Unmarshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return record.Record{}, false
	}
	return rec, true
}

func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request, status int, rec record.Record) {
	body, err := h.res.Schema.Marshal(rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, status, body)
}

// fail maps store and record errors to status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case cerrors.KindOf(err) == cerrors.InvalidRecord:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", h.logger.Args("method", r.Method, "path", r.URL.Path, "error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
