// SPDX-License-Identifier: EPL-2.0

// Package server exposes the mixer and the library over HTTP.
//
//	POST /mixes                       multipart fields a, b, gain_a, gain_b
//	GET  /library/{collection}        records as JSON
//	POST /library/{collection}        multipart field file
//	GET  /library/{collection}/{id}   record contents
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/store"
)

// Config tunes request handling.
type Config struct {
	GainA, GainB float64 // used when a request has no gain fields
	MaxUpload    int64   // bytes per request, 64 MiB when zero
}

const defaultMaxUpload = 64 << 20

// Handler serves the HTTP API.
type Handler struct {
	mixer *mixer.Mixer
	store store.Store
	log   *zap.Logger
	cfg   Config
}

func New(m *mixer.Mixer, st store.Store, log *zap.Logger, cfg Config) *Handler {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = defaultMaxUpload
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{mixer: m, store: st, log: log, cfg: cfg}
}

// RegisterRoutes adds the API routes to router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/mixes", h.createMix).Methods(http.MethodPost)
	router.HandleFunc("/library/{collection}", h.listRecords).Methods(http.MethodGet)
	router.HandleFunc("/library/{collection}", h.importRecord).Methods(http.MethodPost)
	router.HandleFunc("/library/{collection}/{id}", h.getRecord).Methods(http.MethodGet)
}

// Router returns a router serving only the API.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

type errorResponse struct {
	Error  string `json:"error"`
	Stage  string `json:"stage,omitempty"`
	Source string `json:"source,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var se *mixer.StageError
	if errors.As(err, &se) {
		resp.Stage = string(se.Stage)
		resp.Source = se.Source
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrUnknownCollection):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, store.ErrInvalidName):
		status = http.StatusBadRequest
	case se != nil && (se.Stage == mixer.StageDecode || se.Stage == mixer.StageMix):
		status = http.StatusUnprocessableEntity
	case se != nil && se.Stage == mixer.StagePersist:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, resp)
}

var errBadRequest = errors.New("bad request")

func readPart(form *multipart.Form, field string) (audio.Blob, error) {
	files := form.File[field]
	if len(files) != 1 {
		return audio.Blob{}, fmt.Errorf("%w: want exactly one %q file", errBadRequest, field)
	}

	f, err := files[0].Open()
	if err != nil {
		return audio.Blob{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return audio.Blob{}, err
	}

	return audio.Blob{Name: files[0].Filename, Data: data, ReceivedAt: time.Now()}, nil
}

func formGain(form *multipart.Form, field string, fallback float64) (float64, error) {
	values := form.Value[field]
	if len(values) == 0 || values[0] == "" {
		return fallback, nil
	}
	g, err := strconv.ParseFloat(values[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errBadRequest, field, err)
	}
	return g, nil
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUpload)
	if err := r.ParseMultipartForm(h.cfg.MaxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return r.MultipartForm, nil
}

func (h *Handler) createMix(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer form.RemoveAll()

	a, err := readPart(form, "a")
	if err != nil {
		h.writeError(w, err)
		return
	}
	b, err := readPart(form, "b")
	if err != nil {
		h.writeError(w, err)
		return
	}

	gainA, err := formGain(form, "gain_a", h.cfg.GainA)
	if err != nil {
		h.writeError(w, err)
		return
	}
	gainB, err := formGain(form, "gain_b", h.cfg.GainB)
	if err != nil {
		h.writeError(w, err)
		return
	}

	file, err := h.mixer.MixSources(r.Context(), a, b, gainA, gainB)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, file.Record)
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.List(r.Context(), mux.Vars(r)["collection"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	h.writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) importRecord(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer form.RemoveAll()

	blob, err := readPart(form, "file")
	if err != nil {
		h.writeError(w, err)
		return
	}

	rec, err := h.store.Put(r.Context(), mux.Vars(r)["collection"], blob.Name, blob.Data)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.log.Info("imported", zap.String("collection", rec.Collection), zap.String("id", rec.ID))
	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	data, rec, err := h.store.Get(r.Context(), vars["collection"], vars["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", store.ContentType(rec.Name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("write record", zap.String("id", rec.ID), zap.Error(err))
	}
}
