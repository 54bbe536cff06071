// Package site serves the non-resource endpoints: service metadata, lesson
// images and the health probe.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Info struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

type Handler struct {
	info   Info
	images *os.Root
	store  Pinger
	logger *slog.Logger
}

// NewHandler serves images from imagesDir. The directory is opened as an
// os.Root so lookups cannot escape it.
func NewHandler(info Info, imagesDir string, store Pinger, logger *slog.Logger) (*Handler, error) {
	images, err := os.OpenRoot(imagesDir)
	if err != nil {
		return nil, err
	}

	return &Handler{
		info:   info,
		images: images,
		store:  store,
		logger: logger,
	}, nil
}

func (h *Handler) Close() error {
	return h.images.Close()
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.info)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("fileName")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		h.writeNotFound(w)
		return
	}

	f, err := h.images.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("failed to open image", "error", err, "file", name)
		}
		h.writeNotFound(w)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.writeNotFound(w)
		return
	}

	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *Handler) writeNotFound(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "image not found", "code": "not_found"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
