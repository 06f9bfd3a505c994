package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"board-assets/internal/assets"
	"board-assets/internal/logging"
)

// maxUploadBytes bounds a pasted image body.
const maxUploadBytes = 256 << 20

// SaveTempResponse is returned by SaveTemp.
type SaveTempResponse struct {
	Path string `json:"path"`
}

// CommitRequest is the body of Commit.
type CommitRequest struct {
	Root  string   `json:"root"`
	Paths []string `json:"paths"`
}

// CommitResponse is returned by Commit.
type CommitResponse struct {
	Paths []string `json:"paths"`
}

// SaveTemp stores a pasted image. A body with an image/* content type is
// stored as is; anything else is treated as base64 or a data URI.
func (h *Handlers) SaveTemp(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "image too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var path string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "image/") {
		path, err = h.store.SaveTemp(r.Context(), body)
	} else {
		path, err = h.store.SaveTempImage(r.Context(), string(body))
	}
	if err != nil {
		if errors.Is(err, assets.ErrDecode) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logging.Error("save temp image failed: %v", err)
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SaveTempResponse{Path: path})
}

// Commit migrates temp and external paths into a project's assets dir.
func (h *Handlers) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<20)).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Root == "" {
		writeJSONError(w, "root is required", http.StatusBadRequest)
		return
	}

	paths, err := h.store.Commit(r.Context(), req.Root, req.Paths)
	if err != nil {
		logging.Error("commit into %s failed: %v", req.Root, err)
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, CommitResponse{Paths: paths})
}
