package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"koperasi-backend/internal/storage"
)

// FileHandler streams stored transfer-proof images back to authenticated
// clients.
type FileHandler struct {
	proofs storage.ProofStorage
}

func NewFileHandler(proofs storage.ProofStorage) *FileHandler {
	return &FileHandler{proofs: proofs}
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing file key")
		return
	}

	file, err := h.proofs.Open(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, file)
}
