package api

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"time"

	"cloud-drive/internal/auth"
	"cloud-drive/internal/storage"

	"github.com/go-chi/chi/v5"
)

type DeleteAccountDataResponse struct {
	DeletedNodes int64 `json:"deleted_nodes"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// @Summary      Delete all account data
// @Description  Removes every stored file and every node of the caller. Stored content goes first; if that fails no record is deleted.
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DeleteAccountDataResponse
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /account/data [delete]
func (s *Server) DeleteAccountDataHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.repository(r).DeleteAllData(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.notifyNodesChanged(r, "delete_all_data", nil)
	writeJSON(w, http.StatusOK, DeleteAccountDataResponse{DeletedNodes: n})
}

// ServeBlobHandler serves the content behind a signed URL. The token is the
// only credential.
func (s *Server) ServeBlobHandler(w http.ResponseWriter, r *http.Request) {
	resolve := func(token string) (string, error) {
		return auth.VerifyBlobToken(token, s.config.JWT.Secret)
	}
	if br, ok := s.blobs.(BlobResolver); ok {
		resolve = br.Resolve
	}

	key, err := resolve(chi.URLParam(r, "token"))
	if err != nil {
		http.Error(w, "Invalid or expired link", http.StatusForbidden)
		return
	}

	data, err := s.blobs.DownloadBlob(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		s.requestLogger(r).Error("serve signed blob", "key", key, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.ServeContent(w, r, path.Base(key), time.Time{}, bytes.NewReader(data))
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.meta.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.requestLogger(r).Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
