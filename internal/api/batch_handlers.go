package api

import (
	"io"
	"mime/multipart"
	"net/http"

	"cloud-drive/internal/drive"
)

// @Summary      Upload a folder structure
// @Description  Uploads many files at once. Each file in "files" is paired by position with a relative path in "paths" (e.g. "photos/2024/a.jpg"); missing folders are created under folder_id and existing ones are reused. Processing stops at the first failure.
// @Tags         nodes
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        files      formData  file    true   "File contents"
// @Param        paths      formData  string  false  "Relative paths, one per file"
// @Param        folder_id  formData  string  false  "Destination folder"
// @Success      201        {object}  drive.BatchResult
// @Failure      400        {string}  string "Invalid path"
// @Router       /nodes/batch [post]
func (s *Server) BatchUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemBytes); err != nil {
		http.Error(w, "Error parsing multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files in request", http.StatusBadRequest)
		return
	}
	paths := r.MultipartForm.Value["paths"]
	if len(paths) != 0 && len(paths) != len(files) {
		http.Error(w, "paths must have one entry per file", http.StatusBadRequest)
		return
	}

	entries := make([]drive.UploadEntry, len(files))
	for i, fh := range files {
		p := fh.Filename
		if len(paths) > 0 {
			p = paths[i]
		}
		entries[i] = drive.UploadEntry{
			Path:     p,
			MimeType: fh.Header.Get("Content-Type"),
			Open:     openPart(fh),
		}
	}

	folderID := optionalID(r.FormValue("folder_id"))

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := drive.NewResolver(repo).Upload(r.Context(), folderID, entries)
	if result != nil && len(result.Files) > 0 {
		for _, f := range result.Files {
			uploadedBytesTotal.Add(float64(f.Size))
		}
		s.notifyNodesChanged(r, "batch_upload", folderID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondMutation(w, repo, withView, http.StatusCreated, result)
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}
