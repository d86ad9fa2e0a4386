package api

import (
	"errors"
	"net/http"
	"strconv"

	"cloud-drive/internal/drive"

	"github.com/google/uuid"
)

// @Summary      Download a folder as a zip archive
// @Description  Archives the subtree of folder_id, or the whole drive when it is omitted. Progress is pushed over the websocket as export_progress events tagged with export_id. Files that fail to download are replaced by a "<name>.error.txt" placeholder and counted in X-Export-Failures.
// @Tags         archive
// @Produce      application/zip
// @Security     BearerAuth
// @Param        folder_id  query     string  false  "Folder to archive"
// @Param        export_id  query     string  false  "Client-chosen id echoed in progress events"
// @Success      200        {file}    file
// @Failure      400        {string}  string "Not a folder"
// @Failure      404        {string}  string "Node not found"
// @Failure      500        {string}  string "Internal Server Error"
// @Router       /archive [get]
func (s *Server) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	q := r.URL.Query()

	exportID := q.Get("export_id")
	if exportID == "" {
		exportID = uuid.NewString()
	}

	exporter := drive.NewExporter(s.meta, s.blobs, claims.UserID, s.requestLogger(r),
		drive.WithConcurrency(s.config.Export.Concurrency),
		drive.WithDefaultName(s.config.Export.DefaultName),
	)

	progress := func(percent int, message string) {
		if s.wsHub != nil {
			s.wsHub.PublishExportProgress(claims.UserID, exportID, percent, message)
		}
	}

	archive, err := exporter.Export(r.Context(), optionalID(q.Get("folder_id")), progress)
	if err != nil {
		result := "error"
		if errors.Is(err, drive.ErrValidation) || errors.Is(err, drive.ErrNotFound) {
			result = "rejected"
		}
		archiveExportsTotal.WithLabelValues(result).Inc()
		s.writeError(w, r, err)
		return
	}

	result := "complete"
	if len(archive.Failures) > 0 {
		result = "partial"
		archiveFailedFilesTotal.Add(float64(len(archive.Failures)))
	}
	archiveExportsTotal.WithLabelValues(result).Inc()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment(archive.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Data)))
	w.Header().Set("X-Export-Id", exportID)
	w.Header().Set("X-Export-Failures", strconv.Itoa(len(archive.Failures)))
	w.Write(archive.Data)
}
