package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cloud-drive/internal/drive"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBytes    = 1 << 30
	multipartMemBytes = 32 << 20
)

type CreateFolderRequest struct {
	Name     string  `json:"name" example:"Documents"`
	ParentID *string `json:"parent_id"`
}

type MoveNodeRequest struct {
	ParentID json.RawMessage `json:"parent_id" swaggertype:"string"`
}

type ToggleStarRequest struct {
	IsStarred bool `json:"is_starred"`
}

type ToggleStarResponse struct {
	IsStarred bool `json:"is_starred"`
}

type SignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// openRequestedView loads the view named by ?view= and ?folder_id= before a
// mutation, so the repository refreshes it once the mutation succeeds.
func openRequestedView(r *http.Request, repo *drive.Repository) (bool, error) {
	q := r.URL.Query()
	var err error
	switch kind := drive.ViewKind(q.Get("view")); kind {
	case drive.ViewNone:
		return false, nil
	case drive.ViewFolder:
		_, err = repo.OpenFolder(r.Context(), optionalID(q.Get("folder_id")))
	case drive.ViewStarred:
		_, err = repo.OpenStarred(r.Context())
	case drive.ViewTrash:
		_, err = repo.OpenTrash(r.Context())
	case drive.ViewRecent:
		_, err = repo.OpenRecent(r.Context())
	default:
		err = fmt.Errorf("%w: unknown view %q", drive.ErrValidation, kind)
	}
	return err == nil, err
}

// respondMutation answers with the refreshed view when one was requested,
// otherwise with body, or 204 when body is nil.
func respondMutation(w http.ResponseWriter, repo *drive.Repository, withView bool, status int, body any) {
	switch {
	case withView:
		writeJSON(w, http.StatusOK, repo.View())
	case body == nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, status, body)
	}
}

// @Summary      List folder contents
// @Description  Opens a folder (root when folder_id is omitted) and returns its breadcrumbs and non-trashed children, folders first.
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Param        folder_id  query     string  false  "Folder ID"
// @Success      200        {object}  drive.View
// @Failure      401        {string}  string "Unauthorized"
// @Failure      500        {string}  string "Internal Server Error"
// @Router       /nodes [get]
func (s *Server) ListNodesHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.repository(r).OpenFolder(r.Context(), optionalID(r.URL.Query().Get("folder_id")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// @Summary      List starred nodes
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  drive.View
// @Router       /nodes/starred [get]
func (s *Server) ListStarredHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.repository(r).OpenStarred(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// @Summary      List recently modified files
// @Description  Files whose content was saved or that were opened after creation, newest first.
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  drive.View
// @Router       /nodes/recent [get]
func (s *Server) ListRecentHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.repository(r).OpenRecent(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// @Summary      List trash contents
// @Description  Retrieves every node that was moved to the trash.
// @Tags         trash
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  drive.View
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /trash [get]
func (s *Server) ListTrashHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.repository(r).OpenTrash(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// @Summary      Folder breadcrumbs
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string  true  "Folder ID"
// @Success      200     {array}   models.Breadcrumb
// @Router       /nodes/{nodeId}/breadcrumbs [get]
func (s *Server) BreadcrumbsHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")
	crumbs, err := s.repository(r).ResolveBreadcrumbs(r.Context(), &nodeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, crumbs)
}

// @Summary      Create a folder
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request    body      CreateFolderRequest  true  "Folder"
// @Param        view       query     string  false  "View to return after the change (folder, starred, trash, recent)"
// @Param        folder_id  query     string  false  "Folder of the returned view"
// @Success      201        {object}  models.Node
// @Success      200        {object}  drive.View
// @Failure      400        {string}  string "Invalid request body"
// @Router       /nodes/folder [post]
func (s *Server) CreateFolderHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	node, err := repo.CreateFolder(r.Context(), req.Name, req.ParentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.notifyNodesChanged(r, "create_folder", req.ParentID)
	respondMutation(w, repo, withView, http.StatusCreated, node)
}

// @Summary      Upload a file
// @Tags         nodes
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    true   "File content"
// @Param        parent_id  formData  string  false  "Destination folder"
// @Success      201        {object}  models.Node
// @Failure      400        {string}  string "Error parsing multipart form"
// @Failure      500        {string}  string "Internal Server Error"
// @Router       /nodes/file [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemBytes); err != nil {
		http.Error(w, "Error parsing multipart form", http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error retrieving the file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	parentID := optionalID(r.FormValue("parent_id"))

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	node, err := repo.UploadFile(r.Context(), drive.FileUpload{
		Name:     handler.Filename,
		MimeType: handler.Header.Get("Content-Type"),
		Content:  file,
	}, parentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	uploadedBytesTotal.Add(float64(node.Size))
	s.notifyNodesChanged(r, "upload_file", parentID)
	respondMutation(w, repo, withView, http.StatusCreated, node)
}

// @Summary      Move a node
// @Description  Re-parents a node. A null parent_id moves it to the root. Folders cannot be moved into themselves or their descendants.
// @Tags         nodes
// @Accept       json
// @Security     BearerAuth
// @Param        nodeId   path  string           true  "Node ID"
// @Param        request  body  MoveNodeRequest  true  "Target folder"
// @Success      204      {null}    nil "No Content"
// @Failure      400      {string}  string "Invalid move"
// @Failure      404      {string}  string "Node not found"
// @Router       /nodes/{nodeId} [patch]
func (s *Server) MoveNodeHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")

	var req MoveNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.ParentID) == 0 {
		http.Error(w, "parent_id is required (null moves to the root)", http.StatusBadRequest)
		return
	}
	var target *string
	if err := json.Unmarshal(req.ParentID, &target); err != nil {
		http.Error(w, "parent_id must be a string or null", http.StatusBadRequest)
		return
	}

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := repo.MoveNode(r.Context(), nodeID, target); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.notifyNodesChanged(r, "move_node", target)
	respondMutation(w, repo, withView, http.StatusOK, nil)
}

// @Summary      Toggle the star of a node
// @Description  Send the star state the client currently shows; the opposite state is stored.
// @Tags         nodes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId   path      string             true  "Node ID"
// @Param        request  body      ToggleStarRequest  true  "Current state"
// @Success      200      {object}  ToggleStarResponse
// @Router       /nodes/{nodeId}/star [post]
func (s *Server) ToggleStarHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")

	var req ToggleStarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	starred, err := repo.ToggleStar(r.Context(), nodeID, req.IsStarred)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.notifyNodesChanged(r, "toggle_star", nil)
	respondMutation(w, repo, withView, http.StatusOK, ToggleStarResponse{IsStarred: starred})
}

// @Summary      Move a node to the trash
// @Description  Only the node itself is flagged; its descendants are hidden because they are no longer reachable.
// @Tags         trash
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node ID"
// @Success      204     {null}    nil "No Content"
// @Failure      404     {string}  string "Node not found"
// @Router       /nodes/{nodeId}/trash [post]
func (s *Server) TrashNodeHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleMutation(w, r, "move_to_trash", (*drive.Repository).MoveToTrash)
}

// @Summary      Restore a node from the trash
// @Tags         trash
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node ID"
// @Success      204     {null}    nil "No Content"
// @Failure      404     {string}  string "Node not found"
// @Router       /nodes/{nodeId}/restore [post]
func (s *Server) RestoreNodeHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleMutation(w, r, "restore_from_trash", (*drive.Repository).RestoreFromTrash)
}

// @Summary      Mark a file as opened
// @Tags         nodes
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node ID"
// @Success      204     {null}    nil "No Content"
// @Router       /nodes/{nodeId}/touch [post]
func (s *Server) TouchNodeHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleMutation(w, r, "touch_node", (*drive.Repository).TouchNode)
}

// @Summary      Delete a node permanently
// @Description  Removes stored content first, then the record. Deleting a folder removes its whole subtree.
// @Tags         trash
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "Node ID"
// @Success      204     {null}    nil "No Content"
// @Failure      404     {string}  string "Node not found"
// @Failure      500     {string}  string "Internal Server Error"
// @Router       /nodes/{nodeId} [delete]
func (s *Server) DeleteNodeHandler(w http.ResponseWriter, r *http.Request) {
	s.simpleMutation(w, r, "delete_permanently", func(repo *drive.Repository, ctx context.Context, nodeID string) error {
		return repo.DeletePermanently(ctx, nodeID, nil)
	})
}

func (s *Server) simpleMutation(w http.ResponseWriter, r *http.Request, op string, fn func(*drive.Repository, context.Context, string) error) {
	nodeID := chi.URLParam(r, "nodeId")

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := fn(repo, r.Context(), nodeID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.notifyNodesChanged(r, op, nil)
	respondMutation(w, repo, withView, http.StatusOK, nil)
}

// @Summary      Overwrite file content
// @Description  Replaces the stored content of a file with the request body and bumps its modification time.
// @Tags         nodes
// @Accept       application/octet-stream
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string  true  "File ID"
// @Success      200     {object}  models.Node
// @Failure      400     {string}  string "Not a file"
// @Router       /nodes/{nodeId}/content [put]
func (s *Server) SaveContentHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	repo := s.repository(r)
	withView, err := openRequestedView(r, repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	node, err := repo.SaveContent(r.Context(), nodeID, r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	uploadedBytesTotal.Add(float64(node.Size))
	s.notifyNodesChanged(r, "save_content", node.ParentID)
	respondMutation(w, repo, withView, http.StatusOK, node)
}

// @Summary      Download a file
// @Tags         nodes
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        nodeId  path  string  true  "File ID"
// @Success      200     {file}    file
// @Failure      400     {string}  string "Cannot download a folder"
// @Failure      404     {string}  string "Node not found"
// @Router       /nodes/{nodeId}/download [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	node, data, err := s.repository(r).Download(r.Context(), chi.URLParam(r, "nodeId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", attachment(node.Name))
	if node.FileType != nil && *node.FileType != "" {
		w.Header().Set("Content-Type", *node.FileType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// @Summary      Signed URL for a file
// @Description  Returns a time-limited link that serves the file without an Authorization header.
// @Tags         nodes
// @Produce      json
// @Security     BearerAuth
// @Param        nodeId  path      string   true   "File ID"
// @Param        ttl     query     integer  false  "Lifetime in seconds"
// @Success      200     {object}  SignedURLResponse
// @Router       /nodes/{nodeId}/url [get]
func (s *Server) SignedURLHandler(w http.ResponseWriter, r *http.Request) {
	ttl := s.config.Storage.SignedURLTTL
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			http.Error(w, "ttl must be a positive number of seconds", http.StatusBadRequest)
			return
		}
		ttl = time.Duration(secs) * time.Second
	}

	url, err := s.repository(r).SignedURL(r.Context(), chi.URLParam(r, "nodeId"), ttl)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SignedURLResponse{URL: url, ExpiresIn: int(ttl.Seconds())})
}
