package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"cloud-drive/internal/models"

	"github.com/google/uuid"
)

type ViewKind string

const (
	ViewNone    ViewKind = ""
	ViewFolder  ViewKind = "folder"
	ViewStarred ViewKind = "starred"
	ViewTrash   ViewKind = "trash"
	ViewRecent  ViewKind = "recent"
)

// RecentWindow caps how many nodes the Recent view scans. Recently modified
// files outside the window are not listed.
const RecentWindow = 100

const deleteBatchSize = 50

// View is the listing a client is currently looking at.
type View struct {
	Kind        ViewKind            `json:"kind"`
	FolderID    *string             `json:"folder_id"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
	Nodes       []models.Node       `json:"nodes"`
}

type FileUpload struct {
	Name     string
	MimeType string
	Content  io.Reader
}

// Repository owns the in-memory view of one owner's drive and every
// operation that mutates the tree. After a mutation the loaded view is
// refetched in full; only ToggleStar patches it in place.
type Repository struct {
	meta    MetadataStore
	blobs   BlobStore
	ownerID int64
	logger  *slog.Logger
	now     func() time.Time
	newKey  func(name string) string

	mu   sync.RWMutex
	view View
}

func NewRepository(meta MetadataStore, blobs BlobStore, ownerID int64, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repository{
		meta:    meta,
		blobs:   blobs,
		ownerID: ownerID,
		logger:  logger.With("owner_id", ownerID),
		now:     time.Now,
	}
	r.newKey = r.storageKey
	return r
}

func (r *Repository) OwnerID() int64 {
	return r.ownerID
}

func (r *Repository) storageKey(name string) string {
	name = strings.ReplaceAll(name, `\`, "_")
	return fmt.Sprintf("%d/%s_%s", r.ownerID, uuid.NewString(), path.Base(name))
}

// View returns a copy of the currently loaded view.
func (r *Repository) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := r.view
	v.FolderID = cloneID(r.view.FolderID)
	v.Breadcrumbs = slices.Clone(r.view.Breadcrumbs)
	v.Nodes = slices.Clone(r.view.Nodes)
	return v
}

func (r *Repository) ListChildren(ctx context.Context, folderID *string) ([]models.Node, error) {
	nodes, err := r.meta.QueryChildren(ctx, r.ownerID, folderID, false)
	if err != nil {
		return nil, storeErr("list children", err)
	}
	return nodes, nil
}

func (r *Repository) ListStarred(ctx context.Context) ([]models.Node, error) {
	nodes, err := r.meta.ListStarred(ctx, r.ownerID)
	if err != nil {
		return nil, storeErr("list starred", err)
	}
	return nodes, nil
}

func (r *Repository) ListTrashed(ctx context.Context) ([]models.Node, error) {
	nodes, err := r.meta.ListTrashed(ctx, r.ownerID)
	if err != nil {
		return nil, storeErr("list trash", err)
	}
	return nodes, nil
}

// ListRecent filters the newest RecentWindow nodes down to files modified or
// opened after creation, newest first.
func (r *Repository) ListRecent(ctx context.Context) ([]models.Node, error) {
	window, err := r.meta.ListRecent(ctx, r.ownerID, RecentWindow)
	if err != nil {
		return nil, storeErr("list recent", err)
	}
	recent := make([]models.Node, 0, len(window))
	for i := range window {
		if window[i].RecentlyModified() && !window[i].IsTrashed {
			recent = append(recent, window[i])
		}
	}
	return recent, nil
}

// ResolveBreadcrumbs walks parent links one lookup at a time and returns the
// chain from the root-adjacent folder down to folderID itself. A missing
// link ends the chain as if it had reached the root.
func (r *Repository) ResolveBreadcrumbs(ctx context.Context, folderID *string) ([]models.Breadcrumb, error) {
	crumbs := []models.Breadcrumb{}
	seen := make(map[string]bool)

	current := folderID
	for current != nil && !seen[*current] {
		seen[*current] = true
		node, err := r.meta.GetNode(ctx, r.ownerID, *current)
		if err != nil {
			return nil, storeErr("resolve breadcrumbs", err)
		}
		if node == nil {
			break
		}
		crumbs = append(crumbs, models.Breadcrumb{ID: node.ID, Name: node.Name})
		current = node.ParentID
	}

	slices.Reverse(crumbs)
	return crumbs, nil
}

func (r *Repository) OpenFolder(ctx context.Context, folderID *string) (View, error) {
	return r.open(ctx, ViewFolder, folderID)
}

func (r *Repository) OpenStarred(ctx context.Context) (View, error) {
	return r.open(ctx, ViewStarred, nil)
}

func (r *Repository) OpenTrash(ctx context.Context) (View, error) {
	return r.open(ctx, ViewTrash, nil)
}

func (r *Repository) OpenRecent(ctx context.Context) (View, error) {
	return r.open(ctx, ViewRecent, nil)
}

// Refresh refetches the loaded view. It does nothing when no view is loaded.
func (r *Repository) Refresh(ctx context.Context) error {
	r.mu.RLock()
	kind, folderID := r.view.Kind, cloneID(r.view.FolderID)
	r.mu.RUnlock()

	if kind == ViewNone {
		return nil
	}
	_, err := r.open(ctx, kind, folderID)
	return err
}

func (r *Repository) open(ctx context.Context, kind ViewKind, folderID *string) (View, error) {
	v := View{Kind: kind, Breadcrumbs: []models.Breadcrumb{}}
	var err error

	switch kind {
	case ViewFolder:
		v.FolderID = cloneID(folderID)
		if v.Nodes, err = r.ListChildren(ctx, folderID); err != nil {
			return View{}, err
		}
		if v.Breadcrumbs, err = r.ResolveBreadcrumbs(ctx, folderID); err != nil {
			return View{}, err
		}
	case ViewStarred:
		v.Nodes, err = r.ListStarred(ctx)
	case ViewTrash:
		v.Nodes, err = r.ListTrashed(ctx)
	case ViewRecent:
		v.Nodes, err = r.ListRecent(ctx)
	default:
		return View{}, validationErr("unknown view %q", kind)
	}
	if err != nil {
		return View{}, err
	}
	if v.Nodes == nil {
		v.Nodes = []models.Node{}
	}

	r.mu.Lock()
	r.view = v
	r.mu.Unlock()
	return r.View(), nil
}

func (r *Repository) afterMutation(ctx context.Context, op string) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("refresh after mutation failed", "op", op, "error", err)
	}
}

func (r *Repository) CreateFolder(ctx context.Context, name string, parentID *string) (*models.Node, error) {
	node, err := r.insertFolder(ctx, name, parentID)
	if err != nil {
		return nil, err
	}
	r.afterMutation(ctx, "create_folder")
	return node, nil
}

func (r *Repository) insertFolder(ctx context.Context, name string, parentID *string) (*models.Node, error) {
	if name == "" {
		return nil, validationErr("folder name must not be empty")
	}
	node, err := r.meta.InsertNode(ctx, models.NewNode{
		OwnerID:  r.ownerID,
		ParentID: parentID,
		Name:     name,
		IsFolder: true,
	})
	if err != nil {
		return nil, storeErr("create folder", err)
	}
	r.logger.Debug("folder created", "node_id", node.ID, "name", name)
	return node, nil
}

// UploadFile writes the blob first and the metadata record second. The two
// writes are not atomic: when the insert fails the blob stays behind and the
// returned error matches ErrBlobOrphan.
func (r *Repository) UploadFile(ctx context.Context, f FileUpload, parentID *string) (*models.Node, error) {
	node, err := r.putFile(ctx, f, parentID)
	if err != nil {
		return nil, err
	}
	r.afterMutation(ctx, "upload_file")
	return node, nil
}

func (r *Repository) putFile(ctx context.Context, f FileUpload, parentID *string) (*models.Node, error) {
	if f.Name == "" {
		return nil, validationErr("file name must not be empty")
	}
	if f.Content == nil {
		return nil, validationErr("file %q has no content", f.Name)
	}

	key := r.newKey(f.Name)
	counter := &countingReader{r: f.Content}
	if err := r.blobs.UploadBlob(ctx, key, counter); err != nil {
		return nil, storeErr("upload blob", err)
	}

	var fileType *string
	if f.MimeType != "" {
		fileType = &f.MimeType
	}
	node, err := r.meta.InsertNode(ctx, models.NewNode{
		OwnerID:     r.ownerID,
		ParentID:    parentID,
		Name:        f.Name,
		StoragePath: &key,
		FileType:    fileType,
		Size:        counter.n,
	})
	if err != nil {
		r.logger.Error("metadata insert failed after blob write", "storage_path", key, "error", err)
		return nil, fmt.Errorf("upload %q: %w: %w: %w", f.Name, ErrBlobOrphan, ErrStoreUnavailable, err)
	}
	return node, nil
}

// MoveNode re-parents a node; a nil target moves it to the root. Moving a
// folder into itself or any of its descendants is rejected.
func (r *Repository) MoveNode(ctx context.Context, nodeID string, targetFolderID *string) error {
	node, err := r.getNode(ctx, nodeID)
	if err != nil {
		return err
	}

	if targetFolderID != nil {
		if *targetFolderID == nodeID {
			return validationErr("cannot move %q into itself", node.Name)
		}
		target, err := r.getNode(ctx, *targetFolderID)
		if err != nil {
			return err
		}
		if !target.IsFolder {
			return validationErr("move target %q is not a folder", target.Name)
		}
		if node.IsFolder {
			if err := r.checkNotAncestor(ctx, node, target); err != nil {
				return err
			}
		}
	}

	ok, err := r.meta.UpdateNode(ctx, r.ownerID, nodeID, models.NodeUpdate{
		Parent: &models.ParentRef{ID: targetFolderID},
	})
	if err != nil {
		return storeErr("move node", err)
	}
	if !ok {
		return notFoundErr(nodeID)
	}
	r.afterMutation(ctx, "move_node")
	return nil
}

// checkNotAncestor walks target's ancestry and fails if node appears in it.
func (r *Repository) checkNotAncestor(ctx context.Context, node, target *models.Node) error {
	seen := map[string]bool{target.ID: true}
	current := target.ParentID
	for current != nil && !seen[*current] {
		if *current == node.ID {
			return validationErr("cannot move folder %q into its own descendant %q", node.Name, target.Name)
		}
		seen[*current] = true
		parent, err := r.meta.GetNode(ctx, r.ownerID, *current)
		if err != nil {
			return storeErr("check move target ancestry", err)
		}
		if parent == nil {
			return nil
		}
		current = parent.ParentID
	}
	return nil
}

// ToggleStar flips the star locally before the store confirms it. If the
// store rejects the change the local flip is rolled back.
func (r *Repository) ToggleStar(ctx context.Context, nodeID string, currentStarred bool) (bool, error) {
	starred := !currentStarred
	r.patchLocal(nodeID, func(n *models.Node) { n.IsStarred = starred })

	ok, err := r.meta.UpdateNode(ctx, r.ownerID, nodeID, models.NodeUpdate{IsStarred: &starred})
	if err != nil || !ok {
		r.patchLocal(nodeID, func(n *models.Node) { n.IsStarred = currentStarred })
		if err != nil {
			return currentStarred, storeErr("toggle star", err)
		}
		return currentStarred, notFoundErr(nodeID)
	}
	return starred, nil
}

func (r *Repository) patchLocal(nodeID string, fn func(*models.Node)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.view.Nodes {
		if r.view.Nodes[i].ID == nodeID {
			fn(&r.view.Nodes[i])
		}
	}
}

// MoveToTrash marks only the node itself; descendants keep their own flag.
func (r *Repository) MoveToTrash(ctx context.Context, nodeID string) error {
	trashed, now := true, r.now()
	return r.update(ctx, "move_to_trash", nodeID, models.NodeUpdate{Trashed: &trashed, TrashedAt: &now})
}

func (r *Repository) RestoreFromTrash(ctx context.Context, nodeID string) error {
	trashed := false
	return r.update(ctx, "restore_from_trash", nodeID, models.NodeUpdate{Trashed: &trashed})
}

// TouchNode bumps updated_at so the file shows up in the Recent view.
func (r *Repository) TouchNode(ctx context.Context, nodeID string) error {
	now := r.now()
	return r.update(ctx, "touch_node", nodeID, models.NodeUpdate{UpdatedAt: &now})
}

func (r *Repository) update(ctx context.Context, op, nodeID string, arg models.NodeUpdate) error {
	ok, err := r.meta.UpdateNode(ctx, r.ownerID, nodeID, arg)
	if err != nil {
		return storeErr(op, err)
	}
	if !ok {
		return notFoundErr(nodeID)
	}
	r.afterMutation(ctx, op)
	return nil
}

// DeletePermanently removes blobs before the metadata record, so a failed
// blob delete leaves the record in place. When storagePath is nil the node's
// own reference is used. Deleting a folder also removes the blobs of every
// descendant; their records go with the folder's row.
func (r *Repository) DeletePermanently(ctx context.Context, nodeID string, storagePath *string) error {
	node, err := r.getNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if storagePath == nil {
		storagePath = node.StoragePath
	}

	var keys []string
	if storagePath != nil && *storagePath != "" {
		keys = append(keys, *storagePath)
	}
	if node.IsFolder {
		nested, err := r.descendantStoragePaths(ctx, node.ID)
		if err != nil {
			return err
		}
		keys = append(keys, nested...)
	}

	if err := r.deleteBlobs(ctx, keys); err != nil {
		return err
	}

	ok, err := r.meta.DeleteNode(ctx, r.ownerID, nodeID)
	if err != nil {
		return storeErr("delete node", err)
	}
	if !ok {
		return notFoundErr(nodeID)
	}
	r.logger.Info("node deleted permanently", "node_id", nodeID, "blobs", len(keys))
	r.afterMutation(ctx, "delete_permanently")
	return nil
}

func (r *Repository) descendantStoragePaths(ctx context.Context, folderID string) ([]string, error) {
	children, err := r.meta.QueryChildren(ctx, r.ownerID, &folderID, true)
	if err != nil {
		return nil, storeErr("collect descendant blobs", err)
	}
	var keys []string
	for _, child := range children {
		if child.IsFolder {
			nested, err := r.descendantStoragePaths(ctx, child.ID)
			if err != nil {
				return nil, err
			}
			keys = append(keys, nested...)
			continue
		}
		if child.StoragePath != nil {
			keys = append(keys, *child.StoragePath)
		}
	}
	return keys, nil
}

func (r *Repository) deleteBlobs(ctx context.Context, keys []string) error {
	for batch := range slices.Chunk(keys, deleteBatchSize) {
		if err := r.blobs.DeleteBlobs(ctx, batch); err != nil {
			return storeErr("delete blobs", err)
		}
	}
	return nil
}

// SaveContent overwrites a file's blob in place and records the new size.
func (r *Repository) SaveContent(ctx context.Context, nodeID string, content io.Reader) (*models.Node, error) {
	node, err := r.getNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.IsFolder || node.StoragePath == nil {
		return nil, validationErr("%q has no stored content", node.Name)
	}

	counter := &countingReader{r: content}
	if err := r.blobs.UploadBlob(ctx, *node.StoragePath, counter); err != nil {
		return nil, storeErr("save content", err)
	}

	now, size := r.now(), counter.n
	ok, err := r.meta.UpdateNode(ctx, r.ownerID, nodeID, models.NodeUpdate{UpdatedAt: &now, Size: &size})
	if err != nil {
		return nil, storeErr("save content", err)
	}
	if !ok {
		return nil, notFoundErr(nodeID)
	}
	node.UpdatedAt, node.Size = now, size
	r.afterMutation(ctx, "save_content")
	return node, nil
}

func (r *Repository) SignedURL(ctx context.Context, nodeID string, ttl time.Duration) (string, error) {
	node, err := r.getNode(ctx, nodeID)
	if err != nil {
		return "", err
	}
	if node.StoragePath == nil {
		return "", validationErr("%q has no stored content", node.Name)
	}
	url, err := r.blobs.SignedURL(ctx, *node.StoragePath, ttl)
	if err != nil {
		return "", storeErr("sign url", err)
	}
	return url, nil
}

// Download returns a file node together with its bytes.
func (r *Repository) Download(ctx context.Context, nodeID string) (*models.Node, []byte, error) {
	node, err := r.getNode(ctx, nodeID)
	if err != nil {
		return nil, nil, err
	}
	if node.IsFolder || node.StoragePath == nil {
		return nil, nil, validationErr("%q has no stored content", node.Name)
	}
	data, err := r.blobs.DownloadBlob(ctx, *node.StoragePath)
	if err != nil {
		return nil, nil, storeErr("download", err)
	}
	return node, data, nil
}

// DeleteAllData wipes every blob and record of the owner. Blobs go first, in
// batches; a failed batch stops before any record is deleted.
func (r *Repository) DeleteAllData(ctx context.Context) (int64, error) {
	keys, err := r.meta.ListStoragePaths(ctx, r.ownerID)
	if err != nil {
		return 0, storeErr("list storage paths", err)
	}
	if err := r.deleteBlobs(ctx, keys); err != nil {
		return 0, err
	}
	n, err := r.meta.DeleteAllNodes(ctx, r.ownerID)
	if err != nil {
		return 0, storeErr("delete all nodes", err)
	}
	r.logger.Info("account data deleted", "nodes", n, "blobs", len(keys))
	r.afterMutation(ctx, "delete_all_data")
	return n, nil
}

func (r *Repository) getNode(ctx context.Context, id string) (*models.Node, error) {
	node, err := r.meta.GetNode(ctx, r.ownerID, id)
	if err != nil {
		return nil, storeErr("get node", err)
	}
	if node == nil {
		return nil, notFoundErr(id)
	}
	return node, nil
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
