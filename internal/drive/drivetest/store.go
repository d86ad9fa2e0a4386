// Package drivetest provides in-memory implementations of the drive store
// interfaces for tests.
package drivetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"

	"cloud-drive/internal/models"
)

var ErrBlobNotFound = errors.New("blob not found")

// Store is a MetadataStore and BlobStore backed by maps. Failures can be
// injected per operation; every call is appended to Calls.
type Store struct {
	mu    sync.Mutex
	order []string
	nodes map[string]*models.Node
	blobs map[string][]byte
	seq   int

	failDownload map[string]error
	failOps      map[string]error
	calls        []string
}

func NewStore() *Store {
	return &Store{
		nodes:        make(map[string]*models.Node),
		blobs:        make(map[string][]byte),
		failDownload: make(map[string]error),
		failOps:      make(map[string]error),
	}
}

// Fail makes every following call of op return err. A nil err clears it.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOps, op)
		return
	}
	s.failOps[op] = err
}

// FailDownload makes DownloadBlob fail for one key.
func (s *Store) FailDownload(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDownload[key] = err
}

// Calls returns the operations invoked so far, in order.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Store) record(op string) error {
	s.calls = append(s.calls, op)
	return s.failOps[op]
}

// Put seeds a node as-is, assigning an id and timestamps when missing.
func (s *Store) Put(n models.Node) *models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = s.nextID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	s.store(&n)
	out := n
	return &out
}

// PutFile seeds a file node together with its blob.
func (s *Store) PutFile(ownerID int64, parentID *string, name string, content string) *models.Node {
	key := fmt.Sprintf("%d/%s", ownerID, name)
	s.mu.Lock()
	for _, exists := s.blobs[key]; exists; _, exists = s.blobs[key] {
		key += "_"
	}
	s.blobs[key] = []byte(content)
	s.mu.Unlock()
	return s.Put(models.Node{
		OwnerID:     ownerID,
		ParentID:    parentID,
		Name:        name,
		StoragePath: &key,
		Size:        int64(len(content)),
	})
}

func (s *Store) PutFolder(ownerID int64, parentID *string, name string) *models.Node {
	return s.Put(models.Node{OwnerID: ownerID, ParentID: parentID, Name: name, IsFolder: true})
}

// Node returns a copy of a stored node, or nil.
func (s *Store) Node(id string) *models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := *n
	return &out
}

// Nodes returns copies of every stored node matching keep, in insertion order.
func (s *Store) Nodes(keep func(*models.Node) bool) []models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Node
	for _, id := range s.order {
		if n, ok := s.nodes[id]; ok && (keep == nil || keep(n)) {
			out = append(out, *n)
		}
	}
	return out
}

func (s *Store) Blob(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	return b, ok
}

func (s *Store) BlobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

func (s *Store) nextID() string {
	s.seq++
	return fmt.Sprintf("node%04d", s.seq)
}

func (s *Store) store(n *models.Node) {
	if _, exists := s.nodes[n.ID]; !exists {
		s.order = append(s.order, n.ID)
	}
	s.nodes[n.ID] = n
}

func (s *Store) ordered(keep func(*models.Node) bool) []models.Node {
	out := []models.Node{}
	for _, id := range s.order {
		if n, ok := s.nodes[id]; ok && keep(n) {
			out = append(out, *n)
		}
	}
	return out
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) QueryChildren(ctx context.Context, ownerID int64, parentID *string, includeTrashed bool) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("QueryChildren"); err != nil {
		return nil, err
	}
	out := s.ordered(func(n *models.Node) bool {
		return n.OwnerID == ownerID && sameParent(n.ParentID, parentID) && (includeTrashed || !n.IsTrashed)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFolder != out[j].IsFolder {
			return out[i].IsFolder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetNode(ctx context.Context, ownerID int64, id string) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetNode"); err != nil {
		return nil, err
	}
	n, ok := s.nodes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, nil
	}
	out := *n
	return &out, nil
}

func (s *Store) FindFolder(ctx context.Context, ownerID int64, parentID *string, name string) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindFolder"); err != nil {
		return nil, err
	}
	for _, id := range s.order {
		n := s.nodes[id]
		if n != nil && n.OwnerID == ownerID && n.IsFolder && !n.IsTrashed && n.Name == name && sameParent(n.ParentID, parentID) {
			out := *n
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertNode(ctx context.Context, arg models.NewNode) (*models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("InsertNode"); err != nil {
		return nil, err
	}
	if arg.ParentID != nil {
		if _, ok := s.nodes[*arg.ParentID]; !ok {
			return nil, fmt.Errorf("parent %s does not exist", *arg.ParentID)
		}
	}
	now := time.Now()
	n := &models.Node{
		ID:          s.nextID(),
		OwnerID:     arg.OwnerID,
		ParentID:    arg.ParentID,
		Name:        arg.Name,
		IsFolder:    arg.IsFolder,
		StoragePath: arg.StoragePath,
		FileType:    arg.FileType,
		Size:        arg.Size,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.store(n)
	out := *n
	return &out, nil
}

func (s *Store) UpdateNode(ctx context.Context, ownerID int64, id string, arg models.NodeUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateNode"); err != nil {
		return false, err
	}
	n, ok := s.nodes[id]
	if !ok || n.OwnerID != ownerID {
		return false, nil
	}
	if arg.Parent != nil {
		n.ParentID = arg.Parent.ID
	}
	if arg.IsStarred != nil {
		n.IsStarred = *arg.IsStarred
	}
	if arg.Trashed != nil {
		n.IsTrashed = *arg.Trashed
		n.TrashedAt = arg.TrashedAt
	}
	if arg.UpdatedAt != nil {
		n.UpdatedAt = *arg.UpdatedAt
	}
	if arg.Size != nil {
		n.Size = *arg.Size
	}
	return true, nil
}

// DeleteNode removes the node and, like the Postgres foreign key, every
// descendant.
func (s *Store) DeleteNode(ctx context.Context, ownerID int64, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("DeleteNode"); err != nil {
		return false, err
	}
	n, ok := s.nodes[id]
	if !ok || n.OwnerID != ownerID {
		return false, nil
	}
	s.deleteTree(id)
	return true, nil
}

func (s *Store) deleteTree(id string) {
	delete(s.nodes, id)
	for childID, child := range s.nodes {
		if child.ParentID != nil && *child.ParentID == id {
			s.deleteTree(childID)
		}
	}
}

func (s *Store) ListStarred(ctx context.Context, ownerID int64) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListStarred"); err != nil {
		return nil, err
	}
	return s.ordered(func(n *models.Node) bool {
		return n.OwnerID == ownerID && n.IsStarred && !n.IsTrashed
	}), nil
}

func (s *Store) ListTrashed(ctx context.Context, ownerID int64) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListTrashed"); err != nil {
		return nil, err
	}
	return s.ordered(func(n *models.Node) bool {
		return n.OwnerID == ownerID && n.IsTrashed
	}), nil
}

func (s *Store) ListRecent(ctx context.Context, ownerID int64, limit int) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListRecent"); err != nil {
		return nil, err
	}
	out := s.ordered(func(n *models.Node) bool {
		return n.OwnerID == ownerID && !n.IsTrashed
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListStoragePaths(ctx context.Context, ownerID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListStoragePaths"); err != nil {
		return nil, err
	}
	var keys []string
	for _, n := range s.ordered(func(n *models.Node) bool { return n.OwnerID == ownerID && n.StoragePath != nil }) {
		keys = append(keys, *n.StoragePath)
	}
	return keys, nil
}

func (s *Store) DeleteAllNodes(ctx context.Context, ownerID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("DeleteAllNodes"); err != nil {
		return 0, err
	}
	var n int64
	for id, node := range s.nodes {
		if node.OwnerID == ownerID {
			delete(s.nodes, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) UploadBlob(ctx context.Context, key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UploadBlob"); err != nil {
		return err
	}
	s.blobs[key] = b
	return nil
}

func (s *Store) DownloadBlob(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("DownloadBlob"); err != nil {
		return nil, err
	}
	if err := s.failDownload[key]; err != nil {
		return nil, err
	}
	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	return bytes.Clone(b), nil
}

func (s *Store) DeleteBlobs(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("DeleteBlobs"); err != nil {
		return err
	}
	for _, k := range keys {
		delete(s.blobs, k)
	}
	return nil
}

func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SignedURL"); err != nil {
		return "", err
	}
	return fmt.Sprintf("mem://%s?ttl=%d", url.PathEscape(key), int(ttl.Seconds())), nil
}
