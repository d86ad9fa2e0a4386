package drive

import (
	"context"
	"io"
	"time"

	"cloud-drive/internal/models"
)

//go:generate mockgen -destination=drivetest/mock_store.go -package=drivetest cloud-drive/internal/drive MetadataStore,BlobStore

// MetadataStore is the owner-scoped CRUD surface over the nodes relation.
// Point lookups return (nil, nil) when the node does not exist.
type MetadataStore interface {
	QueryChildren(ctx context.Context, ownerID int64, parentID *string, includeTrashed bool) ([]models.Node, error)
	GetNode(ctx context.Context, ownerID int64, id string) (*models.Node, error)
	FindFolder(ctx context.Context, ownerID int64, parentID *string, name string) (*models.Node, error)
	InsertNode(ctx context.Context, arg models.NewNode) (*models.Node, error)
	UpdateNode(ctx context.Context, ownerID int64, id string, arg models.NodeUpdate) (bool, error)
	DeleteNode(ctx context.Context, ownerID int64, id string) (bool, error)
	ListStarred(ctx context.Context, ownerID int64) ([]models.Node, error)
	ListTrashed(ctx context.Context, ownerID int64) ([]models.Node, error)
	ListRecent(ctx context.Context, ownerID int64, limit int) ([]models.Node, error)
	ListStoragePaths(ctx context.Context, ownerID int64) ([]string, error)
	DeleteAllNodes(ctx context.Context, ownerID int64) (int64, error)
}

// BlobStore is key-addressed binary storage for file contents.
type BlobStore interface {
	UploadBlob(ctx context.Context, key string, data io.Reader) error
	DownloadBlob(ctx context.Context, key string) ([]byte, error)
	DeleteBlobs(ctx context.Context, keys []string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
