package models

import "time"

type Node struct {
	ID          string     `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	ParentID    *string    `json:"parent_id"`
	Name        string     `json:"name"`
	IsFolder    bool       `json:"is_folder"`
	StoragePath *string    `json:"storage_path"`
	FileType    *string    `json:"file_type"`
	Size        int64      `json:"size"`
	IsStarred   bool       `json:"is_starred"`
	IsTrashed   bool       `json:"is_trashed"`
	TrashedAt   *time.Time `json:"trashed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RecentlyModified reports whether the node's content changed (or it was
// opened) after it was created.
func (n *Node) RecentlyModified() bool {
	return !n.IsFolder && n.UpdatedAt.After(n.CreatedAt)
}

type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewNode carries the fields a caller supplies on insert. The store assigns
// the id and both timestamps.
type NewNode struct {
	OwnerID     int64
	ParentID    *string
	Name        string
	IsFolder    bool
	StoragePath *string
	FileType    *string
	Size        int64
}

// ParentRef wraps a nullable parent id so that "move to root" can be told
// apart from "parent unchanged".
type ParentRef struct {
	ID *string
}

// NodeUpdate is a partial update. Nil fields are left untouched.
type NodeUpdate struct {
	Parent    *ParentRef
	IsStarred *bool
	// Trashed sets is_trashed; trashed_at is set to TrashedAt alongside it.
	Trashed   *bool
	TrashedAt *time.Time
	UpdatedAt *time.Time
	Size      *int64
}

func (u NodeUpdate) Empty() bool {
	return u.Parent == nil && u.IsStarred == nil && u.Trashed == nil && u.UpdatedAt == nil && u.Size == nil
}
