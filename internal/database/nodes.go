package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud-drive/internal/models"

	"github.com/jackc/pgx/v5"
)

const nodeColumns = `id, owner_id, parent_id, name, is_folder, storage_path, file_type, size,
	is_starred, is_trashed, trashed_at, created_at, updated_at`

func scanNode(row pgx.Row) (*models.Node, error) {
	var node models.Node
	err := row.Scan(
		&node.ID,
		&node.OwnerID,
		&node.ParentID,
		&node.Name,
		&node.IsFolder,
		&node.StoragePath,
		&node.FileType,
		&node.Size,
		&node.IsStarred,
		&node.IsTrashed,
		&node.TrashedAt,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func collectNodes(rows pgx.Rows, err error) ([]models.Node, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []models.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (q *Queries) QueryChildren(ctx context.Context, ownerID int64, parentID *string, includeTrashed bool) ([]models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1
			AND parent_id IS NOT DISTINCT FROM $2
			AND ($3 OR is_trashed = false)
		ORDER BY is_folder DESC, name
	`
	return collectNodes(q.db.Query(ctx, query, ownerID, parentID, includeTrashed))
}

// GetNode returns the node whether or not it is trashed, and nil when the
// owner has no such node.
func (q *Queries) GetNode(ctx context.Context, ownerID int64, id string) (*models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = $1 AND owner_id = $2`
	node, err := scanNode(q.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return node, nil
}

func (q *Queries) FindFolder(ctx context.Context, ownerID int64, parentID *string, name string) (*models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1
			AND parent_id IS NOT DISTINCT FROM $2
			AND name = $3
			AND is_folder
			AND is_trashed = false
		ORDER BY created_at
		LIMIT 1
	`
	node, err := scanNode(q.db.QueryRow(ctx, query, ownerID, parentID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return node, nil
}

func (q *Queries) InsertNode(ctx context.Context, arg models.NewNode) (*models.Node, error) {
	query := `
		INSERT INTO nodes (id, owner_id, parent_id, name, is_folder, storage_path, file_type, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + nodeColumns

	node, err := scanNode(q.db.QueryRow(ctx, query,
		q.newID(),
		arg.OwnerID,
		arg.ParentID,
		arg.Name,
		arg.IsFolder,
		arg.StoragePath,
		arg.FileType,
		arg.Size,
	))
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return node, nil
}

// lockParentFolder holds a share lock on the parent for the rest of the
// transaction and checks it is a folder of the same owner.
func (q *Queries) lockParentFolder(ctx context.Context, ownerID int64, parentID string) error {
	var isFolder bool
	err := q.db.QueryRow(ctx,
		`SELECT is_folder FROM nodes WHERE id = $1 AND owner_id = $2 FOR SHARE`,
		parentID, ownerID,
	).Scan(&isFolder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrParentNotFound
		}
		return err
	}
	if !isFolder {
		return fmt.Errorf("%w: %s is not a folder", ErrParentNotFound, parentID)
	}
	return nil
}

// UpdateNode applies the set fields of arg. It reports false when the owner
// has no such node.
func (q *Queries) UpdateNode(ctx context.Context, ownerID int64, id string, arg models.NodeUpdate) (bool, error) {
	if arg.Empty() {
		var exists bool
		err := q.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM nodes WHERE id = $1 AND owner_id = $2)`, id, ownerID,
		).Scan(&exists)
		return exists, err
	}

	args := []interface{}{id, ownerID}
	var sets []string
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if arg.Parent != nil {
		set("parent_id", arg.Parent.ID)
	}
	if arg.IsStarred != nil {
		set("is_starred", *arg.IsStarred)
	}
	if arg.Trashed != nil {
		set("is_trashed", *arg.Trashed)
		set("trashed_at", arg.TrashedAt)
	}
	if arg.UpdatedAt != nil {
		set("updated_at", *arg.UpdatedAt)
	}
	if arg.Size != nil {
		set("size", *arg.Size)
	}

	query := `UPDATE nodes SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 AND owner_id = $2`
	res, err := q.db.Exec(ctx, query, args...)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return false, ErrParentNotFound
		}
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// DeleteNode removes the node; descendants go with it through the
// ON DELETE CASCADE on parent_id.
func (q *Queries) DeleteNode(ctx context.Context, ownerID int64, id string) (bool, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM nodes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (q *Queries) ListStarred(ctx context.Context, ownerID int64) ([]models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1 AND is_starred AND is_trashed = false
		ORDER BY is_folder DESC, name
	`
	return collectNodes(q.db.Query(ctx, query, ownerID))
}

func (q *Queries) ListTrashed(ctx context.Context, ownerID int64) ([]models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1 AND is_trashed
		ORDER BY trashed_at DESC
	`
	return collectNodes(q.db.Query(ctx, query, ownerID))
}

func (q *Queries) ListRecent(ctx context.Context, ownerID int64, limit int) ([]models.Node, error) {
	query := `
		SELECT ` + nodeColumns + `
		FROM nodes
		WHERE owner_id = $1 AND is_trashed = false
		ORDER BY updated_at DESC
		LIMIT $2
	`
	return collectNodes(q.db.Query(ctx, query, ownerID, limit))
}

func (q *Queries) ListStoragePaths(ctx context.Context, ownerID int64) ([]string, error) {
	rows, err := q.db.Query(ctx,
		`SELECT storage_path FROM nodes WHERE owner_id = $1 AND storage_path IS NOT NULL`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (q *Queries) DeleteAllNodes(ctx context.Context, ownerID int64) (int64, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM nodes WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// InsertNode checks the parent inside a transaction so a node cannot land
// under a file or under another owner's folder.
func (s *Store) InsertNode(ctx context.Context, arg models.NewNode) (*models.Node, error) {
	if arg.ParentID == nil {
		return s.Queries.InsertNode(ctx, arg)
	}

	var node *models.Node
	err := s.ExecTx(ctx, func(q *Queries) error {
		if err := q.lockParentFolder(ctx, arg.OwnerID, *arg.ParentID); err != nil {
			return err
		}
		var err error
		node, err = q.InsertNode(ctx, arg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}
