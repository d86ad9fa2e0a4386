package drive

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"cloud-drive/internal/models"
)

// UploadEntry is one file of a structured upload. Path is relative to the
// destination folder and ends with the file name, e.g. "sub/dir/file.txt".
type UploadEntry struct {
	Path     string
	MimeType string
	Open     func() (io.ReadCloser, error)
}

type BatchResult struct {
	FoldersCreated int           `json:"folders_created"`
	FoldersReused  int           `json:"folders_reused"`
	Files          []models.Node `json:"files"`
}

// Resolver rebuilds the folder hierarchy implied by a batch of relative
// paths and uploads each file into its resolved parent. Folder names match
// exactly (case-sensitive).
type Resolver struct {
	repo *Repository
}

func NewResolver(repo *Repository) *Resolver {
	return &Resolver{repo: repo}
}

type resolvedEntry struct {
	entry    UploadEntry
	dirs     []string
	fileName string
}

// Upload processes entries shallowest first and stops at the first failure.
// Folders created before the failure are kept and get reused on a retry.
func (res *Resolver) Upload(ctx context.Context, destFolderID *string, entries []UploadEntry) (*BatchResult, error) {
	resolved := make([]resolvedEntry, 0, len(entries))
	for _, e := range entries {
		dirs, name, err := splitUploadPath(e.Path)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedEntry{entry: e, dirs: dirs, fileName: name})
	}
	slices.SortStableFunc(resolved, func(a, b resolvedEntry) int {
		return len(a.dirs) - len(b.dirs)
	})

	result := &BatchResult{Files: []models.Node{}}
	cache := map[string]*string{"": cloneID(destFolderID)}

	for _, re := range resolved {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		parentID, err := res.resolveDirs(ctx, cache, re.dirs, result)
		if err != nil {
			return result, fmt.Errorf("resolve %q: %w", re.entry.Path, err)
		}

		node, err := res.uploadOne(ctx, re, parentID)
		if err != nil {
			return result, fmt.Errorf("upload %q: %w", re.entry.Path, err)
		}
		result.Files = append(result.Files, *node)
	}

	res.repo.logger.Info("batch upload finished",
		"files", len(result.Files),
		"folders_created", result.FoldersCreated,
		"folders_reused", result.FoldersReused,
	)
	res.repo.afterMutation(ctx, "batch_upload")
	return result, nil
}

func (res *Resolver) resolveDirs(ctx context.Context, cache map[string]*string, dirs []string, result *BatchResult) (*string, error) {
	parentID := cache[""]
	key := ""
	for _, segment := range dirs {
		if key == "" {
			key = segment
		} else {
			key = key + "/" + segment
		}

		if id, ok := cache[key]; ok {
			parentID = id
			continue
		}

		existing, err := res.repo.meta.FindFolder(ctx, res.repo.ownerID, parentID, segment)
		if err != nil {
			return nil, storeErr("find folder", err)
		}
		if existing != nil {
			result.FoldersReused++
			parentID = &existing.ID
			cache[key] = parentID
			continue
		}

		created, err := res.repo.insertFolder(ctx, segment, parentID)
		if err != nil {
			return nil, err
		}
		result.FoldersCreated++
		parentID = &created.ID
		cache[key] = parentID
	}
	return parentID, nil
}

func (res *Resolver) uploadOne(ctx context.Context, re resolvedEntry, parentID *string) (*models.Node, error) {
	if re.entry.Open == nil {
		return nil, validationErr("entry %q has no content", re.entry.Path)
	}
	rc, err := re.entry.Open()
	if err != nil {
		return nil, validationErr("open %q: %v", re.entry.Path, err)
	}
	defer rc.Close()

	return res.repo.putFile(ctx, FileUpload{
		Name:     re.fileName,
		MimeType: re.entry.MimeType,
		Content:  rc,
	}, parentID)
}

// splitUploadPath normalizes a client path into its directory segments and
// the trailing file name.
func splitUploadPath(p string) ([]string, string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	var segments []string
	for _, s := range strings.Split(p, "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			return nil, "", validationErr("path %q escapes the destination folder", p)
		}
		segments = append(segments, s)
	}
	if len(segments) == 0 {
		return nil, "", validationErr("path %q has no file name", p)
	}
	return segments[:len(segments)-1], segments[len(segments)-1], nil
}
