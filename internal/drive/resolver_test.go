package drive_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/drive/drivetest"
	"cloud-drive/internal/models"

	"github.com/stretchr/testify/require"
)

func entry(path, content string) drive.UploadEntry {
	return drive.UploadEntry{
		Path:     path,
		MimeType: "text/plain",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func folderNamed(store *drivetest.Store, name string) []models.Node {
	return store.Nodes(func(n *models.Node) bool { return n.IsFolder && n.Name == name })
}

func TestResolverUpload_ReusesFoldersOnSecondRun(t *testing.T) {
	store := drivetest.NewStore()
	dest := store.PutFolder(ownerID, nil, "Uploads")
	resolver := drive.NewResolver(newTestRepo(store))
	ctx := context.Background()

	batch := []drive.UploadEntry{
		entry("a/x.txt", "x"),
		entry("a/y.txt", "y"),
		entry("b/z.txt", "z"),
	}

	first, err := resolver.Upload(ctx, &dest.ID, batch)
	require.NoError(t, err)
	require.Equal(t, 2, first.FoldersCreated)
	require.Zero(t, first.FoldersReused)
	require.Len(t, first.Files, 3)

	second, err := resolver.Upload(ctx, &dest.ID, batch)
	require.NoError(t, err)
	require.Zero(t, second.FoldersCreated)
	require.Len(t, second.Files, 3)

	require.Len(t, folderNamed(store, "a"), 1)
	require.Len(t, folderNamed(store, "b"), 1)
	files := store.Nodes(func(n *models.Node) bool { return !n.IsFolder })
	require.Len(t, files, 6)

	a := folderNamed(store, "a")[0]
	require.Equal(t, dest.ID, *a.ParentID)
	for _, f := range files {
		require.NotEqual(t, dest.ID, *f.ParentID)
	}
}

func TestResolverUpload_NestedPathsAndRootFiles(t *testing.T) {
	store := drivetest.NewStore()
	resolver := drive.NewResolver(newTestRepo(store))

	result, err := resolver.Upload(context.Background(), nil, []drive.UploadEntry{
		entry("photos/2024/summer/beach.jpg", "1"),
		entry("readme.txt", "2"),
		entry(`photos\2024\winter.jpg`, "3"),
		entry("./photos//2024/./spring.jpg", "4"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.FoldersCreated)
	require.Equal(t, "readme.txt", result.Files[0].Name)
	require.Nil(t, result.Files[0].ParentID)

	year := folderNamed(store, "2024")
	require.Len(t, year, 1)
	children, err := store.QueryChildren(context.Background(), ownerID, &year[0].ID, false)
	require.NoError(t, err)
	require.Equal(t, []string{"summer", "spring.jpg", "winter.jpg"}, names(children))
}

func TestResolverUpload_FolderNamesAreCaseSensitive(t *testing.T) {
	store := drivetest.NewStore()
	store.PutFolder(ownerID, nil, "Docs")
	resolver := drive.NewResolver(newTestRepo(store))

	result, err := resolver.Upload(context.Background(), nil, []drive.UploadEntry{entry("docs/a.txt", "a")})
	require.NoError(t, err)
	require.Equal(t, 1, result.FoldersCreated)
	require.Zero(t, result.FoldersReused)
}

func TestResolverUpload_ExistingFolderIsReused(t *testing.T) {
	store := drivetest.NewStore()
	existing := store.PutFolder(ownerID, nil, "Docs")
	resolver := drive.NewResolver(newTestRepo(store))

	result, err := resolver.Upload(context.Background(), nil, []drive.UploadEntry{
		entry("Docs/a.txt", "a"),
		entry("Docs/b.txt", "b"),
	})
	require.NoError(t, err)
	require.Zero(t, result.FoldersCreated)
	require.Equal(t, 1, result.FoldersReused)
	for _, f := range result.Files {
		require.Equal(t, existing.ID, *f.ParentID)
	}
}

func TestResolverUpload_RejectsInvalidPaths(t *testing.T) {
	store := drivetest.NewStore()
	resolver := drive.NewResolver(newTestRepo(store))

	for _, p := range []string{"", "/", "a/../../etc/passwd", "./."} {
		_, err := resolver.Upload(context.Background(), nil, []drive.UploadEntry{entry(p, "x")})
		require.ErrorIs(t, err, drive.ErrValidation, "path %q", p)
	}
	require.Empty(t, store.Nodes(nil))
	require.Zero(t, store.BlobCount())
}

func TestResolverUpload_StopsAtFirstFailure(t *testing.T) {
	store := drivetest.NewStore()
	resolver := drive.NewResolver(newTestRepo(store))
	errRead := errors.New("file vanished")

	broken := drive.UploadEntry{
		Path: "a/broken.txt",
		Open: func() (io.ReadCloser, error) { return nil, errRead },
	}
	result, err := resolver.Upload(context.Background(), nil, []drive.UploadEntry{
		entry("a/first.txt", "1"),
		broken,
		entry("a/never.txt", "3"),
	})
	require.ErrorIs(t, err, drive.ErrValidation)
	require.Contains(t, err.Error(), "a/broken.txt")
	require.Len(t, result.Files, 1)

	retry, err := resolver.Upload(context.Background(), nil, []drive.UploadEntry{entry("a/never.txt", "3")})
	require.NoError(t, err)
	require.Equal(t, 1, retry.FoldersReused)
}
