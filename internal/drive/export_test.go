package drive_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"cloud-drive/internal/drive"
	"cloud-drive/internal/drive/drivetest"
	"cloud-drive/internal/models"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

type progressLog struct {
	mu       sync.Mutex
	percents []int
	messages []string
}

func (p *progressLog) record(pct int, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.percents = append(p.percents, pct)
	p.messages = append(p.messages, msg)
}

func newTestExporter(store *drivetest.Store, opts ...drive.ExporterOption) *drive.Exporter {
	return drive.NewExporter(store, store, ownerID, slog.New(slog.DiscardHandler), opts...)
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(body)
	}
	return entries
}

func entryNames(entries map[string]string) []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func TestExport_EmptyFolder(t *testing.T) {
	store := drivetest.NewStore()
	empty := store.PutFolder(ownerID, nil, "Empty")
	progress := &progressLog{}

	archive, err := newTestExporter(store).Export(context.Background(), &empty.ID, progress.record)
	require.NoError(t, err)

	require.Equal(t, "Empty.zip", archive.Name)
	require.Empty(t, readArchive(t, archive.Data))
	require.Equal(t, []int{5, 100}, progress.percents)
}

func TestExport_WholeDriveUsesDefaultName(t *testing.T) {
	store := drivetest.NewStore()
	docs := store.PutFolder(ownerID, nil, "Docs")
	store.PutFile(ownerID, nil, "top.txt", "top")
	store.PutFile(ownerID, &docs.ID, "inner.txt", "inner")
	store.PutFile(99, nil, "foreign.txt", "no")

	archive, err := newTestExporter(store).Export(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, drive.DefaultArchiveName+".zip", archive.Name)

	entries := readArchive(t, archive.Data)
	require.Equal(t, []string{"Docs/", "Docs/inner.txt", "top.txt"}, entryNames(entries))
	require.Equal(t, "inner", entries["Docs/inner.txt"])
	require.Equal(t, 2, archive.Files)
	require.Equal(t, 1, archive.Folders)

	custom, err := newTestExporter(store, drive.WithDefaultName("Backup")).Export(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Backup.zip", custom.Name)
}

func TestExport_FailedDownloadBecomesPlaceholder(t *testing.T) {
	store := drivetest.NewStore()
	folder := store.PutFolder(ownerID, nil, "Reports")
	store.PutFile(ownerID, &folder.ID, "q1.pdf", "one")
	broken := store.PutFile(ownerID, &folder.ID, "q2.pdf", "two")
	store.PutFile(ownerID, &folder.ID, "q3.pdf", "three")
	store.FailDownload(*broken.StoragePath, errors.New("503 from storage"))
	progress := &progressLog{}

	archive, err := newTestExporter(store).Export(context.Background(), &folder.ID, progress.record)
	require.NoError(t, err)

	entries := readArchive(t, archive.Data)
	require.Equal(t, []string{"q1.pdf", "q2.pdf.error.txt", "q3.pdf"}, entryNames(entries))
	require.Equal(t, "Failed to download this file.", entries["q2.pdf.error.txt"])
	require.Equal(t, 2, archive.Files)

	require.Len(t, archive.Failures, 1)
	require.Equal(t, "q2.pdf", archive.Failures[0].Path)
	require.ErrorIs(t, archive.Failures[0].Err, drive.ErrPartialDownload)

	require.Equal(t, 100, progress.percents[len(progress.percents)-1])
}

func TestExport_ProgressIsMonotonic(t *testing.T) {
	store := drivetest.NewStore()
	root := store.PutFolder(ownerID, nil, "Root")
	parent := &root.ID
	for depth := 0; depth < 3; depth++ {
		for i := 0; i < 7; i++ {
			store.PutFile(ownerID, parent, string(rune('a'+i))+".txt", "data")
		}
		sub := store.PutFolder(ownerID, parent, "level")
		parent = &sub.ID
	}
	progress := &progressLog{}

	_, err := newTestExporter(store, drive.WithConcurrency(3)).Export(context.Background(), &root.ID, progress.record)
	require.NoError(t, err)

	require.True(t, sort.IntsAreSorted(progress.percents), "percents %v", progress.percents)
	require.Equal(t, 5, progress.percents[0])
	require.Equal(t, 100, progress.percents[len(progress.percents)-1])
	require.Contains(t, progress.messages, "Zipping 21/21 files...")
	require.Contains(t, progress.percents, 90)
	require.Contains(t, progress.percents, 95)
}

func TestExport_DotFolderNamesStayInsideArchive(t *testing.T) {
	store := drivetest.NewStore()
	up := store.PutFolder(ownerID, nil, "..")
	here := store.PutFolder(ownerID, nil, ".")
	slashed := store.PutFolder(ownerID, nil, `a\b`)
	store.PutFile(ownerID, &up.ID, "evil.txt", "e")
	store.PutFile(ownerID, &here.ID, "flat.txt", "f")
	store.PutFile(ownerID, &slashed.ID, `c\d.txt`, "cd")

	archive, err := newTestExporter(store).Export(context.Background(), nil, nil)
	require.NoError(t, err)

	entries := readArchive(t, archive.Data)
	require.Equal(t, []string{"_/", "_/flat.txt", "__/", "__/evil.txt", "a_b/", "a_b/c_d.txt"}, entryNames(entries))
	require.Equal(t, "e", entries["__/evil.txt"])
	require.Equal(t, 3, archive.Folders)
}

func TestExport_SiblingNameClashesAreNumbered(t *testing.T) {
	store := drivetest.NewStore()
	root := store.PutFolder(ownerID, nil, "Root")
	store.PutFile(ownerID, &root.ID, "report.pdf", "first")
	store.PutFile(ownerID, &root.ID, "report.pdf", "second")
	store.PutFile(ownerID, &root.ID, "a/b", "slash")
	store.PutFile(ownerID, &root.ID, "a_b", "underscore")
	store.PutFolder(ownerID, &root.ID, "Photos")
	store.PutFolder(ownerID, &root.ID, "Photos")

	archive, err := newTestExporter(store).Export(context.Background(), &root.ID, nil)
	require.NoError(t, err)

	entries := readArchive(t, archive.Data)
	require.Equal(t, []string{"Photos (1)/", "Photos/", "a_b", "a_b (1)", "report (1).pdf", "report.pdf"}, entryNames(entries))
	require.ElementsMatch(t, []string{"first", "second"}, []string{entries["report.pdf"], entries["report (1).pdf"]})
	require.Equal(t, 4, archive.Files)
	require.Equal(t, 2, archive.Folders)
}

// growingStore adds files to the drive root when the root is listed for the
// second time, i.e. between the count and the assembly of an export.
type growingStore struct {
	*drivetest.Store
	rootListings int
	extra        int
}

func (g *growingStore) QueryChildren(ctx context.Context, owner int64, parentID *string, includeTrashed bool) ([]models.Node, error) {
	if parentID == nil {
		g.rootListings++
		if g.rootListings == 2 {
			for i := 0; i < g.extra; i++ {
				g.PutFile(owner, nil, fmt.Sprintf("late%d.txt", i), "late")
			}
		}
	}
	return g.Store.QueryChildren(ctx, owner, parentID, includeTrashed)
}

func TestExport_ProgressStaysInRangeWhenTreeGrows(t *testing.T) {
	store := drivetest.NewStore()
	store.PutFile(ownerID, nil, "a.txt", "a")
	store.PutFile(ownerID, nil, "b.txt", "b")
	grow := &growingStore{Store: store, extra: 5}
	progress := &progressLog{}

	exporter := drive.NewExporter(grow, store, ownerID, slog.New(slog.DiscardHandler))
	archive, err := exporter.Export(context.Background(), nil, progress.record)
	require.NoError(t, err)
	require.Equal(t, 7, archive.Files)

	require.True(t, sort.IntsAreSorted(progress.percents), "percents %v", progress.percents)
	for _, pct := range progress.percents {
		require.LessOrEqual(t, pct, 100)
	}
	require.Contains(t, progress.percents, 95)
	require.Contains(t, progress.messages, "Finalizing archive...")
	require.Equal(t, 100, progress.percents[len(progress.percents)-1])
	require.Equal(t, "Archive ready", progress.messages[len(progress.messages)-1])
}

func TestExport_SkipsTrashedSubtrees(t *testing.T) {
	store := drivetest.NewStore()
	root := store.PutFolder(ownerID, nil, "Root")
	binned := store.PutFolder(ownerID, &root.ID, "Binned")
	store.PutFile(ownerID, &binned.ID, "hidden.txt", "h")
	store.PutFile(ownerID, &root.ID, "shown.txt", "s")
	repo := newTestRepo(store)
	require.NoError(t, repo.MoveToTrash(context.Background(), binned.ID))

	archive, err := newTestExporter(store).Export(context.Background(), &root.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"shown.txt"}, entryNames(readArchive(t, archive.Data)))
}

func TestExport_InvalidTargets(t *testing.T) {
	store := drivetest.NewStore()
	file := store.PutFile(ownerID, nil, "a.txt", "a")
	exporter := newTestExporter(store)
	ctx := context.Background()

	missing := "missing"
	_, err := exporter.Export(ctx, &missing, nil)
	require.ErrorIs(t, err, drive.ErrNotFound)

	_, err = exporter.Export(ctx, &file.ID, nil)
	require.ErrorIs(t, err, drive.ErrValidation)
}

func TestExport_StoreFailureAborts(t *testing.T) {
	store := drivetest.NewStore()
	store.PutFile(ownerID, nil, "a.txt", "a")
	store.Fail("QueryChildren", errBoom)

	archive, err := newTestExporter(store).Export(context.Background(), nil, nil)
	require.ErrorIs(t, err, drive.ErrStoreUnavailable)
	require.Nil(t, archive)
}

func TestExport_Cancelled(t *testing.T) {
	store := drivetest.NewStore()
	store.PutFile(ownerID, nil, "a.txt", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	archive, err := newTestExporter(store).Export(ctx, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, archive)
}
