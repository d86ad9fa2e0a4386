package drive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"cloud-drive/internal/models"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

// DefaultArchiveName names the archive of a whole-drive export.
const DefaultArchiveName = "TheCloud_Backup"

const (
	defaultExportConcurrency = 4
	errorPlaceholderSuffix   = ".error.txt"
	errorPlaceholderText     = "Failed to download this file."
)

// ProgressFunc receives a percentage in [0, 100] and a status line.
// Percentages passed to it never decrease within one export.
type ProgressFunc func(percent int, message string)

type FileFailure struct {
	Path string
	Err  error
}

type Archive struct {
	Name     string
	Data     []byte
	Files    int
	Folders  int
	Failures []FileFailure
}

type ExporterOption func(*Exporter)

// WithConcurrency bounds how many sibling files are downloaded at once.
func WithConcurrency(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithDefaultName(name string) ExporterOption {
	return func(e *Exporter) {
		if name != "" {
			e.defaultName = name
		}
	}
}

// Exporter assembles a zip archive of a subtree in two passes: one to count
// files so progress has a denominator, one to download and write them.
type Exporter struct {
	meta        MetadataStore
	blobs       BlobStore
	ownerID     int64
	logger      *slog.Logger
	concurrency int
	defaultName string
}

func NewExporter(meta MetadataStore, blobs BlobStore, ownerID int64, logger *slog.Logger, opts ...ExporterOption) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		meta:        meta,
		blobs:       blobs,
		ownerID:     ownerID,
		logger:      logger.With("owner_id", ownerID),
		concurrency: defaultExportConcurrency,
		defaultName: DefaultArchiveName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export archives the children of folderID, or the whole drive when it is
// nil. Failed downloads become placeholder entries and are listed in
// Archive.Failures; store errors and cancellation abort the export and
// discard whatever was assembled.
func (e *Exporter) Export(ctx context.Context, folderID *string, progress ProgressFunc) (*Archive, error) {
	rep := &progressReporter{fn: progress}

	name := e.defaultName
	if folderID != nil {
		node, err := e.meta.GetNode(ctx, e.ownerID, *folderID)
		if err != nil {
			return nil, storeErr("get export target", err)
		}
		if node == nil || node.IsTrashed {
			return nil, notFoundErr(*folderID)
		}
		if !node.IsFolder {
			return nil, validationErr("%q is not a folder", node.Name)
		}
		name = node.Name
	}
	archive := &Archive{Name: name + ".zip"}

	rep.report(5, "Counting files...")
	total := 0
	err := e.walk(ctx, folderID, "", walkVisitor{
		files: func(_ context.Context, files []archiveEntry) error {
			total += len(files)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if total == 0 {
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("finalize archive: %w", err)
		}
		archive.Data = buf.Bytes()
		rep.report(100, "Archive ready")
		return archive, nil
	}

	var processed atomic.Int64
	onFile := func() {
		// Files added after the count pass hold progress at the counted total.
		n := min(processed.Add(1), int64(total))
		pct := int(math.Round(float64(n)/float64(total)*80)) + 10
		rep.report(pct, fmt.Sprintf("Zipping %d/%d files...", n, total))
	}

	err = e.walk(ctx, folderID, "", walkVisitor{
		folder: func(dir string) error {
			archive.Folders++
			_, err := zw.Create(dir + "/")
			return err
		},
		files: func(ctx context.Context, files []archiveEntry) error {
			return e.addFiles(ctx, zw, files, archive, onFile)
		},
	})
	if err != nil {
		return nil, err
	}

	rep.report(95, "Finalizing archive...")
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	archive.Data = buf.Bytes()
	rep.report(100, "Archive ready")

	e.logger.Info("archive exported",
		"archive", archive.Name,
		"files", archive.Files,
		"failures", len(archive.Failures),
		"bytes", len(archive.Data),
	)
	return archive, nil
}

// archiveEntry is a node paired with its path inside the archive.
type archiveEntry struct {
	node models.Node
	path string
}

// walkVisitor receives the events of one traversal: a folder entered (by
// its archive path) and the file children of a folder, in listing order.
type walkVisitor struct {
	folder func(dir string) error
	files  func(ctx context.Context, files []archiveEntry) error
}

func (e *Exporter) walk(ctx context.Context, parentID *string, dir string, v walkVisitor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := e.meta.QueryChildren(ctx, e.ownerID, parentID, false)
	if err != nil {
		return storeErr("list folder for export", err)
	}

	var files, folders []archiveEntry
	taken := make(map[string]bool, len(children))
	for _, c := range children {
		if c.IsTrashed {
			continue
		}
		entry := archiveEntry{node: c, path: path.Join(dir, uniqueEntryName(c, taken))}
		if c.IsFolder {
			folders = append(folders, entry)
		} else {
			files = append(files, entry)
		}
	}

	if len(files) > 0 && v.files != nil {
		if err := v.files(ctx, files); err != nil {
			return err
		}
	}

	for _, f := range folders {
		sub := f.path
		if v.folder != nil {
			if err := v.folder(sub); err != nil {
				return err
			}
		}
		id := f.node.ID
		if err := e.walk(ctx, &id, sub, v); err != nil {
			return err
		}
	}
	return nil
}

type downloadResult struct {
	data []byte
	err  error
}

// addFiles downloads one folder's files concurrently and writes them into
// the archive in listing order. Files without a storage path are counted
// but get no entry.
func (e *Exporter) addFiles(ctx context.Context, zw *zip.Writer, files []archiveEntry, archive *Archive, onFile func()) error {
	results := make([]downloadResult, len(files))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range files {
		if files[i].node.StoragePath == nil {
			onFile()
			continue
		}
		g.Go(func() error {
			defer onFile()
			results[i].data, results[i].err = e.blobs.DownloadBlob(ctx, *files[i].node.StoragePath)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range files {
		f := &files[i].node
		if f.StoragePath == nil {
			continue
		}
		entry := files[i].path

		if err := results[i].err; err != nil {
			e.logger.Warn("export download failed", "node_id", f.ID, "path", entry, "error", err)
			archive.Failures = append(archive.Failures, FileFailure{
				Path: entry,
				Err:  fmt.Errorf("%s: %w: %w", entry, ErrPartialDownload, err),
			})
			w, err := zw.Create(entry + errorPlaceholderSuffix)
			if err != nil {
				return err
			}
			if _, err := w.Write([]byte(errorPlaceholderText)); err != nil {
				return err
			}
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry,
			Method:   zip.Deflate,
			Modified: f.UpdatedAt,
		})
		if err != nil {
			return err
		}
		if _, err := w.Write(results[i].data); err != nil {
			return err
		}
		archive.Files++
	}
	return nil
}

var separatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// entryName keeps a node name from introducing extra path levels or
// climbing out of its folder.
func entryName(name string) string {
	name = separatorReplacer.Replace(name)
	switch name {
	case "", ".":
		return "_"
	case "..":
		return "__"
	}
	return name
}

// uniqueEntryName returns the entry name for n that is not yet taken among
// its siblings, numbering repeats as "name (1).ext", "name (2).ext".
func uniqueEntryName(n models.Node, taken map[string]bool) string {
	name := entryName(n.Name)
	candidate := name
	if taken[candidate] {
		base, ext := name, ""
		if !n.IsFolder {
			ext = path.Ext(name)
			base = strings.TrimSuffix(name, ext)
		}
		for i := 1; taken[candidate]; i++ {
			candidate = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
	}
	taken[candidate] = true
	return candidate
}

type progressReporter struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last int
}

// report forwards an update unless it would move the percentage backwards,
// which can happen when concurrent downloads finish out of order.
func (p *progressReporter) report(pct int, msg string) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if pct < p.last {
		return
	}
	p.last = pct
	p.fn(pct, msg)
}
