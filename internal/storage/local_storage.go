package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud-drive/internal/auth"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

// LocalStorage keeps blobs as files under basePath, one file per key. Signed
// URLs point at the server's /blobs endpoint and carry a short-lived token.
type LocalStorage struct {
	basePath  string
	publicURL string
	secret    string
}

func NewLocalStorage(basePath, publicURL, secret string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
		secret:    secret,
	}, nil
}

func (ls *LocalStorage) pathFromKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") || path.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || strings.HasPrefix(clean, "../") || clean == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(clean)), nil
}

// UploadBlob writes to a temporary file and renames it into place, so an
// overwrite never leaves a half-written blob behind.
func (ls *LocalStorage) UploadBlob(ctx context.Context, key string, data io.Reader) error {
	filePath, err := ls.pathFromKey(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(filePath)

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &contextReader{ctx: ctx, r: data}); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filePath)
}

func (ls *LocalStorage) Open(ctx context.Context, key string) (*os.File, error) {
	filePath, err := ls.pathFromKey(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) DownloadBlob(ctx context.Context, key string) ([]byte, error) {
	file, err := ls.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(&contextReader{ctx: ctx, r: file})
}

// DeleteBlobs removes every key; keys that are already gone are not an error.
func (ls *LocalStorage) DeleteBlobs(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		filePath, err := ls.pathFromKey(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ls *LocalStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, err := ls.pathFromKey(key); err != nil {
		return "", err
	}
	token, err := auth.GenerateBlobToken(key, ls.secret, ttl)
	if err != nil {
		return "", fmt.Errorf("sign blob token: %w", err)
	}
	return ls.publicURL + "/blobs/" + url.PathEscape(token), nil
}

// Resolve returns the key a signed token grants access to.
func (ls *LocalStorage) Resolve(token string) (string, error) {
	return auth.VerifyBlobToken(token, ls.secret)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
