package drive

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable marks a failed round trip to the metadata or blob
	// store. The core never retries; the caller decides.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("node not found")
	// ErrPartialDownload is recorded per file during an archive export. It
	// never aborts the export.
	ErrPartialDownload = errors.New("file download failed")
	// ErrBlobOrphan is returned when the blob write of an upload succeeded
	// but the metadata insert did not.
	ErrBlobOrphan = errors.New("blob stored without metadata record")
)

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErr(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
