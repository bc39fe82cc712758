package port

import (
	"context"
	"io"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
)

//go:generate mockgen -destination=../service/mocks/blobstore_mock.go -package=mocks -source=blobstore.go

// BlobStore owns the staging area and the permanent store on disk.
// Staged paths are unique per upload; promotion is a rename so a commit is
// atomic with respect to partial writes.
type BlobStore interface {
	// Stage writes the stream to a newly allocated unique staged path and
	// returns its descriptor. On a mid-stream failure the partial bytes stay
	// in the staging area for the reaper and an error is returned.
	Stage(ctx context.Context, fieldName, fileName string, reader io.Reader) (*domain.StagedFile, error)

	// Promote renames the staged bytes into the permanent store under the
	// given file ID and returns the destination path. A missing source
	// yields ErrStagedFileMissing; any other failure leaves the staged bytes
	// in place.
	Promote(ctx context.Context, stagedPath, fileID string) (string, error)

	// Open returns the byte stream of a permanent file.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes permanent bytes. Removing a missing path is an error
	// (a committed record must never silently lose its bytes).
	Remove(ctx context.Context, path string) error

	// ListStaged returns the immediate entries of the staging area.
	ListStaged(ctx context.Context) ([]domain.StagedEntry, error)

	// DropStaged recursively deletes one staging-area entry by name.
	// Deleting a missing entry is not an error.
	DropStaged(ctx context.Context, name string) error
}
