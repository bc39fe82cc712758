package port

import (
	"context"
	"errors"
	"io"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
)

var (
	ErrFileNotFound       = errors.New("file not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrStagedFileMissing  = errors.New("staged file missing")
	ErrFieldNotAllowed    = errors.New("upload field not allowed")
	ErrFileTooLarge       = errors.New("file exceeds size limit")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
)

// UploadPart is one named file part of an incoming multipart request.
type UploadPart struct {
	FieldName string
	FileName  string
	Reader    io.Reader
}

// UploadService defines the business logic for the staged-upload lifecycle.
type UploadService interface {
	// SaveUploads stages every part and returns descriptors keyed by field
	// name. Duplicate field names collapse last-write-wins.
	SaveUploads(ctx context.Context, parts []UploadPart) (map[string]*domain.StagedFile, error)

	// CreateAndMove commits a staged file: allocates a FileRecord, renames
	// the bytes into the permanent store, and persists the record.
	CreateAndMove(ctx context.Context, staged *domain.StagedFile, postID string) (*domain.FileRecord, error)

	// DeleteAndRemoveByID deletes the permanent bytes then the FileRecord.
	DeleteAndRemoveByID(ctx context.Context, fileID string) error

	// AddFile stages nothing itself; it commits an already staged file and
	// appends the new record ID to the post's file sequence.
	AddFile(ctx context.Context, staged *domain.StagedFile, postID string) (*domain.FileRecord, error)

	// RemoveFileByID removes one file from the post's sequence and deletes
	// its record and bytes.
	RemoveFileByID(ctx context.Context, postID, fileID string) error

	// DeleteAllFiles removes every file of the post concurrently and reports
	// per-file outcomes. The error carries the first failure, if any.
	DeleteAllFiles(ctx context.Context, postID string) (*domain.PurgeReport, error)

	// CreatePost creates the owning entity.
	CreatePost(ctx context.Context, creatorID, content string) (*domain.Post, error)

	// GetPost fetches the owning entity.
	GetPost(ctx context.Context, postID string) (*domain.Post, error)

	// DeletePost removes the post after cascading through DeleteAllFiles.
	DeletePost(ctx context.Context, postID string) (*domain.PurgeReport, error)

	// GetFile fetches a FileRecord.
	GetFile(ctx context.Context, fileID string) (*domain.FileRecord, error)

	// OpenFile returns a FileRecord together with its permanent byte stream.
	OpenFile(ctx context.Context, fileID string) (*domain.FileRecord, io.ReadCloser, error)
}
