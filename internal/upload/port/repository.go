package port

import (
	"context"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
)

//go:generate mockgen -destination=../service/mocks/repository_mock.go -package=mocks -source=repository.go

// FileRepository persists FileRecords. Get and Delete return ErrFileNotFound
// for unknown IDs.
type FileRepository interface {
	Save(ctx context.Context, record *domain.FileRecord) error
	Get(ctx context.Context, fileID string) (*domain.FileRecord, error)
	Delete(ctx context.Context, fileID string) error
}

// PostRepository persists Posts. Get and Delete return ErrPostNotFound for
// unknown IDs.
type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Delete(ctx context.Context, postID string) error
}
