package service

import (
	"context"
	"io"
	"sync"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/config"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
)

// IDGenerator defines ID generation capability.
type IDGenerator interface {
	Next() (int64, error)
}

// UploadServiceImpl is the facade that wires use-case services for the
// staged-upload lifecycle.
type UploadServiceImpl struct {
	cfg   *config.Config
	blob  port.BlobStore
	files port.FileRepository
	posts port.PostRepository
	idGen IDGenerator

	// postLocks serializes Files-sequence writers per post. Single-process
	// deployment assumption: the lock does not span processes.
	postLocks sync.Map

	stageUseCase     *stageService
	commitUseCase    *commitService
	postFilesUseCase *postFilesService
}

// Ensure UploadServiceImpl implements port.UploadService.
var _ port.UploadService = (*UploadServiceImpl)(nil)

// NewUploadService builds the upload service facade and all use-case services.
func NewUploadService(cfg *config.Config, blob port.BlobStore, files port.FileRepository, posts port.PostRepository, idGen IDGenerator) *UploadServiceImpl {
	svc := &UploadServiceImpl{
		cfg:   cfg,
		blob:  blob,
		files: files,
		posts: posts,
		idGen: idGen,
	}

	svc.stageUseCase = newStageService(svc)
	svc.commitUseCase = newCommitService(svc)
	svc.postFilesUseCase = newPostFilesService(svc)

	return svc
}

// SaveUploads delegates staging orchestration to the stage use-case service.
func (s *UploadServiceImpl) SaveUploads(ctx context.Context, parts []port.UploadPart) (map[string]*domain.StagedFile, error) {
	return s.stageUseCase.saveUploads(ctx, parts)
}

// CreateAndMove delegates the commit protocol to the commit use-case service.
func (s *UploadServiceImpl) CreateAndMove(ctx context.Context, staged *domain.StagedFile, postID string) (*domain.FileRecord, error) {
	return s.commitUseCase.createAndMove(ctx, staged, postID)
}

// DeleteAndRemoveByID delegates the commit protocol's deletion mirror.
func (s *UploadServiceImpl) DeleteAndRemoveByID(ctx context.Context, fileID string) error {
	return s.commitUseCase.deleteAndRemoveByID(ctx, fileID)
}

// AddFile delegates owner binding to the post-files use-case service.
func (s *UploadServiceImpl) AddFile(ctx context.Context, staged *domain.StagedFile, postID string) (*domain.FileRecord, error) {
	return s.postFilesUseCase.addFile(ctx, staged, postID)
}

// RemoveFileByID delegates owner-side removal to the post-files use-case service.
func (s *UploadServiceImpl) RemoveFileByID(ctx context.Context, postID, fileID string) error {
	return s.postFilesUseCase.removeFileByID(ctx, postID, fileID)
}

// DeleteAllFiles delegates the concurrent purge to the post-files use-case service.
func (s *UploadServiceImpl) DeleteAllFiles(ctx context.Context, postID string) (*domain.PurgeReport, error) {
	return s.postFilesUseCase.deleteAllFiles(ctx, postID)
}

// CreatePost creates the owning entity.
func (s *UploadServiceImpl) CreatePost(ctx context.Context, creatorID, content string) (*domain.Post, error) {
	return s.postFilesUseCase.createPost(ctx, creatorID, content)
}

// GetPost fetches the owning entity.
func (s *UploadServiceImpl) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	return s.posts.Get(ctx, postID)
}

// DeletePost cascades file deletion before removing the post record.
func (s *UploadServiceImpl) DeletePost(ctx context.Context, postID string) (*domain.PurgeReport, error) {
	return s.postFilesUseCase.deletePost(ctx, postID)
}

// GetFile fetches a FileRecord.
func (s *UploadServiceImpl) GetFile(ctx context.Context, fileID string) (*domain.FileRecord, error) {
	return s.files.Get(ctx, fileID)
}

// OpenFile returns a FileRecord with its permanent byte stream.
func (s *UploadServiceImpl) OpenFile(ctx context.Context, fileID string) (*domain.FileRecord, io.ReadCloser, error) {
	record, err := s.files.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.blob.Open(ctx, record.Path)
	if err != nil {
		return nil, nil, err
	}
	return record, reader, nil
}

// lockPost returns the single-writer mutex for one post's Files sequence.
func (s *UploadServiceImpl) lockPost(postID string) *sync.Mutex {
	mu, _ := s.postLocks.LoadOrStore(postID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// purgeWorkers returns the purge fan-out width with safe default.
func (s *UploadServiceImpl) purgeWorkers() int {
	if s.cfg.Upload.PurgeWorkers > 0 {
		return s.cfg.Upload.PurgeWorkers
	}
	return 4
}
