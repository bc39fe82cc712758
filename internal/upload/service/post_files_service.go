package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/google/uuid"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
	"github.com/anthanhphan/go-staged-file-store/pkg/resilience"
)

// postFilesService binds committed files to their owning post and keeps the
// post's Files sequence consistent with the permanent store.
type postFilesService struct {
	core *UploadServiceImpl
}

// newPostFilesService creates the owner-binding use-case service.
func newPostFilesService(core *UploadServiceImpl) *postFilesService {
	return &postFilesService{core: core}
}

// createPost creates the owning entity with an empty file sequence.
func (s *postFilesService) createPost(ctx context.Context, creatorID, content string) (*domain.Post, error) {
	now := time.Now()
	post := &domain.Post{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Content:   content,
		Files:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.core.posts.Save(ctx, post); err != nil {
		return nil, err
	}

	logger.Infow("Post created", "post_id", post.ID, "creator_id", creatorID)
	return post, nil
}

// addFile commits a staged file and appends the record ID to the post's
// sequence. On any failure the sequence is left untouched.
func (s *postFilesService) addFile(ctx context.Context, staged *domain.StagedFile, postID string) (*domain.FileRecord, error) {
	mu := s.core.lockPost(postID)
	mu.Lock()
	defer mu.Unlock()

	post, err := s.core.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	record, err := s.core.commitUseCase.createAndMove(ctx, staged, postID)
	if err != nil {
		return nil, err
	}

	post.Files = append(post.Files, record.ID)
	post.UpdatedAt = time.Now()
	if err := s.core.posts.Save(ctx, post); err != nil {
		// The commit went through but the binding did not. Roll the fresh
		// record back so it cannot leak as an orphan.
		logger.Errorw("Post update failed after commit, rolling back file", "post_id", postID, "file_id", record.ID, "error", err.Error())
		if rbErr := s.core.commitUseCase.deleteAndRemoveByID(ctx, record.ID); rbErr != nil {
			logger.Warnw("Rollback of committed file failed", "file_id", record.ID, "error", rbErr.Error())
		}
		return nil, err
	}

	logger.Infow("File bound to post", "post_id", postID, "file_id", record.ID, "files_total", len(post.Files))
	return record, nil
}

// removeFileByID removes one file from the post's sequence by index so the
// ordering of the remainder is preserved. On any failure the sequence is
// left untouched.
func (s *postFilesService) removeFileByID(ctx context.Context, postID, fileID string) error {
	mu := s.core.lockPost(postID)
	mu.Lock()
	defer mu.Unlock()

	post, err := s.core.posts.Get(ctx, postID)
	if err != nil {
		return err
	}

	idx := post.FileIndex(fileID)
	if idx < 0 {
		return fmt.Errorf("%w: %s not owned by post %s", port.ErrFileNotFound, fileID, postID)
	}

	if err := s.core.commitUseCase.deleteAndRemoveByID(ctx, fileID); err != nil {
		return err
	}

	post.Files = append(post.Files[:idx], post.Files[idx+1:]...)
	post.UpdatedAt = time.Now()
	return s.core.posts.Save(ctx, post)
}

// deleteAllFiles removes every file of the post concurrently and reports
// per-file outcomes. Successes are not rolled back when others fail; the
// post keeps only the IDs that could not be removed, in their original
// order, so callers can retry exactly those.
func (s *postFilesService) deleteAllFiles(ctx context.Context, postID string) (*domain.PurgeReport, error) {
	mu := s.core.lockPost(postID)
	mu.Lock()
	defer mu.Unlock()

	post, err := s.core.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	return s.purgeLocked(ctx, post)
}

// purgeLocked deletes every file of an already-locked post.
func (s *postFilesService) purgeLocked(ctx context.Context, post *domain.Post) (*domain.PurgeReport, error) {
	fileIDs := make([]string, len(post.Files))
	copy(fileIDs, post.Files)

	logger.Infow("Purge started", "post_id", post.ID, "files", len(fileIDs))

	workers := s.core.purgeWorkers()
	pool := resilience.NewWorkerPool(workers, workers*2)

	// Outcomes are kept positional so the first failure is deterministic.
	outcomes := make([]error, len(fileIDs))
	var outcomeMu sync.Mutex

	for i, fileID := range fileIDs {
		i, fileID := i, fileID
		submitErr := pool.Submit(ctx, func() {
			err := s.core.commitUseCase.deleteAndRemoveByID(ctx, fileID)
			outcomeMu.Lock()
			outcomes[i] = err
			outcomeMu.Unlock()
			if err != nil {
				logger.Warnw("Purge item failed", "post_id", post.ID, "file_id", fileID, "error", err.Error())
			}
		})
		if submitErr != nil {
			outcomeMu.Lock()
			outcomes[i] = submitErr
			outcomeMu.Unlock()
		}
	}

	pool.Close()
	pool.Wait()

	report := &domain.PurgeReport{}
	var remaining []string
	var firstErr error
	for i, fileID := range fileIDs {
		if outcomes[i] == nil {
			report.Removed = append(report.Removed, fileID)
			continue
		}
		report.Failed = append(report.Failed, domain.PurgeFailure{FileID: fileID, Reason: outcomes[i].Error()})
		remaining = append(remaining, fileID)
		if firstErr == nil {
			firstErr = outcomes[i]
		}
	}

	if len(report.Removed) > 0 {
		post.Files = remaining
		if post.Files == nil {
			post.Files = []string{}
		}
		post.UpdatedAt = time.Now()
		if err := s.core.posts.Save(ctx, post); err != nil {
			logger.Errorw("Failed to persist post after purge", "post_id", post.ID, "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	logger.Infow("Purge finished", "post_id", post.ID, "removed", len(report.Removed), "failed", len(report.Failed))
	if firstErr != nil {
		return report, fmt.Errorf("purge failed for post %s: %w", post.ID, firstErr)
	}
	return report, nil
}

// deletePost cascades through the purge before removing the post record.
// The post survives when any of its files could not be removed.
func (s *postFilesService) deletePost(ctx context.Context, postID string) (*domain.PurgeReport, error) {
	mu := s.core.lockPost(postID)
	mu.Lock()
	defer mu.Unlock()

	post, err := s.core.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	report, err := s.purgeLocked(ctx, post)
	if err != nil {
		return report, err
	}

	if err := s.core.posts.Delete(ctx, postID); err != nil {
		return report, err
	}

	logger.Infow("Post deleted", "post_id", postID, "files_removed", len(report.Removed))
	return report, nil
}
