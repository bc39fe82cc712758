package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
)

// commitService implements the commit protocol: promote staged bytes into
// the permanent store by rename and persist the FileRecord binding them to
// an owner.
type commitService struct {
	core *UploadServiceImpl
}

// newCommitService creates the commit use-case service.
func newCommitService(core *UploadServiceImpl) *commitService {
	return &commitService{core: core}
}

// createAndMove commits one staged file for the given owner.
// A second call on the same descriptor fails with the missing-source error
// because the first rename consumed the staged path; one stream can never
// produce two records.
func (s *commitService) createAndMove(ctx context.Context, staged *domain.StagedFile, postID string) (*domain.FileRecord, error) {
	if staged == nil || staged.Path == "" {
		return nil, fmt.Errorf("%w: empty staged descriptor", port.ErrStagedFileMissing)
	}

	fileID, err := s.nextFileID()
	if err != nil {
		return nil, err
	}

	destPath, err := s.core.blob.Promote(ctx, staged.Path, fileID)
	if err != nil {
		// On a move failure the staged bytes stay put for the reaper.
		logger.Errorw("Commit move failed", "staged_path", staged.Path, "file_id", fileID, "error", err.Error())
		return nil, err
	}

	record := &domain.FileRecord{
		ID:           fileID,
		PostID:       postID,
		Path:         destPath,
		FieldName:    staged.FieldName,
		OriginalName: staged.OriginalName,
		MimeType:     staged.MimeType,
		Size:         staged.Size,
		CreatedAt:    time.Now(),
	}

	if err := s.core.files.Save(ctx, record); err != nil {
		// The bytes moved but the record did not persist. Remove the moved
		// bytes so no unrecorded permanent file survives.
		logger.Errorw("Commit persistence failed", "file_id", fileID, "dest_path", destPath, "error", err.Error())
		if removeErr := s.core.blob.Remove(ctx, destPath); removeErr != nil {
			logger.Warnw("Failed to remove unrecorded permanent file", "dest_path", destPath, "error", removeErr.Error())
		}
		return nil, err
	}

	logger.Infow("Commit completed", "file_id", fileID, "post_id", postID, "dest_path", destPath, "size_bytes", record.Size)
	return record, nil
}

// nextFileID allocates a unique file ID from the configured generator.
func (s *commitService) nextFileID() (string, error) {
	id, err := s.core.idGen.Next()
	if err != nil {
		return "", fmt.Errorf("failed to generate file id: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// deleteAndRemoveByID deletes the permanent bytes then the FileRecord.
// When byte deletion fails the record is kept so no dangling reference is
// ever persisted.
func (s *commitService) deleteAndRemoveByID(ctx context.Context, fileID string) error {
	record, err := s.core.files.Get(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.core.blob.Remove(ctx, record.Path); err != nil {
		logger.Errorw("File byte deletion failed, keeping record", "file_id", fileID, "path", record.Path, "error", err.Error())
		return err
	}

	if err := s.core.files.Delete(ctx, fileID); err != nil {
		return err
	}

	logger.Infow("File deleted", "file_id", fileID, "path", record.Path)
	return nil
}
