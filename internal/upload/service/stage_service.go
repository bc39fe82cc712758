package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
)

// stageService orchestrates writing incoming upload parts into the staging
// area and collapsing them into a field-name-keyed mapping.
type stageService struct {
	core *UploadServiceImpl
}

// newStageService creates the staging use-case service.
func newStageService(core *UploadServiceImpl) *stageService {
	return &stageService{core: core}
}

// saveUploads stages every part and returns descriptors keyed by field name.
// Duplicate field names collapse last-write-wins; the superseded staged
// entry is dropped immediately. Parts staged before a failing part stay in
// the staging area for the reaper.
func (s *stageService) saveUploads(ctx context.Context, parts []port.UploadPart) (map[string]*domain.StagedFile, error) {
	results := make(map[string]*domain.StagedFile, len(parts))

	for _, part := range parts {
		if err := s.checkField(part.FieldName); err != nil {
			return nil, err
		}

		staged, err := s.stagePart(ctx, part)
		if err != nil {
			logger.Errorw("Staging failed", "field", part.FieldName, "file_name", part.FileName, "error", err.Error())
			return nil, err
		}

		if previous, ok := results[part.FieldName]; ok {
			// Last-write-wins on duplicate field names.
			logger.Warnw("Duplicate upload field, keeping last file", "field", part.FieldName, "superseded", previous.OriginalName)
			s.dropStaged(ctx, previous.Path)
		}
		results[part.FieldName] = staged
	}

	return results, nil
}

// stagePart writes one part and applies the size and type filters.
func (s *stageService) stagePart(ctx context.Context, part port.UploadPart) (*domain.StagedFile, error) {
	maxSize := s.core.cfg.Upload.MaxFileSize
	reader := part.Reader
	if maxSize > 0 {
		// One extra byte so an oversized stream is detectable.
		reader = io.LimitReader(reader, maxSize+1)
	}

	staged, err := s.core.blob.Stage(ctx, part.FieldName, part.FileName, reader)
	if err != nil {
		return nil, err
	}

	if maxSize > 0 && staged.Size > maxSize {
		s.dropStaged(ctx, staged.Path)
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", port.ErrFileTooLarge, part.FileName, maxSize)
	}

	if err := s.checkType(staged); err != nil {
		// A filtered file is rejected outright, not left for the reaper.
		s.dropStaged(ctx, staged.Path)
		return nil, err
	}

	logger.Infow("Upload staged", "field", staged.FieldName, "file_name", staged.OriginalName, "staged_path", staged.Path, "size_bytes", staged.Size, "mime_type", staged.MimeType)
	return staged, nil
}

// checkField enforces the configured field allowlist. An empty allowlist
// accepts any field.
func (s *stageService) checkField(fieldName string) error {
	allowed := s.core.cfg.Upload.Fields
	if len(allowed) == 0 {
		return nil
	}
	for _, f := range allowed {
		if f == fieldName {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", port.ErrFieldNotAllowed, fieldName)
}

// checkType matches the sniffed MIME type or the file extension against the
// configured filters. An empty filter list accepts any type.
func (s *stageService) checkType(staged *domain.StagedFile) error {
	filters := s.core.cfg.Upload.AllowedTypes
	if len(filters) == 0 {
		return nil
	}

	ext := filepath.Ext(staged.OriginalName)
	for _, filter := range filters {
		if strings.HasPrefix(filter, ".") {
			if strings.EqualFold(ext, filter) {
				return nil
			}
			continue
		}
		if strings.HasPrefix(staged.MimeType, filter) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (%s)", port.ErrFileTypeNotAllowed, staged.OriginalName, staged.MimeType)
}

// dropStaged best-effort removes one staged entry by its path.
func (s *stageService) dropStaged(ctx context.Context, stagedPath string) {
	if err := s.core.blob.DropStaged(ctx, filepath.Base(stagedPath)); err != nil {
		logger.Warnw("Failed to drop staged entry", "staged_path", stagedPath, "error", err.Error())
	}
}
