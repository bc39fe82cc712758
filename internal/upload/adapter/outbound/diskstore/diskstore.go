package diskstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spaolacci/murmur3"
	"github.com/spf13/afero"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
	"github.com/anthanhphan/go-staged-file-store/pkg/idgen"
)

const (
	// permanentBuckets bounds the permanent store's directory fan-out.
	permanentBuckets = 256

	defaultMimeType = "application/octet-stream"
)

// DiskStore implements port.BlobStore on a filesystem. The staging area and
// permanent store are sibling namespaces; promotion is a rename, so both
// must live on the same device.
type DiskStore struct {
	fs     afero.Fs
	tmpDir string
	dstDir string
	idGen  *idgen.Snowflake
}

// Ensure DiskStore implements port.BlobStore.
var _ port.BlobStore = (*DiskStore)(nil)

// NewDiskStore initializes the store and ensures both roots exist.
func NewDiskStore(fs afero.Fs, tmpDir, dstDir string, idGen *idgen.Snowflake) (*DiskStore, error) {
	s := &DiskStore{
		fs:     fs,
		tmpDir: filepath.Clean(tmpDir),
		dstDir: filepath.Clean(dstDir),
		idGen:  idGen,
	}

	if err := fs.MkdirAll(s.tmpDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}
	if err := fs.MkdirAll(s.dstDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create permanent dir: %w", err)
	}

	return s, nil
}

// Stage writes the incoming stream under a snowflake-unique staged path.
// A partial write stays in the staging area; the reaper reclaims it.
func (s *DiskStore) Stage(ctx context.Context, fieldName, fileName string, reader io.Reader) (*domain.StagedFile, error) {
	token, err := s.idGen.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate staged path token: %w", err)
	}

	stagedPath := filepath.Join(s.tmpDir, fmt.Sprintf("%d_%s", token, sanitizeName(fileName)))

	dst, err := s.fs.OpenFile(stagedPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	written, copyErr := io.Copy(dst, reader)
	closeErr := dst.Close()
	if copyErr != nil {
		return nil, fmt.Errorf("failed to stream upload to staging area: %w", copyErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to finish staged write: %w", closeErr)
	}

	return &domain.StagedFile{
		FieldName:    fieldName,
		OriginalName: fileName,
		MimeType:     s.detectMime(stagedPath),
		Path:         stagedPath,
		Size:         written,
	}, nil
}

// detectMime sniffs the staged bytes; content beats any client-sent header.
func (s *DiskStore) detectMime(path string) string {
	f, err := s.fs.Open(path)
	if err != nil {
		return defaultMimeType
	}
	defer func() { _ = f.Close() }()

	m, err := mimetype.DetectReader(f)
	if err != nil {
		return defaultMimeType
	}
	return m.String()
}

// Promote renames staged bytes into the permanent store. Rename keeps the
// commit atomic: the destination either has the whole file or nothing.
func (s *DiskStore) Promote(ctx context.Context, stagedPath, fileID string) (string, error) {
	if _, err := s.fs.Stat(stagedPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", port.ErrStagedFileMissing, stagedPath)
		}
		return "", fmt.Errorf("failed to stat staged file: %w", err)
	}

	bucketDir := filepath.Join(s.dstDir, s.bucketFor(fileID))
	if err := s.fs.MkdirAll(bucketDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create permanent bucket dir: %w", err)
	}

	destPath := filepath.Join(bucketDir, fileID+filepath.Ext(stagedPath))
	if err := s.fs.Rename(stagedPath, destPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", port.ErrStagedFileMissing, stagedPath)
		}
		// Staged bytes stay in place for the reaper.
		return "", fmt.Errorf("failed to move staged file to permanent store: %w", err)
	}

	return destPath, nil
}

// bucketFor hashes the file ID into a fixed permanent-store sub-directory.
func (s *DiskStore) bucketFor(fileID string) string {
	return fmt.Sprintf("%02x", murmur3.Sum64([]byte(fileID))%permanentBuckets)
}

// Open returns the permanent byte stream for a committed file.
func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open permanent file: %w", err)
	}
	return f, nil
}

// Remove deletes permanent bytes. Missing bytes for a committed record are
// an error; the caller must keep the record when this fails.
func (s *DiskStore) Remove(ctx context.Context, path string) error {
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove permanent file: %w", err)
	}
	return nil
}

// ListStaged returns the immediate staging-area entries with their mtimes.
func (s *DiskStore) ListStaged(ctx context.Context) ([]domain.StagedEntry, error) {
	infos, err := afero.ReadDir(s.fs, s.tmpDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list staging area: %w", err)
	}

	entries := make([]domain.StagedEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, domain.StagedEntry{
			Name:    info.Name(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// DropStaged recursively deletes one staging-area entry. A missing entry is
// not an error and partially written contents never block the delete.
func (s *DiskStore) DropStaged(ctx context.Context, name string) error {
	if err := s.fs.RemoveAll(filepath.Join(s.tmpDir, filepath.Base(name))); err != nil {
		return fmt.Errorf("failed to drop staged entry: %w", err)
	}
	return nil
}

// sanitizeName strips path components and whitespace from client-supplied
// file names before they become part of a staged path.
func sanitizeName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, base)
}
