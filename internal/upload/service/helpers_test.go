package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/config"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
	"github.com/anthanhphan/go-staged-file-store/pkg/idgen"
)

// fakeBlob is an in-memory port.BlobStore with injectable failures.
type fakeBlob struct {
	mu        sync.Mutex
	nextToken int64
	staged    map[string][]byte // staged path -> bytes
	modTimes  map[string]time.Time
	permanent map[string][]byte // permanent path -> bytes
	dropped   []string

	stageErr   error
	promoteErr error
	listErr    error
	removeErr  map[string]error // keyed by permanent path
	dropErr    map[string]error // keyed by entry name
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{
		staged:    make(map[string][]byte),
		modTimes:  make(map[string]time.Time),
		permanent: make(map[string][]byte),
		removeErr: make(map[string]error),
		dropErr:   make(map[string]error),
	}
}

func (f *fakeBlob) Stage(ctx context.Context, fieldName, fileName string, reader io.Reader) (*domain.StagedFile, error) {
	if f.stageErr != nil {
		return nil, f.stageErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextToken++
	path := filepath.Join("tmp", fmt.Sprintf("%d_%s", f.nextToken, fileName))
	f.staged[path] = data
	f.modTimes[path] = time.Now()

	return &domain.StagedFile{
		FieldName:    fieldName,
		OriginalName: fileName,
		MimeType:     "application/octet-stream",
		Path:         path,
		Size:         int64(len(data)),
	}, nil
}

func (f *fakeBlob) Promote(ctx context.Context, stagedPath, fileID string) (string, error) {
	if f.promoteErr != nil {
		return "", f.promoteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.staged[stagedPath]
	if !ok {
		return "", fmt.Errorf("%w: %s", port.ErrStagedFileMissing, stagedPath)
	}
	destPath := filepath.Join("dst", fileID)
	f.permanent[destPath] = data
	delete(f.staged, stagedPath)
	delete(f.modTimes, stagedPath)
	return destPath, nil
}

func (f *fakeBlob) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.permanent[path]
	if !ok {
		return nil, fmt.Errorf("no permanent file at %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlob) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.removeErr[path]; ok {
		return err
	}
	if _, ok := f.permanent[path]; !ok {
		return fmt.Errorf("no permanent file at %s", path)
	}
	delete(f.permanent, path)
	return nil
}

func (f *fakeBlob) ListStaged(ctx context.Context) ([]domain.StagedEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]domain.StagedEntry, 0, len(f.staged))
	for path := range f.staged {
		entries = append(entries, domain.StagedEntry{
			Name:    filepath.Base(path),
			ModTime: f.modTimes[path],
		})
	}
	return entries, nil
}

func (f *fakeBlob) DropStaged(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.dropErr[name]; ok {
		return err
	}
	delete(f.staged, filepath.Join("tmp", name))
	delete(f.modTimes, filepath.Join("tmp", name))
	f.dropped = append(f.dropped, name)
	return nil
}

func (f *fakeBlob) stagedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.staged)
}

func (f *fakeBlob) permanentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.permanent)
}

func (f *fakeBlob) droppedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dropped...)
}

// memFileRepo is an in-memory port.FileRepository.
type memFileRepo struct {
	mu        sync.Mutex
	records   map[string]*domain.FileRecord
	saveErr   error
	deleteErr map[string]error
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{
		records:   make(map[string]*domain.FileRecord),
		deleteErr: make(map[string]error),
	}
}

func (r *memFileRepo) Save(ctx context.Context, record *domain.FileRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *memFileRepo) Get(ctx context.Context, fileID string) (*domain.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrFileNotFound, fileID)
	}
	clone := *record
	return &clone, nil
}

func (r *memFileRepo) Delete(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.deleteErr[fileID]; ok {
		return err
	}
	if _, ok := r.records[fileID]; !ok {
		return fmt.Errorf("%w: %s", port.ErrFileNotFound, fileID)
	}
	delete(r.records, fileID)
	return nil
}

func (r *memFileRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// memPostRepo is an in-memory port.PostRepository.
type memPostRepo struct {
	mu           sync.Mutex
	posts        map[string]*domain.Post
	failNextSave error
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*domain.Post)}
}

func (r *memPostRepo) Save(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextSave != nil {
		err := r.failNextSave
		r.failNextSave = nil
		return err
	}
	clone := *post
	clone.Files = append([]string(nil), post.Files...)
	r.posts[post.ID] = &clone
	return nil
}

func (r *memPostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", port.ErrPostNotFound, postID)
	}
	clone := *post
	clone.Files = append([]string(nil), post.Files...)
	return &clone, nil
}

func (r *memPostRepo) Delete(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[postID]; !ok {
		return fmt.Errorf("%w: %s", port.ErrPostNotFound, postID)
	}
	delete(r.posts, postID)
	return nil
}

func (r *memPostRepo) has(postID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.posts[postID]
	return ok
}

// bytesReader returns a reader over n filler bytes.
func bytesReader(n int) io.Reader {
	return bytes.NewReader(bytes.Repeat([]byte{0xA5}, n))
}

// newTestService builds a service over in-memory fakes.
func newTestService(blob port.BlobStore, files port.FileRepository, posts port.PostRepository, mutate func(*config.Config)) *UploadServiceImpl {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	idGen, err := idgen.New(1, nil)
	if err != nil {
		panic(err)
	}
	return NewUploadService(cfg, blob, files, posts, idGen)
}
