package service

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/config"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
	"github.com/anthanhphan/go-staged-file-store/pkg/idgen"
)

// newStagingService runs the stage use-case against a real disk store on an
// in-memory filesystem.
func newStagingService(t *testing.T, mutate func(*config.Config)) (*UploadServiceImpl, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	idGen, err := idgen.New(1, nil)
	require.NoError(t, err)

	blob, err := diskstore.NewDiskStore(fs, "/tmp/uploads", "/data/files", idGen)
	require.NoError(t, err)

	svc := newTestService(blob, newMemFileRepo(), newMemPostRepo(), mutate)
	return svc, fs
}

func stagedEntryCount(t *testing.T, fs afero.Fs) int {
	t.Helper()
	infos, err := afero.ReadDir(fs, "/tmp/uploads")
	require.NoError(t, err)
	return len(infos)
}

func TestSaveUploadsMultipleFields(t *testing.T) {
	svc, fs := newStagingService(t, nil)

	staged, err := svc.SaveUploads(context.Background(), []port.UploadPart{
		{FieldName: "avatar", FileName: "me.txt", Reader: strings.NewReader("portrait bytes")},
		{FieldName: "attachment", FileName: "notes.txt", Reader: strings.NewReader("some notes")},
	})
	require.NoError(t, err)

	require.Len(t, staged, 2)
	assert.Equal(t, "me.txt", staged["avatar"].OriginalName)
	assert.Equal(t, "notes.txt", staged["attachment"].OriginalName)
	assert.NotEqual(t, staged["avatar"].Path, staged["attachment"].Path)
	assert.Equal(t, 2, stagedEntryCount(t, fs))
}

func TestSaveUploadsLastWriteWins(t *testing.T) {
	svc, fs := newStagingService(t, nil)

	staged, err := svc.SaveUploads(context.Background(), []port.UploadPart{
		{FieldName: "attachment", FileName: "first.txt", Reader: strings.NewReader("first")},
		{FieldName: "attachment", FileName: "second.txt", Reader: strings.NewReader("second")},
	})
	require.NoError(t, err)

	require.Len(t, staged, 1)
	assert.Equal(t, "second.txt", staged["attachment"].OriginalName)
	// The superseded staged entry was dropped immediately.
	assert.Equal(t, 1, stagedEntryCount(t, fs))
}

func TestSaveUploadsFieldAllowlist(t *testing.T) {
	svc, fs := newStagingService(t, func(cfg *config.Config) {
		cfg.Upload.Fields = []string{"avatar"}
	})

	_, err := svc.SaveUploads(context.Background(), []port.UploadPart{
		{FieldName: "malicious", FileName: "x.txt", Reader: strings.NewReader("nope")},
	})
	require.ErrorIs(t, err, port.ErrFieldNotAllowed)
	assert.Equal(t, 0, stagedEntryCount(t, fs))
}

func TestSaveUploadsSizeLimit(t *testing.T) {
	svc, fs := newStagingService(t, func(cfg *config.Config) {
		cfg.Upload.MaxFileSize = 8
	})

	_, err := svc.SaveUploads(context.Background(), []port.UploadPart{
		{FieldName: "attachment", FileName: "big.txt", Reader: strings.NewReader("way more than eight bytes")},
	})
	require.ErrorIs(t, err, port.ErrFileTooLarge)
	// An oversized file is rejected outright, not left for the reaper.
	assert.Equal(t, 0, stagedEntryCount(t, fs))
}

func TestSaveUploadsTypeFilter(t *testing.T) {
	t.Run("RejectsByExtension", func(t *testing.T) {
		svc, fs := newStagingService(t, func(cfg *config.Config) {
			cfg.Upload.AllowedTypes = []string{".png"}
		})

		_, err := svc.SaveUploads(context.Background(), []port.UploadPart{
			{FieldName: "attachment", FileName: "notes.txt", Reader: strings.NewReader("plain text")},
		})
		require.ErrorIs(t, err, port.ErrFileTypeNotAllowed)
		assert.Equal(t, 0, stagedEntryCount(t, fs))
	})

	t.Run("AcceptsByMimePrefix", func(t *testing.T) {
		svc, _ := newStagingService(t, func(cfg *config.Config) {
			cfg.Upload.AllowedTypes = []string{"text/"}
		})

		staged, err := svc.SaveUploads(context.Background(), []port.UploadPart{
			{FieldName: "attachment", FileName: "notes.txt", Reader: strings.NewReader("plain text body")},
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(staged["attachment"].MimeType, "text/"))
	})
}
