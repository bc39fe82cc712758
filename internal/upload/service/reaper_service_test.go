package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-staged-file-store/pkg/idgen"
)

// backdate shifts a staged entry's mtime into the past.
func backdate(t *testing.T, blob *fakeBlob, stagedPath string, age time.Duration) {
	t.Helper()
	blob.mu.Lock()
	defer blob.mu.Unlock()
	_, ok := blob.modTimes[stagedPath]
	require.True(t, ok, "no staged entry at %s", stagedPath)
	blob.modTimes[stagedPath] = time.Now().Add(-age)
}

func TestReaperSweepExpiryQualification(t *testing.T) {
	blob := newFakeBlob()
	ctx := context.Background()

	old, err := blob.Stage(ctx, "attachment", "old.bin", bytesReader(8))
	require.NoError(t, err)
	_, err = blob.Stage(ctx, "attachment", "fresh.bin", bytesReader(8))
	require.NoError(t, err)
	backdate(t, blob, old.Path, 2*time.Hour)

	reaper := NewTempReaper(blob, time.Hour, time.Minute, 2)
	reaper.sweep(ctx, false)

	assert.Equal(t, 1, blob.stagedCount())
	assert.Equal(t, []string{filepath.Base(old.Path)}, blob.droppedNames())
}

func TestReaperForcedSweepDeletesFreshEntries(t *testing.T) {
	blob := newFakeBlob()
	ctx := context.Background()

	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		_, err := blob.Stage(ctx, "attachment", name, bytesReader(8))
		require.NoError(t, err)
	}

	reaper := NewTempReaper(blob, time.Hour, time.Minute, 2)
	reaper.sweep(ctx, true)

	assert.Equal(t, 0, blob.stagedCount())
	assert.Len(t, blob.dropped, 3)
}

func TestReaperSweepIsolatesEntryFailures(t *testing.T) {
	blob := newFakeBlob()
	ctx := context.Background()

	stuck, err := blob.Stage(ctx, "attachment", "stuck.bin", bytesReader(8))
	require.NoError(t, err)
	_, err = blob.Stage(ctx, "attachment", "fine.bin", bytesReader(8))
	require.NoError(t, err)

	blob.dropErr[filepath.Base(stuck.Path)] = errors.New("permission denied")

	reaper := NewTempReaper(blob, time.Hour, time.Minute, 2)
	reaper.sweep(ctx, true)

	// The failing entry stays behind; everything else was still deleted.
	assert.Equal(t, 1, blob.stagedCount())

	dropped := blob.droppedNames()
	require.Len(t, dropped, 1)
	assert.Contains(t, dropped[0], "fine.bin")
}

func TestReaperSweepToleratesListFailure(t *testing.T) {
	blob := newFakeBlob()
	blob.listErr = errors.New("staging dir unreadable")

	reaper := NewTempReaper(blob, time.Hour, time.Minute, 2)
	// Must return without panicking; nothing to assert beyond that.
	reaper.sweep(context.Background(), true)
}

func TestReaperStopRunsFinalForcedSweep(t *testing.T) {
	blob := newFakeBlob()
	ctx := context.Background()

	reaper := NewTempReaper(blob, time.Hour, time.Hour, 2)
	reaper.Start(ctx)

	// Staged after the startup sweep and far too fresh for a periodic one.
	_, err := blob.Stage(ctx, "attachment", "drained.bin", bytesReader(8))
	require.NoError(t, err)

	reaper.Stop()
	assert.Equal(t, 0, blob.stagedCount())

	// Stop is idempotent.
	reaper.Stop()
}

// End-to-end timing against a real disk store: a staged entry crosses the
// expiry threshold and a periodic sweep reclaims it.
func TestReaperReclaimsExpiredStagedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	idGen, err := idgen.New(1, nil)
	require.NoError(t, err)
	blob, err := diskstore.NewDiskStore(fs, "/tmp/uploads", "/data/files", idGen)
	require.NoError(t, err)

	ctx := context.Background()
	reaper := NewTempReaper(blob, 300*time.Millisecond, 50*time.Millisecond, 2)
	reaper.Start(ctx)
	defer reaper.Stop()

	staged, err := blob.Stage(ctx, "attachment", "abandoned.bin", bytesReader(32))
	require.NoError(t, err)
	require.NoError(t, fs.Chtimes(staged.Path, time.Now(), time.Now().Add(-200*time.Millisecond)))

	deadline := time.After(2 * time.Second)
	for {
		if _, statErr := fs.Stat(staged.Path); statErr != nil {
			return
		}
		select {
		case <-deadline:
			t.Fatal("staged file was never reclaimed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
