package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anthanhphan/gosdk/logger"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
	"github.com/anthanhphan/go-staged-file-store/pkg/resilience"
)

// TempReaper bounds the lifetime of uncommitted staged data. It is a
// process-scoped background task with an explicit lifecycle: Start runs one
// forced sweep and schedules periodic non-forced sweeps, Stop cancels the
// schedule and runs one final forced sweep.
//
// Forced sweeps delete fresh entries too, so they are only safe while no
// uploads are in flight: before the server accepts traffic, or after it has
// fully drained.
type TempReaper struct {
	blob     port.BlobStore
	expiry   time.Duration
	interval time.Duration
	workers  int

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTempReaper creates the reaper. Expiry must stay large relative to any
// realistic upload+commit duration so non-forced sweeps never race a commit.
func NewTempReaper(blob port.BlobStore, expiry, interval time.Duration, workers int) *TempReaper {
	if workers <= 0 {
		workers = 1
	}
	return &TempReaper{
		blob:     blob,
		expiry:   expiry,
		interval: interval,
		workers:  workers,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the startup forced sweep synchronously, then launches the
// periodic sweep loop.
func (r *TempReaper) Start(ctx context.Context) {
	r.sweep(ctx, true)
	go r.run(ctx)
}

// run ticks between idle and sweeping until Stop or context cancellation.
func (r *TempReaper) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(ctx, false)
		}
	}
}

// Stop cancels the schedule and runs one final forced sweep.
func (r *TempReaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		<-r.done
		r.sweep(context.Background(), true)
	})
}

// sweep lists the staging area and deletes qualifying entries concurrently.
// Entries are processed independently: one failed deletion is logged and
// never aborts the rest of the sweep.
func (r *TempReaper) sweep(ctx context.Context, force bool) {
	entries, err := r.blob.ListStaged(ctx)
	if err != nil {
		logger.Warnw("Reaper failed to list staging area", "error", err.Error())
		return
	}
	if len(entries) == 0 {
		return
	}

	logger.Infow("Reaper sweep started", "entries", len(entries), "force", force)

	now := time.Now()
	pool := resilience.NewWorkerPool(r.workers, r.workers*2)

	var deleted, failed atomic.Int64
	for _, entry := range entries {
		entry := entry
		if !force && now.Sub(entry.ModTime) < r.expiry {
			continue
		}

		submitErr := pool.Submit(ctx, func() {
			if err := r.blob.DropStaged(ctx, entry.Name); err != nil {
				failed.Add(1)
				logger.Warnw("Reaper failed to delete staged entry", "entry", entry.Name, "error", err.Error())
				return
			}
			deleted.Add(1)
		})
		if submitErr != nil {
			failed.Add(1)
			logger.Warnw("Reaper failed to schedule staged entry deletion", "entry", entry.Name, "error", submitErr.Error())
		}
	}

	pool.Close()
	pool.Wait()

	logger.Infow("Reaper sweep finished", "deleted", deleted.Load(), "failed", failed.Load(), "force", force)
}
