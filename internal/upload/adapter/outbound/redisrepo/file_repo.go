package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anthanhphan/go-staged-file-store/internal/upload/domain"
	"github.com/anthanhphan/go-staged-file-store/internal/upload/port"
	"github.com/anthanhphan/go-staged-file-store/pkg/resilience"
)

const fileKeyPrefix = "file:"

// FileRepo persists FileRecords as JSON values under file:<id> keys.
// A circuit breaker guards the backend so a dead Redis fails fast instead
// of stacking timeouts under upload load.
type FileRepo struct {
	client  *redis.Client
	breaker *resilience.CircuitBreaker
}

// Ensure FileRepo implements port.FileRepository.
var _ port.FileRepository = (*FileRepo)(nil)

func NewFileRepo(client *redis.Client) *FileRepo {
	return &FileRepo{
		client: client,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             "redis-files",
			FailureThreshold: 5,
			OpenTimeout:      5 * time.Second,
		}),
	}
}

func (r *FileRepo) Save(ctx context.Context, record *domain.FileRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal file record: %w", err)
	}

	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.client.Set(ctx, fileKeyPrefix+record.ID, data, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to persist file record: %w", err)
	}
	return nil
}

func (r *FileRepo) Get(ctx context.Context, fileID string) (*domain.FileRecord, error) {
	var data []byte
	var found bool
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		b, err := r.client.Get(ctx, fileKeyPrefix+fileID).Bytes()
		if err != nil {
			// A miss is an answer, not a backend failure.
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		data, found = b, true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read file record: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", port.ErrFileNotFound, fileID)
	}

	var record domain.FileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file record: %w", err)
	}
	return &record, nil
}

func (r *FileRepo) Delete(ctx context.Context, fileID string) error {
	var deleted int64
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		n, err := r.client.Del(ctx, fileKeyPrefix+fileID).Result()
		deleted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", port.ErrFileNotFound, fileID)
	}
	return nil
}
