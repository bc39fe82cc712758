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

const postKeyPrefix = "post:"

// PostRepo persists Posts as JSON values under post:<id> keys.
type PostRepo struct {
	client  *redis.Client
	breaker *resilience.CircuitBreaker
}

// Ensure PostRepo implements port.PostRepository.
var _ port.PostRepository = (*PostRepo)(nil)

func NewPostRepo(client *redis.Client) *PostRepo {
	return &PostRepo{
		client: client,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             "redis-posts",
			FailureThreshold: 5,
			OpenTimeout:      5 * time.Second,
		}),
	}
}

func (r *PostRepo) Save(ctx context.Context, post *domain.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.client.Set(ctx, postKeyPrefix+post.ID, data, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to persist post: %w", err)
	}
	return nil
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	var data []byte
	var found bool
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		b, err := r.client.Get(ctx, postKeyPrefix+postID).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return err
		}
		data, found = b, true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read post: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", port.ErrPostNotFound, postID)
	}

	var post domain.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post: %w", err)
	}
	return &post, nil
}

func (r *PostRepo) Delete(ctx context.Context, postID string) error {
	var deleted int64
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		n, err := r.client.Del(ctx, postKeyPrefix+postID).Result()
		deleted = n
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", port.ErrPostNotFound, postID)
	}
	return nil
}
