// Package cache holds short-lived artifacts in redis. Its only tenant is
// the download store: finished WAV files kept around long enough for the
// browser to fetch them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for unknown or expired download ids.
var ErrNotFound = errors.New("download not found")

const (
	keyPrefix  = "download:"
	defaultTTL = 15 * time.Minute
)

type Downloads struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDownloads(client *redis.Client) *Downloads {
	return &Downloads{client: client, ttl: defaultTTL}
}

func (d *Downloads) Put(ctx context.Context, id uuid.UUID, wav []byte) error {
	if err := d.client.Set(ctx, keyPrefix+id.String(), wav, d.ttl).Err(); err != nil {
		return fmt.Errorf("store download %s: %w", id, err)
	}
	return nil
}

func (d *Downloads) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	data, err := d.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get download %s: %w", id, err)
	}
	return data, nil
}
