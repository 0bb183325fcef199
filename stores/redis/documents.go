package redis

import (
	"context"
	"errors"
	"mindmap-share/core"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of redis.Cmdable used by the record store.
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Close() error
}

var _ Client = (*redis.Client)(nil)

// recordStore keeps one string key per document. Durability follows the
// server's persistence settings (AOF is recommended).
type recordStore struct {
	client Client
	prefix string
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRecordStore(client Client, prefix string) core.RecordStore {
	return &recordStore{client: client, prefix: prefix}
}

func (s *recordStore) key(id string) string {
	return s.prefix + id
}

func (s *recordStore) Init(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *recordStore) Insert(ctx context.Context, id string, data []byte) error {
	// No expiry: share links live indefinitely.
	ok, err := s.client.SetNX(ctx, s.key(id), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrTokenConflict
	}
	return nil
}

func (s *recordStore) Get(ctx context.Context, id string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *recordStore) Close() error {
	return s.client.Close()
}
