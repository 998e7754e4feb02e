// Package redis adapts a go-redis client to the fncache Backend contract.
//
// Every key is stored under a per-instance prefix so Clear can scope its
// SCAN to keys this cache owns and never touch foreign data in a shared
// database.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis backend: nil client")

// DefaultPrefix isolates fncache-owned keys in a shared database.
const DefaultPrefix = "fncache"

const defaultScanCount = 256

type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	scanCount   int64
	closeClient bool
}

type Config struct {
	Client goredis.UniversalClient
	// Prefix overrides DefaultPrefix. All keys are stored as "<prefix>:<key>".
	Prefix string
	// ScanCount is the COUNT hint for SCAN during Clear; 0 uses a default.
	ScanCount int64
	// CloseClient makes Close release the client; set it only when this
	// backend exclusively owns the client.
	CloseClient bool
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	count := cfg.ScanCount
	if count <= 0 {
		count = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, prefix: prefix, scanCount: count, closeClient: cfg.CloseClient}, nil
}

func (b *Redis) storageKey(key string) string {
	return b.prefix + ":" + key
}

func (b *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, b.storageKey(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return v, true, nil
}

func (b *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // no expiry per backend contract
	}
	return b.rdb.Set(ctx, b.storageKey(key), value, ttl).Err()
}

func (b *Redis) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, b.storageKey(key)).Err()
}

// Clear scans and deletes all owned keys under the namespace, or every
// owned key when namespace is empty. SCAN is cursor-based, so concurrent
// writes during a Clear may survive it; that matches the best-effort
// eviction contract.
func (b *Redis) Clear(ctx context.Context, namespace string) error {
	pattern := b.prefix + ":*"
	if namespace != "" {
		pattern = b.prefix + ":" + namespace + ":*"
	}

	var cursor uint64
	for {
		batch, next, err := b.rdb.Scan(ctx, cursor, pattern, b.scanCount).Result()
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := b.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close releases the underlying client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (b *Redis) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
