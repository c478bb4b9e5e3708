package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each object in a hash: body, content type and a unix
// modification timestamp. Listing walks SCAN cursors, so pages may be uneven
// but the full keyspace is always covered.
type RedisStorage struct {
	client redis.Cmdable
}

func NewRedisStorage(client redis.Cmdable) *RedisStorage {
	return &RedisStorage{client: client}
}

func objectKey(bucket, key string) string {
	return fmt.Sprintf("blob:%s:%s", bucket, key)
}

func (r *RedisStorage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	data, err := r.client.HGet(ctx, objectKey(bucket, key), "data").Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s/%s: %w", bucket, key, err)
	}
	return []byte(data), nil
}

func (r *RedisStorage) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	fields := map[string]interface{}{
		"data":         data,
		"content_type": contentType,
		"mtime":        time.Now().UnixNano(),
	}
	if err := r.client.HSet(ctx, objectKey(bucket, key), fields).Err(); err != nil {
		return fmt.Errorf("redis put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (r *RedisStorage) List(ctx context.Context, bucket, prefix, token string, limit int) ([]ObjectInfo, string, error) {
	var cursor uint64
	if token != "" {
		parsed, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("bad list token %q: %w", token, err)
		}
		cursor = parsed
	}
	if limit <= 0 {
		limit = 100
	}

	match := objectKey(bucket, prefix) + "*"
	keys, next, err := r.client.Scan(ctx, cursor, match, int64(limit)).Result()
	if err != nil {
		return nil, "", fmt.Errorf("redis scan %s: %w", match, err)
	}

	keyPrefix := objectKey(bucket, "")
	infos := make([]ObjectInfo, 0, len(keys))
	for _, fullKey := range keys {
		mtimeStr, err := r.client.HGet(ctx, fullKey, "mtime").Result()
		if err != nil {
			continue // object deleted between SCAN and HGET
		}
		mtime, err := strconv.ParseInt(mtimeStr, 10, 64)
		if err != nil {
			continue
		}
		infos = append(infos, ObjectInfo{
			Key:          fullKey[len(keyPrefix):],
			LastModified: time.Unix(0, mtime),
		})
	}

	nextToken := ""
	if next != 0 {
		nextToken = strconv.FormatUint(next, 10)
	}
	return infos, nextToken, nil
}

func (r *RedisStorage) Delete(ctx context.Context, bucket, key string) error {
	deleted, err := r.client.Del(ctx, objectKey(bucket, key)).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s/%s: %w", bucket, key, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}
