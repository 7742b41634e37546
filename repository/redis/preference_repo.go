package redis

import (
	"context"
	"errors"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type preferenceRepository struct {
	client *redislib.Client
	prefix string
}

// NewPreferenceRepository creates a Redis-backed preference store. String and
// bool values are plain keys; string lists are Redis lists.
func NewPreferenceRepository(client *redislib.Client, prefix string) repository.PreferenceStore {
	if prefix == "" {
		prefix = "todo:"
	}
	return &preferenceRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *preferenceRepository) GetString(ctx context.Context, key string) (string, error) {
	result, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", domain.ErrPreferenceNotFound
		}
		return "", err
	}
	return result, nil
}

func (r *preferenceRepository) SetString(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *preferenceRepository) GetStringList(ctx context.Context, key string) ([]string, error) {
	k := r.key(key)
	var (
		exists *redislib.IntCmd
		values *redislib.StringSliceCmd
	)
	if _, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		exists = pipe.Exists(ctx, k)
		values = pipe.LRange(ctx, k, 0, -1)
		return nil
	}); err != nil {
		return nil, err
	}
	if exists.Val() == 0 {
		return nil, domain.ErrPreferenceNotFound
	}
	return values.Val(), nil
}

// SetStringList replaces the list atomically. An empty list deletes the key,
// so it reads back as missing.
func (r *preferenceRepository) SetStringList(ctx context.Context, key string, values []string) error {
	k := r.key(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(values) > 0 {
			args := make([]interface{}, len(values))
			for i, v := range values {
				args[i] = v
			}
			pipe.RPush(ctx, k, args...)
		}
		return nil
	})
	return err
}

func (r *preferenceRepository) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := r.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	value, err := repository.DecodeBool(raw)
	if err != nil {
		return false, domain.WrapError(domain.ErrCodeInvalid, "invalid bool preference", err)
	}
	return value, nil
}

func (r *preferenceRepository) SetBool(ctx context.Context, key string, value bool) error {
	return r.SetString(ctx, key, repository.EncodeBool(value))
}

func (r *preferenceRepository) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *preferenceRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op: the client is owned by whoever created it.
func (r *preferenceRepository) Close() error {
	return nil
}

func (r *preferenceRepository) key(key string) string {
	return fmt.Sprintf("%s%s", r.prefix, key)
}
