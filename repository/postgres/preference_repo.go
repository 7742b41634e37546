package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type preferenceRepository struct {
	pool *pgxpool.Pool
}

// NewPreferenceRepository returns a Postgres-backed implementation of PreferenceStore.
// Values live in the preferences table created by the migrations.
func NewPreferenceRepository(pool *pgxpool.Pool) repository.PreferenceStore {
	return &preferenceRepository{pool: pool}
}

func (r *preferenceRepository) GetString(ctx context.Context, key string) (string, error) {
	return r.get(ctx, key, kindString)
}

func (r *preferenceRepository) SetString(ctx context.Context, key, value string) error {
	return r.put(ctx, key, kindString, value)
}

func (r *preferenceRepository) GetStringList(ctx context.Context, key string) ([]string, error) {
	raw, err := r.get(ctx, key, kindList)
	if err != nil {
		return nil, err
	}
	values, err := repository.DecodeList(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid list preference", err)
	}
	return values, nil
}

func (r *preferenceRepository) SetStringList(ctx context.Context, key string, values []string) error {
	raw, err := repository.EncodeList(values)
	if err != nil {
		return err
	}
	return r.put(ctx, key, kindList, raw)
}

func (r *preferenceRepository) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := r.get(ctx, key, kindBool)
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
	return r.put(ctx, key, kindBool, repository.EncodeBool(value))
}

func (r *preferenceRepository) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM preferences WHERE key = $1`
	_, err := r.pool.Exec(ctx, query, key)
	return err
}

func (r *preferenceRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close is a no-op: the pool is closed by the lifecycle manager.
func (r *preferenceRepository) Close() error {
	return nil
}

func (r *preferenceRepository) get(ctx context.Context, key, kind string) (string, error) {
	const query = `
	SELECT value
	FROM preferences
	WHERE key = $1 AND kind = $2
	`
	var value string
	if err := r.pool.QueryRow(ctx, query, key, kind).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrPreferenceNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *preferenceRepository) put(ctx context.Context, key, kind, value string) error {
	const query = `
	INSERT INTO preferences (key, kind, value)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE
	SET kind = EXCLUDED.kind,
		value = EXCLUDED.value,
		updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, key, kind, value)
	return err
}
