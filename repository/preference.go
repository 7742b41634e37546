package repository

import (
	"context"
	"encoding/json"
	"strconv"
)

// PreferenceStore is a key-value store of string, string-list and bool values.
// Getters return domain.ErrPreferenceNotFound for missing keys.
type PreferenceStore interface {
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string) error
	GetStringList(ctx context.Context, key string) ([]string, error)
	SetStringList(ctx context.Context, key string, values []string) error
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// EncodeList is the text form of a string list for backends without a native list type.
func EncodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeList(raw string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func EncodeBool(value bool) string {
	return strconv.FormatBool(value)
}

func DecodeBool(raw string) (bool, error) {
	return strconv.ParseBool(raw)
}
