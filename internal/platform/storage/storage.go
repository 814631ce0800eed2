package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetItem when the key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Storage is a small key-value store with local-storage semantics: whole
// values are read and written at once, there is no partial update and no
// versioning. The last writer wins.
type Storage interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored under key into v. found is false when the
// key is missing, in which case v is untouched.
func LoadJSON(ctx context.Context, s Storage, key string, v interface{}) (bool, error) {
	raw, err := s.GetItem(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON serializes v and stores it under key.
func SaveJSON(ctx context.Context, s Storage, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.SetItem(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
