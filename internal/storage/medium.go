package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Medium is the raw persistence layer under a Store. Keys are full keys,
// already namespaced; values are the transformed (possibly obfuscated) bytes.
type Medium interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// entrySize is what an entry costs against a quota and in footprints.
func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
