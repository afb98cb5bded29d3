package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when a key has never been written
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the durable key-value persistence port. Collections are
// written as whole JSON blobs under fixed keys; every Set must be
// durable before it returns so repository state survives restarts.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
