// Package cache holds small serialized values keyed by name. The catalog uses
// it for country and food listings.
package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the key holds nothing.
var ErrMiss = errors.New("cache: miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Nop never stores anything; every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) {
	return nil, ErrMiss
}

func (Nop) Set(context.Context, string, []byte) error {
	return nil
}

func (Nop) Delete(context.Context, ...string) error {
	return nil
}
