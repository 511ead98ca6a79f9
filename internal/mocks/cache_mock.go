// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/octavia-db/octavia-go/octavia"
)

// MockCache is a mock implementation of octavia.Cache.
type MockCache struct {
	mock.Mock
}

// Get retrieves a value from the cache.
func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set stores a value in the cache.
func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// DeletePattern removes all values matching the pattern.
func (m *MockCache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).(int64), args.Error(1)
}

// Ensure MockCache implements octavia.Cache interface.
var _ octavia.Cache = (*MockCache)(nil)
