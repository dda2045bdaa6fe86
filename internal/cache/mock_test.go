package cache

import (
	"context"
	"sync"
	"time"

	"coupon-command/internal/model"
	"coupon-command/internal/repository"

	"github.com/google/uuid"
)

// mockInnerConfigRepo mocks the repository the cache wraps.
type mockInnerConfigRepo struct {
	CreateFunc          func(ctx context.Context, cfg *model.CommandConfig) error
	UpdateFunc          func(ctx context.Context, cfg *model.CommandConfig) error
	DeleteFunc          func(ctx context.Context, id uuid.UUID) (bool, error)
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error)
	GetByCommandFunc    func(ctx context.Context, command string) (*model.CommandConfig, error)
	ExistsByCommandFunc func(ctx context.Context, command string, excludeID *uuid.UUID) (bool, error)
	ListFunc            func(ctx context.Context) ([]model.CommandConfig, error)
}

var _ repository.CommandConfigRepository = &mockInnerConfigRepo{}

func (m *mockInnerConfigRepo) Create(ctx context.Context, cfg *model.CommandConfig) error {
	return m.CreateFunc(ctx, cfg)
}
func (m *mockInnerConfigRepo) Update(ctx context.Context, cfg *model.CommandConfig) error {
	return m.UpdateFunc(ctx, cfg)
}
func (m *mockInnerConfigRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.DeleteFunc(ctx, id)
}
func (m *mockInnerConfigRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error) {
	return m.GetByIDFunc(ctx, id)
}
func (m *mockInnerConfigRepo) GetByCommand(ctx context.Context, command string) (*model.CommandConfig, error) {
	return m.GetByCommandFunc(ctx, command)
}
func (m *mockInnerConfigRepo) ExistsByCommand(ctx context.Context, command string, excludeID *uuid.UUID) (bool, error) {
	return m.ExistsByCommandFunc(ctx, command, excludeID)
}
func (m *mockInnerConfigRepo) List(ctx context.Context) ([]model.CommandConfig, error) {
	return m.ListFunc(ctx)
}

// mockClient is an in-memory Client. GetErr, when set, fails every Get.
type mockClient struct {
	mu      sync.Mutex
	data    map[string]string
	deleted []string
	GetErr  error
}

var _ Client = &mockClient{}

func newMockClient() *mockClient {
	return &mockClient{data: make(map[string]string)}
}

func (m *mockClient) Ping(ctx context.Context) error { return nil }

func (m *mockClient) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return val, nil
}

func (m *mockClient) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return nil
}

func (m *mockClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.deleted = append(m.deleted, keys...)
	return nil
}

func (m *mockClient) Close() error { return nil }
