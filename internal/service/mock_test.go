package service

import (
	"context"

	"coupon-command/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

// MockCommandConfigRepository is a mock implementation of CommandConfigRepository.
type MockCommandConfigRepository struct {
	mock.Mock
}

func (m *MockCommandConfigRepository) Create(ctx context.Context, cfg *model.CommandConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockCommandConfigRepository) Update(ctx context.Context, cfg *model.CommandConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockCommandConfigRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommandConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommandConfig), args.Error(1)
}

func (m *MockCommandConfigRepository) GetByCommand(ctx context.Context, command string) (*model.CommandConfig, error) {
	args := m.Called(ctx, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommandConfig), args.Error(1)
}

func (m *MockCommandConfigRepository) ExistsByCommand(ctx context.Context, command string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, command, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommandConfigRepository) List(ctx context.Context) ([]model.CommandConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CommandConfig), args.Error(1)
}

// MockCommandLimitRepository is a mock implementation of CommandLimitRepository.
type MockCommandLimitRepository struct {
	mock.Mock
}

func (m *MockCommandLimitRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommandLimitRepository) Create(ctx context.Context, limit *model.CommandLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

func (m *MockCommandLimitRepository) Update(ctx context.Context, limit *model.CommandLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

func (m *MockCommandLimitRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommandLimitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandLimit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommandLimit), args.Error(1)
}

func (m *MockCommandLimitRepository) GetByConfigID(ctx context.Context, tx pgx.Tx, configID uuid.UUID) (*model.CommandLimit, error) {
	args := m.Called(ctx, tx, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommandLimit), args.Error(1)
}

func (m *MockCommandLimitRepository) LockByConfigID(ctx context.Context, tx pgx.Tx, configID uuid.UUID) (*model.CommandLimit, error) {
	args := m.Called(ctx, tx, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommandLimit), args.Error(1)
}

func (m *MockCommandLimitRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// MockUsageRecordRepository is a mock implementation of UsageRecordRepository.
type MockUsageRecordRepository struct {
	mock.Mock
}

func (m *MockUsageRecordRepository) Append(ctx context.Context, tx pgx.Tx, record *model.CommandUsageRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockUsageRecordRepository) CountTotalByUserAndConfig(ctx context.Context, userID string, configID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, configID)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageRecordRepository) CountSuccessByUserAndConfig(ctx context.Context, tx pgx.Tx, userID string, configID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, userID, configID)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageRecordRepository) FindByUser(ctx context.Context, userID string) ([]model.CommandUsageRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CommandUsageRecord), args.Error(1)
}

func (m *MockUsageRecordRepository) FindByConfig(ctx context.Context, configID uuid.UUID) ([]model.CommandUsageRecord, error) {
	args := m.Called(ctx, configID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CommandUsageRecord), args.Error(1)
}

func (m *MockUsageRecordRepository) GetStats(ctx context.Context, configID uuid.UUID) (model.UsageStats, error) {
	args := m.Called(ctx, configID)
	return args.Get(0).(model.UsageStats), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
