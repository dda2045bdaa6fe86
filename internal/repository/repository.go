package repository

import (
	"context"

	"coupon-command/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// Create inserts a new coupon.
	Create(ctx context.Context, coupon *model.Coupon) error

	// GetByID retrieves a coupon by its ID. Returns nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
}

// CommandConfigRepository defines the interface for command config data access operations.
type CommandConfigRepository interface {
	// Create inserts a new command config.
	// Returns model.ErrCommandExists if the command text is already taken.
	Create(ctx context.Context, cfg *model.CommandConfig) error

	// Update persists the command text and coupon of an existing config.
	Update(ctx context.Context, cfg *model.CommandConfig) error

	// Delete removes a config together with its limit and usage records.
	// Returns false when no config had that ID.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// GetByID retrieves a config by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error)

	// GetByCommand retrieves a config by its exact command text.
	GetByCommand(ctx context.Context, command string) (*model.CommandConfig, error)

	// ExistsByCommand reports whether another config already uses command.
	// The config identified by excludeID, if any, is ignored.
	ExistsByCommand(ctx context.Context, command string, excludeID *uuid.UUID) (bool, error)

	// List retrieves all configs, newest first.
	List(ctx context.Context) ([]model.CommandConfig, error)
}

// CommandLimitRepository defines the interface for command limit data access operations.
type CommandLimitRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new limit.
	// Returns model.ErrLimitExists if the config already has one.
	Create(ctx context.Context, limit *model.CommandLimit) error

	// Update persists the configurable fields of a limit. CurrentUsage is not written.
	Update(ctx context.Context, limit *model.CommandLimit) error

	// Delete removes a limit. Returns false when no limit had that ID.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// GetByID retrieves a limit by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CommandLimit, error)

	// GetByConfigID retrieves the limit attached to a config.
	// A nil tx reads through the pool.
	GetByConfigID(ctx context.Context, tx pgx.Tx, configID uuid.UUID) (*model.CommandLimit, error)

	// LockByConfigID retrieves the limit attached to a config and holds a row
	// lock on it until tx ends.
	LockByConfigID(ctx context.Context, tx pgx.Tx, configID uuid.UUID) (*model.CommandLimit, error)

	// IncrementUsage adds one to current_usage unless an enabled limit has
	// no quota left. Returns false when the increment was refused.
	IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
}

// UsageRecordRepository defines the interface for the append-only usage ledger.
type UsageRecordRepository interface {
	// Append persists a new record. A nil tx writes through the pool.
	Append(ctx context.Context, tx pgx.Tx, record *model.CommandUsageRecord) error

	// CountTotalByUserAndConfig counts every attempt of a user against a config.
	CountTotalByUserAndConfig(ctx context.Context, userID string, configID uuid.UUID) (int, error)

	// CountSuccessByUserAndConfig counts the successful attempts of a user against a config.
	// A nil tx reads through the pool.
	CountSuccessByUserAndConfig(ctx context.Context, tx pgx.Tx, userID string, configID uuid.UUID) (int, error)

	// FindByUser lists a user's records, newest first.
	FindByUser(ctx context.Context, userID string) ([]model.CommandUsageRecord, error)

	// FindByConfig lists a config's records, newest first.
	FindByConfig(ctx context.Context, configID uuid.UUID) ([]model.CommandUsageRecord, error)

	// GetStats summarises the records of a config.
	GetStats(ctx context.Context, configID uuid.UUID) (model.UsageStats, error)
}
