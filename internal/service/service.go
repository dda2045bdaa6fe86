package service

import (
	"context"

	"coupon-command/internal/model"

	"github.com/google/uuid"
)

// RedemptionService validates and redeems text commands.
type RedemptionService interface {
	// ValidateCommand reports whether a command could be redeemed now.
	// It never writes. Only malformed input and storage failures return an error.
	ValidateCommand(ctx context.Context, req *model.ValidateCommandRequest) (*model.ValidationResult, error)

	// UseCommand redeems a command for a user and records the attempt.
	// Only malformed input returns an error; every other outcome is a result.
	UseCommand(ctx context.Context, req *model.UseCommandRequest) (*model.RedemptionResult, error)
}

// CommandService manages coupons, commands and their limits.
type CommandService interface {
	// CreateCoupon registers a coupon that commands can grant.
	CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)

	// CreateCommandConfig defines a new command for an existing coupon.
	CreateCommandConfig(ctx context.Context, req *model.CreateCommandConfigRequest) (*model.CommandConfig, error)

	// UpdateCommandConfig changes the text of a command.
	UpdateCommandConfig(ctx context.Context, id uuid.UUID, req *model.UpdateCommandConfigRequest) (*model.CommandConfig, error)

	// DeleteCommandConfig removes a command with its limit and usage records.
	DeleteCommandConfig(ctx context.Context, id uuid.UUID) error

	// AddCommandLimit attaches a limit to a command that has none.
	AddCommandLimit(ctx context.Context, configID uuid.UUID, input *model.LimitInput) (*model.CommandLimit, error)

	// UpdateCommandLimit applies a partial update to a limit.
	UpdateCommandLimit(ctx context.Context, limitID uuid.UUID, patch *model.LimitPatch) (*model.CommandLimit, error)

	// DeleteCommandLimit removes a limit, leaving its command unrestricted.
	DeleteCommandLimit(ctx context.Context, limitID uuid.UUID) error

	// ToggleCommandLimitStatus flips a limit between enabled and disabled.
	ToggleCommandLimitStatus(ctx context.Context, limitID uuid.UUID) (*model.CommandLimit, error)

	// GetCommandConfigDetail returns a command with its coupon, limit and usage stats.
	GetCommandConfigDetail(ctx context.Context, id uuid.UUID) (*model.CommandConfigDetail, error)

	// ListCommandConfigs returns the detail of every command, newest first.
	ListCommandConfigs(ctx context.Context) ([]model.CommandConfigDetail, error)

	// GetUserUsageRecords lists a user's redemption attempts, newest first.
	GetUserUsageRecords(ctx context.Context, userID string) ([]model.CommandUsageRecord, error)

	// GetCommandUsageRecords lists the redemption attempts of a command, newest first.
	GetCommandUsageRecords(ctx context.Context, configID uuid.UUID) ([]model.CommandUsageRecord, error)
}
