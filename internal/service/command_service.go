package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coupon-command/internal/model"
	"coupon-command/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// commandService implements CommandService.
type commandService struct {
	couponRepo repository.CouponRepository
	configRepo repository.CommandConfigRepository
	limitRepo  repository.CommandLimitRepository
	usageRepo  repository.UsageRecordRepository
	now        func() time.Time
	logger     zerolog.Logger
}

// NewCommandService creates a new command management service.
func NewCommandService(
	couponRepo repository.CouponRepository,
	configRepo repository.CommandConfigRepository,
	limitRepo repository.CommandLimitRepository,
	usageRepo repository.UsageRecordRepository,
	logger zerolog.Logger,
) CommandService {
	return &commandService{
		couponRepo: couponRepo,
		configRepo: configRepo,
		limitRepo:  limitRepo,
		usageRepo:  usageRepo,
		now:        time.Now,
		logger:     logger.With().Str("service", "command").Logger(),
	}
}

// CreateCoupon registers a coupon that commands can grant.
func (s *commandService) CreateCoupon(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, model.ErrCouponNameRequired
	}

	coupon := &model.Coupon{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: s.now(),
	}
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		s.logger.Error().Err(err).Msg("failed to create coupon")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().Str("coupon_id", coupon.ID.String()).Msg("coupon created")
	return coupon, nil
}

// CreateCommandConfig defines a new command for an existing coupon.
func (s *commandService) CreateCommandConfig(ctx context.Context, req *model.CreateCommandConfigRequest) (*model.CommandConfig, error) {
	if req == nil {
		return nil, model.ErrCommandRequired
	}
	if err := checkCommand(req.Command); err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByID(ctx, req.CouponID)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_id", req.CouponID.String()).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, model.ErrCouponNotFound
	}

	exists, err := s.configRepo.ExistsByCommand(ctx, req.Command, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check command: %w", err)
	}
	if exists {
		return nil, model.ErrCommandExists
	}

	now := s.now()
	cfg := &model.CommandConfig{
		ID:        uuid.New(),
		Command:   req.Command,
		CouponID:  &coupon.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.configRepo.Create(ctx, cfg); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create command config: %w", err)
	}

	s.logger.Info().
		Str("config_id", cfg.ID.String()).
		Str("coupon_id", coupon.ID.String()).
		Msg("command config created")

	return cfg, nil
}

// UpdateCommandConfig changes the text of a command.
func (s *commandService) UpdateCommandConfig(ctx context.Context, id uuid.UUID, req *model.UpdateCommandConfigRequest) (*model.CommandConfig, error) {
	if req == nil {
		return nil, model.ErrCommandRequired
	}
	if err := checkCommand(req.Command); err != nil {
		return nil, err
	}

	cfg, err := s.getConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg.Command == req.Command {
		return cfg, nil
	}

	exists, err := s.configRepo.ExistsByCommand(ctx, req.Command, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to check command: %w", err)
	}
	if exists {
		return nil, model.ErrCommandExists
	}

	cfg.Command = req.Command
	cfg.UpdatedAt = s.now()
	if err := s.configRepo.Update(ctx, cfg); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update command config: %w", err)
	}

	s.logger.Info().Str("config_id", id.String()).Msg("command config updated")
	return cfg, nil
}

// DeleteCommandConfig removes a command with its limit and usage records.
func (s *commandService) DeleteCommandConfig(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.configRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete command config: %w", err)
	}
	if !deleted {
		return model.ErrCommandConfigNotFound
	}

	s.logger.Info().Str("config_id", id.String()).Msg("command config deleted")
	return nil
}

// AddCommandLimit attaches a limit to a command that has none.
func (s *commandService) AddCommandLimit(ctx context.Context, configID uuid.UUID, input *model.LimitInput) (*model.CommandLimit, error) {
	if input == nil {
		input = &model.LimitInput{}
	}

	if _, err := s.getConfig(ctx, configID); err != nil {
		return nil, err
	}

	existing, err := s.limitRepo.GetByConfigID(ctx, nil, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to get command limit: %w", err)
	}
	if existing != nil {
		return nil, model.ErrLimitExists
	}

	now := s.now()
	limit := &model.CommandLimit{
		ID:              uuid.New(),
		CommandConfigID: configID,
		MaxUsagePerUser: input.MaxUsagePerUser,
		MaxTotalUsage:   input.MaxTotalUsage,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		AllowedUsers:    input.AllowedUsers,
		AllowedUserTags: input.AllowedUserTags,
		IsEnabled:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.IsEnabled != nil {
		limit.IsEnabled = *input.IsEnabled
	}
	if err := limit.Validate(); err != nil {
		return nil, err
	}

	if err := s.limitRepo.Create(ctx, limit); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create command limit: %w", err)
	}

	s.logger.Info().
		Str("config_id", configID.String()).
		Str("limit_id", limit.ID.String()).
		Msg("command limit added")

	return limit, nil
}

// UpdateCommandLimit applies a partial update to a limit.
func (s *commandService) UpdateCommandLimit(ctx context.Context, limitID uuid.UUID, patch *model.LimitPatch) (*model.CommandLimit, error) {
	limit, err := s.getLimit(ctx, limitID)
	if err != nil {
		return nil, err
	}

	if patch != nil {
		patch.Apply(limit)
	}
	if err := limit.Validate(); err != nil {
		return nil, err
	}

	return s.saveLimit(ctx, limit)
}

// DeleteCommandLimit removes a limit, leaving its command unrestricted.
func (s *commandService) DeleteCommandLimit(ctx context.Context, limitID uuid.UUID) error {
	deleted, err := s.limitRepo.Delete(ctx, limitID)
	if err != nil {
		return fmt.Errorf("failed to delete command limit: %w", err)
	}
	if !deleted {
		return model.ErrLimitNotFound
	}

	s.logger.Info().Str("limit_id", limitID.String()).Msg("command limit deleted")
	return nil
}

// ToggleCommandLimitStatus flips a limit between enabled and disabled.
func (s *commandService) ToggleCommandLimitStatus(ctx context.Context, limitID uuid.UUID) (*model.CommandLimit, error) {
	limit, err := s.getLimit(ctx, limitID)
	if err != nil {
		return nil, err
	}

	limit.IsEnabled = !limit.IsEnabled
	return s.saveLimit(ctx, limit)
}

func (s *commandService) saveLimit(ctx context.Context, limit *model.CommandLimit) (*model.CommandLimit, error) {
	limit.UpdatedAt = s.now()
	if err := s.limitRepo.Update(ctx, limit); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update command limit: %w", err)
	}

	s.logger.Info().
		Str("limit_id", limit.ID.String()).
		Bool("is_enabled", limit.IsEnabled).
		Msg("command limit updated")

	return limit, nil
}

// GetCommandConfigDetail returns a command with its coupon, limit and usage stats.
func (s *commandService) GetCommandConfigDetail(ctx context.Context, id uuid.UUID) (*model.CommandConfigDetail, error) {
	cfg, err := s.getConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, cfg)
}

// ListCommandConfigs returns the detail of every command, newest first.
func (s *commandService) ListCommandConfigs(ctx context.Context) ([]model.CommandConfigDetail, error) {
	configs, err := s.configRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list command configs: %w", err)
	}

	details := make([]model.CommandConfigDetail, 0, len(configs))
	for i := range configs {
		detail, err := s.detail(ctx, &configs[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	s.logger.Debug().Int("count", len(details)).Msg("listed command configs")
	return details, nil
}

func (s *commandService) detail(ctx context.Context, cfg *model.CommandConfig) (*model.CommandConfigDetail, error) {
	detail := &model.CommandConfigDetail{CommandConfig: *cfg}

	if cfg.CouponID != nil {
		coupon, err := s.couponRepo.GetByID(ctx, *cfg.CouponID)
		if err != nil {
			return nil, fmt.Errorf("failed to get coupon: %w", err)
		}
		detail.Coupon = coupon
	}

	limit, err := s.limitRepo.GetByConfigID(ctx, nil, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get command limit: %w", err)
	}
	detail.CommandLimit = limit

	stats, err := s.usageRepo.GetStats(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats: %w", err)
	}
	detail.Stats = stats

	return detail, nil
}

// GetUserUsageRecords lists a user's redemption attempts, newest first.
func (s *commandService) GetUserUsageRecords(ctx context.Context, userID string) ([]model.CommandUsageRecord, error) {
	if err := checkUserID(userID, true); err != nil {
		return nil, err
	}

	records, err := s.usageRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage records: %w", err)
	}
	return records, nil
}

// GetCommandUsageRecords lists the redemption attempts of a command, newest first.
func (s *commandService) GetCommandUsageRecords(ctx context.Context, configID uuid.UUID) ([]model.CommandUsageRecord, error) {
	if _, err := s.getConfig(ctx, configID); err != nil {
		return nil, err
	}

	records, err := s.usageRepo.FindByConfig(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage records: %w", err)
	}
	return records, nil
}

func (s *commandService) getConfig(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error) {
	cfg, err := s.configRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("config_id", id.String()).Msg("failed to get command config")
		return nil, fmt.Errorf("failed to get command config: %w", err)
	}
	if cfg == nil {
		return nil, model.ErrCommandConfigNotFound
	}
	return cfg, nil
}

func (s *commandService) getLimit(ctx context.Context, id uuid.UUID) (*model.CommandLimit, error) {
	limit, err := s.limitRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("limit_id", id.String()).Msg("failed to get command limit")
		return nil, fmt.Errorf("failed to get command limit: %w", err)
	}
	if limit == nil {
		return nil, model.ErrLimitNotFound
	}
	return limit, nil
}
