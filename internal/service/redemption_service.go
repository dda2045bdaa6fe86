package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coupon-command/internal/metrics"
	"coupon-command/internal/model"
	"coupon-command/internal/policy"
	"coupon-command/internal/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Values of the "stage" key in a usage record's extra data.
const (
	stageValidate = "validate"
	stageRedeem   = "redeem"
	stageSystem   = "system"
)

// redemptionService implements RedemptionService.
type redemptionService struct {
	configRepo repository.CommandConfigRepository
	limitRepo  repository.CommandLimitRepository
	usageRepo  repository.UsageRecordRepository
	couponRepo repository.CouponRepository
	node       *snowflake.Node
	now        func() time.Time
	logger     zerolog.Logger
}

// NewRedemptionService creates a new redemption service. node generates usage record IDs.
func NewRedemptionService(
	configRepo repository.CommandConfigRepository,
	limitRepo repository.CommandLimitRepository,
	usageRepo repository.UsageRecordRepository,
	couponRepo repository.CouponRepository,
	node *snowflake.Node,
	logger zerolog.Logger,
) RedemptionService {
	return &redemptionService{
		configRepo: configRepo,
		limitRepo:  limitRepo,
		usageRepo:  usageRepo,
		couponRepo: couponRepo,
		node:       node,
		now:        time.Now,
		logger:     logger.With().Str("service", "redemption").Logger(),
	}
}

// ledgerCounter feeds the policy with counts read through tx (or the pool when tx is nil).
type ledgerCounter struct {
	usageRepo repository.UsageRecordRepository
	tx        pgx.Tx
}

func (c ledgerCounter) CountSuccessByUserAndConfig(ctx context.Context, userID string, configID uuid.UUID) (int, error) {
	return c.usageRepo.CountSuccessByUserAndConfig(ctx, c.tx, userID, configID)
}

// ValidateCommand reports whether a command could be redeemed now.
func (s *redemptionService) ValidateCommand(ctx context.Context, req *model.ValidateCommandRequest) (*model.ValidationResult, error) {
	if req == nil {
		return nil, model.ErrCommandRequired
	}
	if err := checkCommand(req.Command); err != nil {
		return nil, err
	}
	if err := checkUserID(req.UserID, false); err != nil {
		return nil, err
	}

	// A blank user ID means no user; any other value is matched exactly, as UseCommand does.
	userID := req.UserID
	if strings.TrimSpace(userID) == "" {
		userID = ""
	}

	result, _, err := s.validate(ctx, req.Command, userID)
	if err != nil {
		return nil, err
	}

	metrics.IncValidation(result.Valid)
	s.logger.Debug().
		Bool("valid", result.Valid).
		Str("reason", result.Reason).
		Msg("command validated")

	return result, nil
}

// validate runs the read-only checks. The returned config is nil when the
// command did not resolve.
func (s *redemptionService) validate(ctx context.Context, command, userID string) (*model.ValidationResult, *model.CommandConfig, error) {
	cfg, err := s.configRepo.GetByCommand(ctx, command)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up command: %w", err)
	}
	if cfg == nil {
		return model.Rejected(model.ReasonCommandNotFound), nil, nil
	}

	if cfg.CouponID == nil {
		return model.Rejected(model.ReasonCouponNotFound), cfg, nil
	}
	coupon, err := s.couponRepo.GetByID(ctx, *cfg.CouponID)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to look up coupon: %w", err)
	}
	if coupon == nil {
		return model.Rejected(model.ReasonCouponNotFound), cfg, nil
	}

	limit, err := s.limitRepo.GetByConfigID(ctx, nil, cfg.ID)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to look up command limit: %w", err)
	}

	decision, err := policy.Evaluate(ctx, limit, s.now(), userID, ledgerCounter{usageRepo: s.usageRepo})
	if err != nil {
		return nil, cfg, err
	}
	if !decision.Admissible {
		return model.Rejected(decision.Reason), cfg, nil
	}

	return &model.ValidationResult{
		Valid:      true,
		CouponInfo: &model.CouponInfo{ID: coupon.ID, Name: coupon.Name},
		CommandConfig: &model.CommandConfigSummary{
			ID:           cfg.ID,
			Command:      cfg.Command,
			CommandLimit: limit,
		},
	}, cfg, nil
}

// UseCommand redeems a command for a user and records the attempt.
func (s *redemptionService) UseCommand(ctx context.Context, req *model.UseCommandRequest) (*model.RedemptionResult, error) {
	if req == nil {
		return nil, model.ErrCommandRequired
	}
	if err := checkCommand(req.Command); err != nil {
		return nil, err
	}
	if err := checkUserID(req.UserID, true); err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.redeem(ctx, req)

	reason := ""
	if !result.Success {
		reason = result.Message
	}
	metrics.ObserveRedemption(result.Success, reason, time.Since(start))

	return result, nil
}

func (s *redemptionService) redeem(ctx context.Context, req *model.UseCommandRequest) *model.RedemptionResult {
	validation, cfg, err := s.validate(ctx, req.Command, req.UserID)
	if err != nil {
		return s.systemFailure(ctx, req, configIDOf(cfg), err)
	}
	if !validation.Valid {
		return s.reject(ctx, req, configIDOf(cfg), validation.Reason, stageValidate)
	}

	// The config may have been deleted or renamed since validation, which
	// a stale cache entry would not show.
	current, err := s.configRepo.GetByID(ctx, cfg.ID)
	if err != nil {
		return s.systemFailure(ctx, req, &cfg.ID, err)
	}
	if current == nil || current.Command != req.Command {
		return s.reject(ctx, req, nil, model.ReasonCommandNotFound, stageRedeem)
	}
	if current.CouponID == nil {
		return s.reject(ctx, req, &current.ID, model.ReasonCouponNotFound, stageRedeem)
	}

	return s.commit(ctx, req, current)
}

// commit claims one unit of quota and appends the success record atomically.
func (s *redemptionService) commit(ctx context.Context, req *model.UseCommandRequest, cfg *model.CommandConfig) *model.RedemptionResult {
	tx, err := s.limitRepo.BeginTx(ctx)
	if err != nil {
		return s.systemFailure(ctx, req, &cfg.ID, err)
	}

	limit, err := s.limitRepo.LockByConfigID(ctx, tx, cfg.ID)
	if err != nil {
		s.rollback(ctx, tx)
		return s.systemFailure(ctx, req, &cfg.ID, err)
	}

	if limit != nil {
		decision, err := policy.Evaluate(ctx, limit, s.now(), req.UserID, ledgerCounter{usageRepo: s.usageRepo, tx: tx})
		if err != nil {
			s.rollback(ctx, tx)
			return s.systemFailure(ctx, req, &cfg.ID, err)
		}
		if !decision.Admissible {
			s.rollback(ctx, tx)
			return s.reject(ctx, req, &cfg.ID, decision.Reason, stageRedeem)
		}

		incremented, err := s.limitRepo.IncrementUsage(ctx, tx, limit.ID)
		if err != nil {
			s.rollback(ctx, tx)
			return s.systemFailure(ctx, req, &cfg.ID, err)
		}
		if !incremented {
			s.rollback(ctx, tx)
			return s.reject(ctx, req, &cfg.ID, model.ReasonTotalUsageExhausted, stageRedeem)
		}
	}

	record := s.newRecord(req, &cfg.ID)
	record.IsSuccess = true
	record.CouponID = cfg.CouponID
	record.ExtraData = map[string]any{"stage": stageRedeem}

	if err := s.usageRepo.Append(ctx, tx, record); err != nil {
		s.rollback(ctx, tx)
		return s.systemFailure(ctx, req, &cfg.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.rollback(ctx, tx)
		return s.systemFailure(ctx, req, &cfg.ID, fmt.Errorf("failed to commit redemption: %w", err))
	}

	s.logger.Info().
		Str("config_id", cfg.ID.String()).
		Str("user_id", req.UserID).
		Str("record_id", record.ID.String()).
		Msg("command redeemed")

	return &model.RedemptionResult{
		Success:  true,
		CouponID: cfg.CouponID,
		Message:  model.MessageRedeemed,
	}
}

func (s *redemptionService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// reject records a policy or lookup failure and returns it to the caller.
func (s *redemptionService) reject(ctx context.Context, req *model.UseCommandRequest, configID *uuid.UUID, reason, stage string) *model.RedemptionResult {
	s.logger.Debug().
		Str("user_id", req.UserID).
		Str("reason", reason).
		Str("stage", stage).
		Msg("redemption rejected")

	s.appendFailure(ctx, req, configID, reason, stage)
	return &model.RedemptionResult{Success: false, Message: reason}
}

// systemFailure records a storage failure with its detail and returns a
// generic message to the caller.
func (s *redemptionService) systemFailure(ctx context.Context, req *model.UseCommandRequest, configID *uuid.UUID, cause error) *model.RedemptionResult {
	s.logger.Error().
		Err(cause).
		Str("user_id", req.UserID).
		Msg("redemption failed")

	s.appendFailure(ctx, req, configID, model.SystemErrorPrefix+cause.Error(), stageSystem)
	return &model.RedemptionResult{Success: false, Message: model.MessageSystemError}
}

// appendFailure writes a failure record through the pool. It survives
// cancellation of the request so that the attempt is always audited.
func (s *redemptionService) appendFailure(ctx context.Context, req *model.UseCommandRequest, configID *uuid.UUID, reason, stage string) {
	record := s.newRecord(req, configID)
	truncated := model.TruncateReason(reason)
	record.FailureReason = &truncated
	record.ExtraData = map[string]any{"stage": stage}

	if err := s.usageRepo.Append(context.WithoutCancel(ctx), nil, record); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", req.UserID).
			Str("reason", truncated).
			Msg("failed to record failed redemption")
	}
}

func (s *redemptionService) newRecord(req *model.UseCommandRequest, configID *uuid.UUID) *model.CommandUsageRecord {
	userID := req.UserID
	record := &model.CommandUsageRecord{
		ID:              s.node.Generate(),
		CommandConfigID: configID,
		UserID:          req.UserID,
		CommandText:     req.Command,
		CreatedBy:       &userID,
		CreatedAt:       s.now(),
	}
	if req.ClientIP != "" {
		ip := req.ClientIP
		record.CreatedFromIP = &ip
	}
	return record
}

func configIDOf(cfg *model.CommandConfig) *uuid.UUID {
	if cfg == nil {
		return nil
	}
	return &cfg.ID
}
