package repository

import (
	"context"
	"errors"
	"fmt"

	"coupon-command/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const limitColumns = `id, command_config_id, max_usage_per_user, max_total_usage, current_usage,
	start_time, end_time, allowed_users, allowed_user_tags, is_enabled, created_at, updated_at`

// commandLimitRepository implements the CommandLimitRepository interface using PostgreSQL.
type commandLimitRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCommandLimitRepository creates a new PostgreSQL-backed command limit repository.
func NewCommandLimitRepository(pool *pgxpool.Pool, logger zerolog.Logger) CommandLimitRepository {
	return &commandLimitRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "command_limit").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *commandLimitRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *commandLimitRepository) Create(ctx context.Context, limit *model.CommandLimit) error {
	allowedUsers, err := encodeStrings(limit.AllowedUsers)
	if err != nil {
		return err
	}
	allowedTags, err := encodeStrings(limit.AllowedUserTags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO command_limits (` + limitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		limit.ID,
		limit.CommandConfigID,
		limit.MaxUsagePerUser,
		limit.MaxTotalUsage,
		limit.CurrentUsage,
		limit.StartTime,
		limit.EndTime,
		allowedUsers,
		allowedTags,
		limit.IsEnabled,
		limit.CreatedAt,
		limit.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("config_id", limit.CommandConfigID.String()).Msg("limit already exists")
			return model.ErrLimitExists
		}
		r.logger.Error().
			Err(err).
			Str("limit_id", limit.ID.String()).
			Str("config_id", limit.CommandConfigID.String()).
			Msg("failed to create command limit")
		return fmt.Errorf("failed to create command limit: %w", err)
	}

	r.logger.Debug().Str("limit_id", limit.ID.String()).Msg("command limit created successfully")
	return nil
}

func (r *commandLimitRepository) Update(ctx context.Context, limit *model.CommandLimit) error {
	allowedUsers, err := encodeStrings(limit.AllowedUsers)
	if err != nil {
		return err
	}
	allowedTags, err := encodeStrings(limit.AllowedUserTags)
	if err != nil {
		return err
	}

	query := `
		UPDATE command_limits
		SET max_usage_per_user = $2,
			max_total_usage = $3,
			start_time = $4,
			end_time = $5,
			allowed_users = $6,
			allowed_user_tags = $7,
			is_enabled = $8,
			updated_at = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		limit.ID,
		limit.MaxUsagePerUser,
		limit.MaxTotalUsage,
		limit.StartTime,
		limit.EndTime,
		allowedUsers,
		allowedTags,
		limit.IsEnabled,
		limit.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("limit_id", limit.ID.String()).Msg("failed to update command limit")
		return fmt.Errorf("failed to update command limit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLimitNotFound
	}

	return nil
}

func (r *commandLimitRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM command_limits WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("limit_id", id.String()).Msg("failed to delete command limit")
		return false, fmt.Errorf("failed to delete command limit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *commandLimitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandLimit, error) {
	query := `SELECT ` + limitColumns + ` FROM command_limits WHERE id = $1`
	return r.getOne(ctx, r.pool, query, id)
}

func (r *commandLimitRepository) GetByConfigID(ctx context.Context, tx pgx.Tx, configID uuid.UUID) (*model.CommandLimit, error) {
	query := `SELECT ` + limitColumns + ` FROM command_limits WHERE command_config_id = $1`
	return r.getOne(ctx, executor(r.pool, tx), query, configID)
}

func (r *commandLimitRepository) LockByConfigID(ctx context.Context, tx pgx.Tx, configID uuid.UUID) (*model.CommandLimit, error) {
	query := `SELECT ` + limitColumns + ` FROM command_limits WHERE command_config_id = $1 FOR UPDATE`
	return r.getOne(ctx, tx, query, configID)
}

func (r *commandLimitRepository) getOne(ctx context.Context, db DBTX, query string, id uuid.UUID) (*model.CommandLimit, error) {
	limit, err := scanLimit(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to query command limit")
		return nil, fmt.Errorf("failed to query command limit: %w", err)
	}
	return limit, nil
}

func (r *commandLimitRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `
		UPDATE command_limits
		SET current_usage = current_usage + 1, updated_at = NOW()
		WHERE id = $1
		  AND (NOT is_enabled OR max_total_usage IS NULL OR current_usage < max_total_usage)
	`

	tag, err := executor(r.pool, tx).Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("limit_id", id.String()).Msg("failed to increment usage")
		return false, fmt.Errorf("failed to increment usage: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("limit_id", id.String()).Msg("usage increment refused")
		return false, nil
	}
	return true, nil
}

func scanLimit(row pgx.Row) (*model.CommandLimit, error) {
	var (
		limit        model.CommandLimit
		allowedUsers []byte
		allowedTags  []byte
	)

	err := row.Scan(
		&limit.ID,
		&limit.CommandConfigID,
		&limit.MaxUsagePerUser,
		&limit.MaxTotalUsage,
		&limit.CurrentUsage,
		&limit.StartTime,
		&limit.EndTime,
		&allowedUsers,
		&allowedTags,
		&limit.IsEnabled,
		&limit.CreatedAt,
		&limit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(allowedUsers, &limit.AllowedUsers); err != nil {
		return nil, err
	}
	if err := decodeJSON(allowedTags, &limit.AllowedUserTags); err != nil {
		return nil, err
	}

	return &limit, nil
}
