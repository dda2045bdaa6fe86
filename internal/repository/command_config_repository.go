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

const configColumns = `id, command, coupon_id, created_at, updated_at`

// commandConfigRepository implements the CommandConfigRepository interface using PostgreSQL.
type commandConfigRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCommandConfigRepository creates a new PostgreSQL-backed command config repository.
func NewCommandConfigRepository(pool *pgxpool.Pool, logger zerolog.Logger) CommandConfigRepository {
	return &commandConfigRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "command_config").Logger(),
	}
}

func (r *commandConfigRepository) Create(ctx context.Context, cfg *model.CommandConfig) error {
	query := `
		INSERT INTO command_configs (id, command, coupon_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, cfg.ID, cfg.Command, cfg.CouponID, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Debug().Str("command", cfg.Command).Msg("command already exists")
			return model.ErrCommandExists
		}
		r.logger.Error().Err(err).Str("config_id", cfg.ID.String()).Msg("failed to create command config")
		return fmt.Errorf("failed to create command config: %w", err)
	}

	r.logger.Debug().Str("config_id", cfg.ID.String()).Msg("command config created successfully")
	return nil
}

func (r *commandConfigRepository) Update(ctx context.Context, cfg *model.CommandConfig) error {
	query := `
		UPDATE command_configs
		SET command = $2, coupon_id = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, cfg.ID, cfg.Command, cfg.CouponID, cfg.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrCommandExists
		}
		r.logger.Error().Err(err).Str("config_id", cfg.ID.String()).Msg("failed to update command config")
		return fmt.Errorf("failed to update command config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCommandConfigNotFound
	}

	return nil
}

func (r *commandConfigRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM command_configs WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("config_id", id.String()).Msg("failed to delete command config")
		return false, fmt.Errorf("failed to delete command config: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *commandConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommandConfig, error) {
	query := `SELECT ` + configColumns + ` FROM command_configs WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *commandConfigRepository) GetByCommand(ctx context.Context, command string) (*model.CommandConfig, error) {
	query := `SELECT ` + configColumns + ` FROM command_configs WHERE command = $1`
	return r.getOne(ctx, query, command)
}

func (r *commandConfigRepository) getOne(ctx context.Context, query string, arg any) (*model.CommandConfig, error) {
	cfg, err := scanConfig(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query command config")
		return nil, fmt.Errorf("failed to query command config: %w", err)
	}
	return cfg, nil
}

func (r *commandConfigRepository) ExistsByCommand(ctx context.Context, command string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM command_configs
			WHERE command = $1 AND ($2::uuid IS NULL OR id <> $2)
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, command, excludeID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("command", command).Msg("failed to check command existence")
		return false, fmt.Errorf("failed to check command existence: %w", err)
	}
	return exists, nil
}

func (r *commandConfigRepository) List(ctx context.Context) ([]model.CommandConfig, error) {
	query := `SELECT ` + configColumns + ` FROM command_configs ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query command configs")
		return nil, fmt.Errorf("failed to query command configs: %w", err)
	}
	defer rows.Close()

	configs := make([]model.CommandConfig, 0)
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan command config row")
			return nil, fmt.Errorf("failed to scan command config: %w", err)
		}
		configs = append(configs, *cfg)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating command config rows")
		return nil, fmt.Errorf("error iterating command configs: %w", err)
	}

	return configs, nil
}

func scanConfig(row pgx.Row) (*model.CommandConfig, error) {
	var cfg model.CommandConfig
	if err := row.Scan(&cfg.ID, &cfg.Command, &cfg.CouponID, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return nil, err
	}
	return &cfg, nil
}
