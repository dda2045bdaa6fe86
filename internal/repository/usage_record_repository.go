package repository

import (
	"context"
	"fmt"

	"coupon-command/internal/model"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const usageColumns = `id, command_config_id, user_id, command_text, coupon_id, is_success,
	failure_reason, extra_data, created_by, created_from_ip, created_at`

// usageRecordRepository implements the UsageRecordRepository interface using PostgreSQL.
type usageRecordRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUsageRecordRepository creates a new PostgreSQL-backed usage ledger.
func NewUsageRecordRepository(pool *pgxpool.Pool, logger zerolog.Logger) UsageRecordRepository {
	return &usageRecordRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "usage_record").Logger(),
	}
}

func (r *usageRecordRepository) Append(ctx context.Context, tx pgx.Tx, record *model.CommandUsageRecord) error {
	extra, err := encodeMap(record.ExtraData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO command_usage_records (` + usageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = executor(r.pool, tx).Exec(ctx, query,
		record.ID.Int64(),
		record.CommandConfigID,
		record.UserID,
		record.CommandText,
		record.CouponID,
		record.IsSuccess,
		record.FailureReason,
		extra,
		record.CreatedBy,
		record.CreatedFromIP,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("record_id", record.ID.String()).
			Str("user_id", record.UserID).
			Bool("is_success", record.IsSuccess).
			Msg("failed to append usage record")
		return fmt.Errorf("failed to append usage record: %w", err)
	}

	r.logger.Debug().
		Str("record_id", record.ID.String()).
		Bool("is_success", record.IsSuccess).
		Msg("usage record appended")

	return nil
}

func (r *usageRecordRepository) CountTotalByUserAndConfig(ctx context.Context, userID string, configID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM command_usage_records
		WHERE user_id = $1 AND command_config_id = $2
	`
	return r.count(ctx, r.pool, query, userID, configID)
}

func (r *usageRecordRepository) CountSuccessByUserAndConfig(ctx context.Context, tx pgx.Tx, userID string, configID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM command_usage_records
		WHERE user_id = $1 AND command_config_id = $2 AND is_success
	`
	return r.count(ctx, executor(r.pool, tx), query, userID, configID)
}

func (r *usageRecordRepository) count(ctx context.Context, db DBTX, query, userID string, configID uuid.UUID) (int, error) {
	var n int
	if err := db.QueryRow(ctx, query, userID, configID).Scan(&n); err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("config_id", configID.String()).
			Msg("failed to count usage records")
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return n, nil
}

func (r *usageRecordRepository) FindByUser(ctx context.Context, userID string) ([]model.CommandUsageRecord, error) {
	query := `
		SELECT ` + usageColumns + ` FROM command_usage_records
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.find(ctx, query, userID)
}

func (r *usageRecordRepository) FindByConfig(ctx context.Context, configID uuid.UUID) ([]model.CommandUsageRecord, error) {
	query := `
		SELECT ` + usageColumns + ` FROM command_usage_records
		WHERE command_config_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.find(ctx, query, configID)
}

func (r *usageRecordRepository) find(ctx context.Context, query string, arg any) ([]model.CommandUsageRecord, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query usage records")
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	records := make([]model.CommandUsageRecord, 0)
	for rows.Next() {
		record, err := scanUsageRecord(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan usage record row")
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating usage record rows")
		return nil, fmt.Errorf("error iterating usage records: %w", err)
	}

	return records, nil
}

func (r *usageRecordRepository) GetStats(ctx context.Context, configID uuid.UUID) (model.UsageStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_success)
		FROM command_usage_records
		WHERE command_config_id = $1
	`

	var stats model.UsageStats
	if err := r.pool.QueryRow(ctx, query, configID).Scan(&stats.Total, &stats.Success); err != nil {
		r.logger.Error().Err(err).Str("config_id", configID.String()).Msg("failed to query usage stats")
		return model.UsageStats{}, fmt.Errorf("failed to query usage stats: %w", err)
	}
	stats.Failure = stats.Total - stats.Success

	return stats, nil
}

func scanUsageRecord(row pgx.Row) (*model.CommandUsageRecord, error) {
	var (
		record model.CommandUsageRecord
		id     int64
		extra  []byte
	)

	err := row.Scan(
		&id,
		&record.CommandConfigID,
		&record.UserID,
		&record.CommandText,
		&record.CouponID,
		&record.IsSuccess,
		&record.FailureReason,
		&extra,
		&record.CreatedBy,
		&record.CreatedFromIP,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ID = snowflake.ID(id)
	if err := decodeJSON(extra, &record.ExtraData); err != nil {
		return nil, err
	}

	return &record, nil
}
