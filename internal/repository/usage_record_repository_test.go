package repository

import (
	"context"
	"testing"
	"time"

	"coupon-command/internal/model"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordFactory struct {
	node *snowflake.Node
	now  time.Time
}

func newRecordFactory(t *testing.T) *recordFactory {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return &recordFactory{node: node, now: time.Now().UTC().Truncate(time.Microsecond)}
}

// next builds a record one second newer than the previous one.
func (f *recordFactory) next(cfg *model.CommandConfig, userID string, success bool) *model.CommandUsageRecord {
	f.now = f.now.Add(time.Second)
	record := &model.CommandUsageRecord{
		ID:          f.node.Generate(),
		UserID:      userID,
		CommandText: "TEXT",
		IsSuccess:   success,
		CreatedAt:   f.now,
	}
	if cfg != nil {
		record.CommandConfigID = &cfg.ID
		record.CommandText = cfg.Command
		if success {
			record.CouponID = cfg.CouponID
		}
	}
	if !success {
		reason := model.ReasonTotalUsageExhausted
		record.FailureReason = &reason
	}
	return record
}

func TestUsageRecordRepository_AppendAndFind(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUsageRecordRepository(pool, zerolog.Nop())
	ctx := context.Background()
	f := newRecordFactory(t)

	cfg, _ := seedConfig(t, pool, "LEDGER")

	ip := "10.0.0.1"
	first := f.next(cfg, "u1", true)
	first.CreatedFromIP = &ip
	first.CreatedBy = &first.UserID
	first.ExtraData = map[string]any{"stage": "redeem"}
	second := f.next(cfg, "u1", false)
	third := f.next(cfg, "u2", true)
	orphan := f.next(nil, "u1", false)

	for _, r := range []*model.CommandUsageRecord{first, second, third, orphan} {
		require.NoError(t, repo.Append(ctx, nil, r))
	}

	t.Run("FindByUser newest first", func(t *testing.T) {
		records, err := repo.FindByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, orphan.ID, records[0].ID)
		assert.Nil(t, records[0].CommandConfigID)
		assert.Equal(t, second.ID, records[1].ID)
		assert.Equal(t, first.ID, records[2].ID)
	})

	t.Run("FindByConfig newest first", func(t *testing.T) {
		records, err := repo.FindByConfig(ctx, cfg.ID)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, third.ID, records[0].ID)
		assert.Equal(t, first.ID, records[2].ID)
	})

	t.Run("Fields round trip", func(t *testing.T) {
		records, err := repo.FindByConfig(ctx, cfg.ID)
		require.NoError(t, err)
		got := records[2]
		assert.True(t, got.IsSuccess)
		require.NotNil(t, got.CouponID)
		assert.Equal(t, *cfg.CouponID, *got.CouponID)
		assert.Nil(t, got.FailureReason)
		assert.Equal(t, "redeem", got.ExtraData["stage"])
		require.NotNil(t, got.CreatedFromIP)
		assert.Equal(t, "10.0.0.1", *got.CreatedFromIP)

		failed := records[1]
		assert.False(t, failed.IsSuccess)
		assert.Nil(t, failed.CouponID)
		require.NotNil(t, failed.FailureReason)
		assert.Equal(t, model.ReasonTotalUsageExhausted, *failed.FailureReason)
		assert.Nil(t, failed.ExtraData)
	})

	t.Run("Unknown user", func(t *testing.T) {
		records, err := repo.FindByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestUsageRecordRepository_Counts(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUsageRecordRepository(pool, zerolog.Nop())
	ctx := context.Background()
	f := newRecordFactory(t)

	cfg, _ := seedConfig(t, pool, "COUNTED")
	other, _ := seedConfig(t, pool, "OTHER")

	for _, r := range []*model.CommandUsageRecord{
		f.next(cfg, "u1", true),
		f.next(cfg, "u1", true),
		f.next(cfg, "u1", false),
		f.next(cfg, "u2", true),
		f.next(other, "u1", true),
	} {
		require.NoError(t, repo.Append(ctx, nil, r))
	}

	total, err := repo.CountTotalByUserAndConfig(ctx, "u1", cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	success, err := repo.CountSuccessByUserAndConfig(ctx, nil, "u1", cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, success)

	stats, err := repo.GetStats(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UsageStats{Total: 4, Success: 3, Failure: 1}, stats)

	empty, err := repo.GetStats(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.UsageStats{}, empty)
}

func TestUsageRecordRepository_AppendInTransaction(t *testing.T) {
	pool := setupTestDB(t)
	logger := zerolog.Nop()
	repo := NewUsageRecordRepository(pool, logger)
	limitRepo := NewCommandLimitRepository(pool, logger)
	ctx := context.Background()
	f := newRecordFactory(t)

	cfg, _ := seedConfig(t, pool, "TXN")

	t.Run("Rollback discards the record", func(t *testing.T) {
		tx, err := limitRepo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, tx, f.next(cfg, "u1", true)))

		inside, err := repo.CountSuccessByUserAndConfig(ctx, tx, "u1", cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, inside)

		require.NoError(t, tx.Rollback(ctx))

		outside, err := repo.CountSuccessByUserAndConfig(ctx, nil, "u1", cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, outside)
	})

	t.Run("Commit keeps the record", func(t *testing.T) {
		tx, err := limitRepo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, tx, f.next(cfg, "u1", true)))
		require.NoError(t, tx.Commit(ctx))

		n, err := repo.CountSuccessByUserAndConfig(ctx, nil, "u1", cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestUsageRecordRepository_ErrorPaths(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewUsageRecordRepository(pool, zerolog.Nop())
	ctx := context.Background()
	f := newRecordFactory(t)

	pool.Close()

	assert.Error(t, repo.Append(ctx, nil, f.next(nil, "u1", false)))

	_, err := repo.CountSuccessByUserAndConfig(ctx, nil, "u1", uuid.New())
	assert.Error(t, err)

	_, err = repo.FindByUser(ctx, "u1")
	assert.Error(t, err)

	_, err = repo.GetStats(ctx, uuid.New())
	assert.Error(t, err)
}
