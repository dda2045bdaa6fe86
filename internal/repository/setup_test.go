package repository

import (
	"context"
	"testing"
	"time"

	"coupon-command/internal/model"
	"coupon-command/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// setupTestDB starts a migrated PostgreSQL container for a repository test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}
	return testutil.SetupTestDB(t).Pool
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// seedConfig inserts a coupon and a config pointing at it.
func seedConfig(t *testing.T, pool *pgxpool.Pool, command string) (*model.CommandConfig, *model.Coupon) {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()

	now := time.Now().UTC().Truncate(time.Microsecond)
	coupon := &model.Coupon{ID: uuid.New(), Name: "coupon for " + command, CreatedAt: now}
	require.NoError(t, NewCouponRepository(pool, logger).Create(ctx, coupon))

	cfg := &model.CommandConfig{
		ID:        uuid.New(),
		Command:   command,
		CouponID:  &coupon.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewCommandConfigRepository(pool, logger).Create(ctx, cfg))

	return cfg, coupon
}
