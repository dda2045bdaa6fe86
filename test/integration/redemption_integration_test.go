package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"coupon-command/internal/model"
	"coupon-command/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedemption_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := SetupApp(t, nil)
	ctx := context.Background()

	t.Run("concurrent redemptions never exceed total quota", func(t *testing.T) {
		testutil.CleanupDB(t, app.Pool)
		cfg, limit := SeedCommand(t, app, "ONLY_ONE", &model.LimitInput{MaxTotalUsage: intPtr(1)})

		const attempts = 20
		results := make([]*model.RedemptionResult, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{
					Command: "ONLY_ONE",
					UserID:  fmt.Sprintf("user-%d", i),
				})
				assert.NoError(t, err)
				results[i] = res
			}(i)
		}
		wg.Wait()

		successes := 0
		for _, res := range results {
			require.NotNil(t, res)
			if res.Success {
				successes++
				continue
			}
			assert.Equal(t, model.ReasonTotalUsageExhausted, res.Message)
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, CurrentUsage(t, app, limit.ID))

		records, err := app.Commands.GetCommandUsageRecords(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Len(t, records, attempts)

		detail, err := app.Commands.GetCommandConfigDetail(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, model.UsageStats{Total: attempts, Success: 1, Failure: attempts - 1}, detail.Stats)
	})

	t.Run("concurrent redemptions by one user respect the per-user limit", func(t *testing.T) {
		testutil.CleanupDB(t, app.Pool)
		_, limit := SeedCommand(t, app, "ONCE_EACH", &model.LimitInput{MaxUsagePerUser: intPtr(1), MaxTotalUsage: intPtr(100)})

		const attempts = 10
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "ONCE_EACH", UserID: "same-user"})
				if !assert.NoError(t, err) {
					return
				}
				if res.Success {
					mu.Lock()
					successes++
					mu.Unlock()
				} else {
					assert.Equal(t, model.ReasonUserUsageExhausted, res.Message)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, CurrentUsage(t, app, limit.ID))
	})

	t.Run("disabled limit admits everyone and still counts", func(t *testing.T) {
		testutil.CleanupDB(t, app.Pool)
		_, limit := SeedCommand(t, app, "OPEN_DOOR", &model.LimitInput{
			MaxTotalUsage: intPtr(1),
			AllowedUsers:  []string{"vip"},
			IsEnabled:     boolPtr(false),
		})

		for i := 0; i < 3; i++ {
			res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "OPEN_DOOR", UserID: fmt.Sprintf("guest-%d", i)})
			require.NoError(t, err)
			assert.True(t, res.Success, res.Message)
		}
		assert.Equal(t, 3, CurrentUsage(t, app, limit.ID))

		// Re-enabling applies the quota to the usage already counted.
		toggled, err := app.Commands.ToggleCommandLimitStatus(ctx, limit.ID)
		require.NoError(t, err)
		require.True(t, toggled.IsEnabled)

		res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "OPEN_DOOR", UserID: "vip"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, model.ReasonTotalUsageExhausted, res.Message)
	})

	t.Run("validate never writes", func(t *testing.T) {
		testutil.CleanupDB(t, app.Pool)
		cfg, limit := SeedCommand(t, app, "LOOK_ONLY", &model.LimitInput{MaxTotalUsage: intPtr(5)})

		for i := 0; i < 3; i++ {
			res, err := app.Redemption.ValidateCommand(ctx, &model.ValidateCommandRequest{Command: "LOOK_ONLY", UserID: "u1"})
			require.NoError(t, err)
			assert.True(t, res.Valid)
		}
		res, err := app.Redemption.ValidateCommand(ctx, &model.ValidateCommandRequest{Command: "NOT_THERE"})
		require.NoError(t, err)
		assert.Equal(t, model.ReasonCommandNotFound, res.Reason)

		assert.Equal(t, 0, CurrentUsage(t, app, limit.ID))
		records, err := app.Commands.GetCommandUsageRecords(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("unknown command is audited without a config", func(t *testing.T) {
		testutil.CleanupDB(t, app.Pool)

		res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "GHOST", UserID: "u-ghost", ClientIP: "198.51.100.7"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, model.ReasonCommandNotFound, res.Message)

		records, err := app.Commands.GetUserUsageRecords(ctx, "u-ghost")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].CommandConfigID)
		assert.Equal(t, "GHOST", records[0].CommandText)
		require.NotNil(t, records[0].FailureReason)
		assert.Equal(t, model.ReasonCommandNotFound, *records[0].FailureReason)
		require.NotNil(t, records[0].CreatedFromIP)
		assert.Equal(t, "198.51.100.7", *records[0].CreatedFromIP)
	})

	t.Run("deleting a command removes its limit and records", func(t *testing.T) {
		testutil.CleanupDB(t, app.Pool)
		cfg, _ := SeedCommand(t, app, "SHORT_LIVED", &model.LimitInput{MaxTotalUsage: intPtr(10)})

		res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "SHORT_LIVED", UserID: "u1"})
		require.NoError(t, err)
		require.True(t, res.Success)

		require.NoError(t, app.Commands.DeleteCommandConfig(ctx, cfg.ID))

		records, err := app.Commands.GetUserUsageRecords(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, records)

		var limits int
		require.NoError(t, app.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM command_limits").Scan(&limits))
		assert.Zero(t, limits)
	})
}

func TestRedemption_WithCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	redisCfg := testutil.SetupRedis(t)
	app := SetupApp(t, &redisCfg)
	ctx := context.Background()

	cfg, _ := SeedCommand(t, app, "CACHED", nil)

	// First call fills the cache, second is served from it.
	for i := 0; i < 2; i++ {
		res, err := app.Redemption.ValidateCommand(ctx, &model.ValidateCommandRequest{Command: "CACHED"})
		require.NoError(t, err)
		assert.True(t, res.Valid)
	}

	_, err := app.Commands.UpdateCommandConfig(ctx, cfg.ID, &model.UpdateCommandConfigRequest{Command: "RENAMED"})
	require.NoError(t, err)

	res, err := app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "CACHED", UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, model.ReasonCommandNotFound, res.Message)

	res, err = app.Redemption.UseCommand(ctx, &model.UseCommandRequest{Command: "RENAMED", UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.NoError(t, app.Commands.DeleteCommandConfig(ctx, cfg.ID))

	validation, err := app.Redemption.ValidateCommand(ctx, &model.ValidateCommandRequest{Command: "RENAMED"})
	require.NoError(t, err)
	assert.False(t, validation.Valid)
	assert.Equal(t, model.ReasonCommandNotFound, validation.Reason)
}
