package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nhc-it/assetlend-backend/pkg/config"
	"github.com/nhc-it/assetlend-backend/pkg/db/dbtest"
	"github.com/nhc-it/assetlend-backend/pkg/db/models"
	"github.com/nhc-it/assetlend-backend/pkg/enums"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewFromConn(dbtest.Open(t))
}

func seedAsset(name string) *models.Asset {
	return &models.Asset{
		Name:      name,
		Category:  enums.AssetCategoryLaptop,
		Model:     "X1",
		Condition: enums.AssetConditionGood,
		Status:    enums.AssetStatusAvailable,
	}
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(seedAsset("committed")).Error
	}))

	var count int64
	require.NoError(t, client.DB().Model(&models.Asset{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(seedAsset("rolled")).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	require.NoError(t, client.DB().Model(&models.Asset{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)

	require.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(seedAsset("panicked")).Error; err != nil {
				return err
			}
			panic("kaboom")
		})
	})

	var count int64
	require.NoError(t, client.DB().Model(&models.Asset{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: config.DriverSQLite}, nil)
	require.Error(t, err)
}

func TestNewOpensSQLite(t *testing.T) {
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:client_new_test?mode=memory&cache=shared",
	}
	client, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()))
}

func TestSQLiteDSNAddsBusyTimeout(t *testing.T) {
	require.Equal(t, "file:dev.db?_busy_timeout=5000", sqliteDSN("file:dev.db"))
	require.Equal(t, "file:x?mode=memory&_busy_timeout=5000", sqliteDSN("file:x?mode=memory"))
	require.Equal(t, "file:x?_busy_timeout=10", sqliteDSN("file:x?_busy_timeout=10"))
}

func TestIsUniqueViolation(t *testing.T) {
	client := newTestClient(t)
	serial := "SN-1"

	first := seedAsset("first")
	first.SerialNumber = &serial
	require.NoError(t, client.DB().Create(first).Error)

	second := seedAsset("second")
	second.SerialNumber = &serial
	err := client.DB().Create(second).Error
	require.Error(t, err)

	require.True(t, IsUniqueViolation(err, ""))
	require.True(t, IsUniqueViolation(err, "serial_number"))
	require.False(t, IsUniqueViolation(err, "barcode"))
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_assets_barcode"}
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgxErr), "ux_assets_barcode"))
	require.False(t, IsUniqueViolation(pgxErr, "ux_assets_serial_number"))

	pqErr := &pq.Error{Code: "23505", Constraint: "ux_asset_requests_active_asset"}
	require.True(t, IsUniqueViolation(pqErr, ""))

	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	require.False(t, IsUniqueViolation(nil, ""))
	require.False(t, IsUniqueViolation(errors.New("boom"), ""))
}
