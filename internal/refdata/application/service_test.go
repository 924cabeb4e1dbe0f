package application

import (
	"context"
	"testing"

	"github.com/atlasquant/tradedesk/internal/refdata/domain"
	refmysql "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/mysql"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRefService(t *testing.T) *ReferenceDataService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Exchange{}, &domain.AssetClass{}))

	return NewReferenceDataService(refmysql.NewExchangeRepository(db), refmysql.NewAssetClassRepository(db))
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestCreateExchange(t *testing.T) {
	service := newRefService(t)
	ctx := context.Background()

	exchange, err := service.CreateExchange(ctx, CreateCommand{Name: "NASDAQ", AltName: "Nasdaq Stock Market"})
	require.NoError(t, err)
	assert.Equal(t, "NASDAQ", exchange.Name)
	assert.True(t, exchange.IsActive)

	inactive, err := service.CreateExchange(ctx, CreateCommand{Name: "AMEX", IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)
}

func TestCreateExchangeRejectsDuplicate(t *testing.T) {
	service := newRefService(t)
	ctx := context.Background()

	_, err := service.CreateExchange(ctx, CreateCommand{Name: "NYSE"})
	require.NoError(t, err)

	_, err = service.CreateExchange(ctx, CreateCommand{Name: "NYSE"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateExchangeRequiresName(t *testing.T) {
	service := newRefService(t)

	_, err := service.CreateExchange(context.Background(), CreateCommand{AltName: "nameless"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestGetExchangeNotFound(t *testing.T) {
	service := newRefService(t)

	_, err := service.GetExchange(context.Background(), "LSE")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateExchange(t *testing.T) {
	service := newRefService(t)
	ctx := context.Background()

	_, err := service.CreateExchange(ctx, CreateCommand{Name: "NYSE", AltName: "New York"})
	require.NoError(t, err)

	updated, err := service.UpdateExchange(ctx, "NYSE", UpdateCommand{
		AltName:  strPtr("New York Stock Exchange"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "New York Stock Exchange", updated.AltName)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "NYSE", updated.Name)
}

func TestUpdateExchangeRename(t *testing.T) {
	service := newRefService(t)
	ctx := context.Background()

	_, err := service.CreateExchange(ctx, CreateCommand{Name: "NYSE"})
	require.NoError(t, err)
	_, err = service.CreateExchange(ctx, CreateCommand{Name: "NASDAQ"})
	require.NoError(t, err)

	// 改名到已占用名称
	_, err = service.UpdateExchange(ctx, "NYSE", UpdateCommand{Name: strPtr("NASDAQ")})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// 正常改名
	renamed, err := service.UpdateExchange(ctx, "NYSE", UpdateCommand{Name: strPtr("NYSE-ARCA")})
	require.NoError(t, err)
	assert.Equal(t, "NYSE-ARCA", renamed.Name)

	_, err = service.GetExchange(ctx, "NYSE")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteExchange(t *testing.T) {
	service := newRefService(t)
	ctx := context.Background()

	_, err := service.CreateExchange(ctx, CreateCommand{Name: "NYSE"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteExchange(ctx, "NYSE"))

	err = service.DeleteExchange(ctx, "NYSE")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAssetClassCRUD(t *testing.T) {
	service := newRefService(t)
	ctx := context.Background()

	created, err := service.CreateAssetClass(ctx, CreateCommand{Name: "us_equity", AltName: "US Equity"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = service.CreateAssetClass(ctx, CreateCommand{Name: "us_equity"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	updated, err := service.UpdateAssetClass(ctx, "us_equity", UpdateCommand{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	classes, err := service.ListAssetClasses(ctx)
	require.NoError(t, err)
	assert.Len(t, classes, 1)

	require.NoError(t, service.DeleteAssetClass(ctx, "us_equity"))
	_, err = service.GetAssetClass(ctx, "us_equity")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
