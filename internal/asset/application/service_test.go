package application

import (
	"context"
	"testing"

	"github.com/atlasquant/tradedesk/internal/asset/domain"
	assetmysql "github.com/atlasquant/tradedesk/internal/asset/infrastructure/persistence/mysql"
	orderdomain "github.com/atlasquant/tradedesk/internal/order/domain"
	ordermysql "github.com/atlasquant/tradedesk/internal/order/infrastructure/persistence/mysql"
	refdomain "github.com/atlasquant/tradedesk/internal/refdata/domain"
	refmysql "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/mysql"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type assetFixture struct {
	service *AssetService
	assets  domain.AssetRepository
	orders  orderdomain.OrderRepository
}

func newAssetFixture(t *testing.T) *assetFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&refdomain.Exchange{},
		&refdomain.AssetClass{},
		&domain.Asset{},
		&ordermysql.OrderModel{},
	))

	ctx := context.Background()
	exchangeRepo := refmysql.NewExchangeRepository(db)
	assetClassRepo := refmysql.NewAssetClassRepository(db)
	require.NoError(t, exchangeRepo.Save(ctx, refdomain.NewExchange("NASDAQ", "", true)))
	require.NoError(t, assetClassRepo.Save(ctx, refdomain.NewAssetClass("us_equity", "", true)))

	assetRepo := assetmysql.NewAssetRepository(db)
	orderRepo := ordermysql.NewOrderRepository(db)
	return &assetFixture{
		service: NewAssetService(assetRepo, exchangeRepo, assetClassRepo, orderRepo),
		assets:  assetRepo,
		orders:  orderRepo,
	}
}

func validCreate() CreateAssetCommand {
	return CreateAssetCommand{
		Name:       "Apple Inc. Common Stock",
		Symbol:     "AAPL",
		AssetClass: "us_equity",
		Exchange:   "NASDAQ",
		Tradable:   true,
	}
}

func TestAssetCreate(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	asset, err := fx.service.Create(ctx, validCreate())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, asset.Status)
	_, err = uuid.Parse(asset.AssetID)
	assert.NoError(t, err, "generated asset id should be a UUID")

	got, err := fx.service.Get(ctx, asset.AssetID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
}

func TestAssetCreateRejectsUnknownExchange(t *testing.T) {
	fx := newAssetFixture(t)

	cmd := validCreate()
	cmd.Exchange = "LSE"
	_, err := fx.service.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.FieldsOf(err), "exchange")

	// 校验失败时不应写入
	assets, listErr := fx.service.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, assets)
}

func TestAssetCreateRejectsUnknownAssetClass(t *testing.T) {
	fx := newAssetFixture(t)

	cmd := validCreate()
	cmd.AssetClass = "crypto"
	_, err := fx.service.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.FieldsOf(err), "asset_class")
}

func TestAssetCreateRejectsDuplicateSymbol(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	_, err := fx.service.Create(ctx, validCreate())
	require.NoError(t, err)

	cmd := validCreate()
	cmd.Name = "Another Apple"
	_, err = fx.service.Create(ctx, cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestAssetCreateRejectsMalformedID(t *testing.T) {
	fx := newAssetFixture(t)

	cmd := validCreate()
	cmd.AssetID = "not-a-uuid"
	_, err := fx.service.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAssetUpdate(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	asset, err := fx.service.Create(ctx, validCreate())
	require.NoError(t, err)

	tradable := false
	status := string(domain.StatusInactive)
	updated, err := fx.service.Update(ctx, asset.AssetID, UpdateAssetCommand{
		Tradable: &tradable,
		Status:   &status,
	})
	require.NoError(t, err)
	assert.False(t, updated.Tradable)
	assert.Equal(t, domain.StatusInactive, updated.Status)

	unknown := "LSE"
	_, err = fx.service.Update(ctx, asset.AssetID, UpdateAssetCommand{Exchange: &unknown})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAssetUpdateNotFound(t *testing.T) {
	fx := newAssetFixture(t)

	name := "renamed"
	_, err := fx.service.Update(context.Background(), uuid.NewString(), UpdateAssetCommand{Name: &name})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAssetDelete(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	asset, err := fx.service.Create(ctx, validCreate())
	require.NoError(t, err)

	require.NoError(t, fx.service.Delete(ctx, asset.AssetID))

	err = fx.service.Delete(ctx, asset.AssetID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAssetDeleteBlockedByOrders(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	asset, err := fx.service.Create(ctx, validCreate())
	require.NoError(t, err)

	order := &orderdomain.Order{
		Status:        orderdomain.StatusOpen,
		Symbol:        asset.Symbol,
		Quantity:      decimal.NewFromInt(5),
		Side:          orderdomain.SideBuy,
		Type:          orderdomain.TypeMarket,
		TimeInForce:   orderdomain.TIFDay,
		ClientOrderID: uuid.NewString(),
	}
	require.NoError(t, fx.orders.Save(ctx, order))

	err = fx.service.Delete(ctx, asset.AssetID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestAssetRenameBlockedByOrders(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	asset, err := fx.service.Create(ctx, validCreate())
	require.NoError(t, err)

	order := &orderdomain.Order{
		Status:        orderdomain.StatusOpen,
		Symbol:        asset.Symbol,
		Quantity:      decimal.NewFromInt(5),
		Side:          orderdomain.SideBuy,
		Type:          orderdomain.TypeMarket,
		TimeInForce:   orderdomain.TIFDay,
		ClientOrderID: uuid.NewString(),
	}
	require.NoError(t, fx.orders.Save(ctx, order))

	symbol := "MSFT"
	_, err = fx.service.Update(ctx, asset.AssetID, UpdateAssetCommand{Symbol: &symbol})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	got, err := fx.assets.GetBySymbol(ctx, asset.Symbol)
	require.NoError(t, err)
	require.NotNil(t, got, "orders must keep resolving the original symbol")

	name := "Apple Inc."
	updated, err := fx.service.Update(ctx, asset.AssetID, UpdateAssetCommand{Name: &name})
	require.NoError(t, err, "non-symbol fields stay updatable while referenced")
	assert.Equal(t, name, updated.Name)
}

func TestAssetUpsertIdempotent(t *testing.T) {
	fx := newAssetFixture(t)
	ctx := context.Background()

	cmd := validCreate()
	cmd.AssetID = uuid.NewString()

	first, err := fx.service.Upsert(ctx, cmd)
	require.NoError(t, err)

	// 同一自然键重复写入，后写覆盖
	cmd.Name = "Apple Inc."
	cmd.Tradable = false
	second, err := fx.service.Upsert(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, first.AssetID, second.AssetID)

	count, err := fx.service.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	got, err := fx.service.Get(ctx, cmd.AssetID)
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", got.Name)
	assert.False(t, got.Tradable)
}

func TestAssetUpsertRequiresID(t *testing.T) {
	fx := newAssetFixture(t)

	_, err := fx.service.Upsert(context.Background(), validCreate())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
