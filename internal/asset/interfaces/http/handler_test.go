package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atlasquant/tradedesk/internal/asset/application"
	"github.com/atlasquant/tradedesk/internal/asset/domain"
	assetmysql "github.com/atlasquant/tradedesk/internal/asset/infrastructure/persistence/mysql"
	authapp "github.com/atlasquant/tradedesk/internal/auth/application"
	authdomain "github.com/atlasquant/tradedesk/internal/auth/domain"
	authhttp "github.com/atlasquant/tradedesk/internal/auth/interfaces/http"
	ordermysql "github.com/atlasquant/tradedesk/internal/order/infrastructure/persistence/mysql"
	refdomain "github.com/atlasquant/tradedesk/internal/refdata/domain"
	refmysql "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/mysql"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type assetHandlerFixture struct {
	router      *gin.Engine
	service     *application.AssetService
	adminToken  string
	traderToken string
}

func newAssetHandlerFixture(t *testing.T) *assetHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	service := application.NewAssetService(
		assetmysql.NewAssetRepository(db),
		exchangeRepo,
		assetClassRepo,
		ordermysql.NewOrderRepository(db),
	)

	tokens := authapp.NewTokenManager("test-secret", time.Hour)
	adminToken, _, err := tokens.Issue(&authdomain.User{
		Model: gorm.Model{ID: 1},
		Email: "admin@example.com",
		Role:  authdomain.RoleAdmin,
	})
	require.NoError(t, err)
	traderToken, _, err := tokens.Issue(&authdomain.User{
		Model: gorm.Model{ID: 2},
		Email: "trader@example.com",
		Role:  authdomain.RoleTrader,
	})
	require.NoError(t, err)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(authhttp.Authenticate(tokens))
	NewAssetHandler(service).RegisterRoutes(api)

	return &assetHandlerFixture{
		router:      router,
		service:     service,
		adminToken:  adminToken,
		traderToken: traderToken,
	}
}

func (fx *assetHandlerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func (fx *assetHandlerFixture) seedAsset(t *testing.T) *domain.Asset {
	t.Helper()
	asset, err := fx.service.Create(context.Background(), application.CreateAssetCommand{
		Name:       "Apple Inc. Common Stock",
		Symbol:     "AAPL",
		AssetClass: "us_equity",
		Exchange:   "NASDAQ",
		Tradable:   true,
	})
	require.NoError(t, err)
	return asset
}

func TestAssetRoutesRequireAuthentication(t *testing.T) {
	fx := newAssetHandlerFixture(t)

	rec := fx.do(http.MethodGet, "/api/v1/assets", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAssetCreateRequiresAdmin(t *testing.T) {
	fx := newAssetHandlerFixture(t)
	body := `{"name":"Apple Inc.","symbol":"AAPL","asset_class":"us_equity","exchange":"NASDAQ","tradable":true}`

	rec := fx.do(http.MethodPost, "/api/v1/assets", fx.traderToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(http.MethodPost, "/api/v1/assets", fx.adminToken, body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")

	// 已创建的资产对普通用户可读
	rec = fx.do(http.MethodGet, "/api/v1/assets", fx.traderToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestAssetCreateUnknownExchange(t *testing.T) {
	fx := newAssetHandlerFixture(t)
	body := `{"name":"Apple Inc.","symbol":"AAPL","asset_class":"us_equity","exchange":"LSE"}`

	rec := fx.do(http.MethodPost, "/api/v1/assets", fx.adminToken, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exchange")
}

func TestAssetUpdateRequiresAdmin(t *testing.T) {
	fx := newAssetHandlerFixture(t)
	asset := fx.seedAsset(t)

	rec := fx.do(http.MethodPatch, "/api/v1/assets/"+asset.AssetID, fx.traderToken, `{"tradable":false}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(http.MethodPatch, "/api/v1/assets/"+asset.AssetID, fx.adminToken, `{"tradable":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tradable":false`)
}

func TestAssetDeleteRequiresAdmin(t *testing.T) {
	fx := newAssetHandlerFixture(t)
	asset := fx.seedAsset(t)

	rec := fx.do(http.MethodDelete, "/api/v1/assets/"+asset.AssetID, fx.traderToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 资产未被删除
	rec = fx.do(http.MethodGet, "/api/v1/assets/"+asset.AssetID, fx.traderToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = fx.do(http.MethodDelete, "/api/v1/assets/"+asset.AssetID, fx.adminToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = fx.do(http.MethodGet, "/api/v1/assets/"+asset.AssetID, fx.adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetGetNotFound(t *testing.T) {
	fx := newAssetHandlerFixture(t)

	rec := fx.do(http.MethodGet, "/api/v1/assets/00000000-0000-0000-0000-000000000000", fx.adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
