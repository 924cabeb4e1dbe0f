package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authapp "github.com/atlasquant/tradedesk/internal/auth/application"
	authdomain "github.com/atlasquant/tradedesk/internal/auth/domain"
	authhttp "github.com/atlasquant/tradedesk/internal/auth/interfaces/http"
	"github.com/atlasquant/tradedesk/internal/refdata/application"
	"github.com/atlasquant/tradedesk/internal/refdata/domain"
	refmysql "github.com/atlasquant/tradedesk/internal/refdata/infrastructure/persistence/mysql"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type handlerFixture struct {
	router      *gin.Engine
	service     *application.ReferenceDataService
	adminToken  string
	traderToken string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Exchange{}, &domain.AssetClass{}))

	service := application.NewReferenceDataService(
		refmysql.NewExchangeRepository(db),
		refmysql.NewAssetClassRepository(db),
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
	NewReferenceDataHandler(service).RegisterRoutes(api)

	return &handlerFixture{
		router:      router,
		service:     service,
		adminToken:  adminToken,
		traderToken: traderToken,
	}
}

func (fx *handlerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestExchangeRoutesRequireAuthentication(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.do(http.MethodGet, "/api/v1/exchanges", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = fx.do(http.MethodGet, "/api/v1/exchanges", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExchangeWriteRequiresAdmin(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.do(http.MethodPost, "/api/v1/exchanges", fx.traderToken, `{"name":"NYSE"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(http.MethodPost, "/api/v1/exchanges", fx.adminToken, `{"name":"NYSE"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// 已创建的数据对普通用户可读
	rec = fx.do(http.MethodGet, "/api/v1/exchanges/NYSE", fx.traderToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NYSE")
}

func TestExchangeCreateConflict(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.do(http.MethodPost, "/api/v1/exchanges", fx.adminToken, `{"name":"NASDAQ"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = fx.do(http.MethodPost, "/api/v1/exchanges", fx.adminToken, `{"name":"NASDAQ"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExchangeCreateValidation(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.do(http.MethodPost, "/api/v1/exchanges", fx.adminToken, `{"alt_name":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExchangeDeleteRequiresAdmin(t *testing.T) {
	fx := newHandlerFixture(t)
	ctx := context.Background()

	_, err := fx.service.CreateExchange(ctx, application.CreateCommand{Name: "NYSE"})
	require.NoError(t, err)

	rec := fx.do(http.MethodDelete, "/api/v1/exchanges/NYSE", fx.traderToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(http.MethodDelete, "/api/v1/exchanges/NYSE", fx.adminToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = fx.do(http.MethodDelete, "/api/v1/exchanges/NYSE", fx.adminToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetClassRoutes(t *testing.T) {
	fx := newHandlerFixture(t)

	rec := fx.do(http.MethodPost, "/api/v1/asset-classes", fx.traderToken, `{"name":"us_equity"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = fx.do(http.MethodPost, "/api/v1/asset-classes", fx.adminToken, `{"name":"us_equity","alt_name":"US Equity"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = fx.do(http.MethodGet, "/api/v1/asset-classes", fx.traderToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "us_equity")

	rec = fx.do(http.MethodPatch, "/api/v1/asset-classes/us_equity", fx.adminToken, `{"is_active":false}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_active":false`)
}
