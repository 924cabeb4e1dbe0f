package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atlasquant/tradedesk/internal/auth/application"
	"github.com/atlasquant/tradedesk/internal/auth/domain"
	authmysql "github.com/atlasquant/tradedesk/internal/auth/infrastructure/persistence/mysql"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	tokens := application.NewTokenManager("test-secret", time.Hour)
	service := application.NewAuthService(authmysql.NewUserRepository(db), tokens)

	router := gin.New()
	NewAuthHandler(service).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	router := newAuthRouter(t)

	rec := post(router, "/api/v1/auth/register", `{"email":"trader@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "trader@example.com")
	assert.NotContains(t, rec.Body.String(), "s3cret-pass")

	rec = post(router, "/api/v1/auth/register", `{"email":"trader@example.com","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterEndpointRejectsBadPayload(t *testing.T) {
	router := newAuthRouter(t)

	rec := post(router, "/api/v1/auth/register", `{"email":"not-an-email","password":"s3cret-pass"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(router, "/api/v1/auth/register", `{"email":"trader@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newAuthRouter(t)

	rec := post(router, "/api/v1/auth/register", `{"email":"trader@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = post(router, "/api/v1/auth/login", `{"email":"trader@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data application.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.Token)
	assert.Equal(t, "TRADER", body.Data.Role)

	rec = post(router, "/api/v1/auth/login", `{"email":"trader@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
