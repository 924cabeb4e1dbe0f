package application

import (
	"context"
	"testing"
	"time"

	"github.com/atlasquant/tradedesk/internal/auth/domain"
	authmysql "github.com/atlasquant/tradedesk/internal/auth/infrastructure/persistence/mysql"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newAuthService(t *testing.T) (*AuthService, domain.UserRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	repo := authmysql.NewUserRepository(db)
	return NewAuthService(repo, NewTokenManager("test-secret", time.Hour)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "trader@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrader, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	result, err := service.Login(ctx, "trader@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, string(domain.RoleTrader), result.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "trader@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = service.Register(ctx, "trader@example.com", "another-pass")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service, _ := newAuthService(t)

	_, err := service.Register(context.Background(), "trader@example.com", "short")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service, _ := newAuthService(t)
	ctx := context.Background()

	_, err := service.Login(ctx, "nobody@example.com", "whatever-pass")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = service.Register(ctx, "trader@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = service.Login(ctx, "trader@example.com", "wrong-pass")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	service, repo := newAuthService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "trader@example.com", "s3cret-pass")
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, repo.Save(ctx, user))

	_, err = service.Login(ctx, "trader@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestEnsureAdminSeedsOnlyEmptyTable(t *testing.T) {
	service, repo := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, service.EnsureAdmin(ctx, "admin@example.com", "admin-pass"))

	admin, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	// 已有用户时不再写入
	require.NoError(t, service.EnsureAdmin(ctx, "second@example.com", "admin-pass"))
	second, err := repo.GetByEmail(ctx, "second@example.com")
	require.NoError(t, err)
	assert.Nil(t, second)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
