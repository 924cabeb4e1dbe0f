// Package application 提供认证相关的应用服务
package application

import (
	"context"
	"time"

	"github.com/atlasquant/tradedesk/internal/auth/domain"
	"github.com/atlasquant/tradedesk/pkg/apperr"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证应用服务
type AuthService struct {
	repo   domain.UserRepository
	tokens *TokenManager
}

// NewAuthService 创建认证应用服务
func NewAuthService(repo domain.UserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register 注册普通用户
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, apperr.New(apperr.KindValidation, "email is required").WithField("email", "required")
	}
	if len(password) < 8 {
		return nil, apperr.New(apperr.KindValidation, "password too short").WithField("password", "must be at least 8 characters")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "email already registered").WithField("email", "already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(email, string(hash))
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "email", email)
	return user, nil
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// Login 校验凭证并签发令牌
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Role: string(user.Role)}, nil
}

// EnsureAdmin 用户表为空时写入初始管理员账号
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := domain.NewUser(email, string(hash))
	admin.Role = domain.RoleAdmin
	if err := s.repo.Save(ctx, admin); err != nil {
		return err
	}

	logger.Info(ctx, "seeded initial admin account", "email", email)
	return nil
}
