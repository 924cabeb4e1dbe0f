// Package mysql 提供用户仓储接口的 GORM 实现。
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlasquant/tradedesk/internal/auth/domain"
	"github.com/atlasquant/tradedesk/pkg/logger"
	"gorm.io/gorm"
)

type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepositoryImpl{db: db}
}

// Save 实现 domain.UserRepository.Save
func (r *userRepositoryImpl) Save(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		logger.Error(ctx, "user_repository.save failed", "email", user.Email, "error", err)
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetByEmail 实现 domain.UserRepository.GetByEmail
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "user_repository.get_by_email failed", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Count 实现 domain.UserRepository.Count
func (r *userRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
