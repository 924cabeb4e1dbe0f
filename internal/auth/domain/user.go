package domain

import (
	"context"

	"gorm.io/gorm"
)

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleTrader UserRole = "TRADER"
)

// Valid 判断角色是否合法
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleTrader
}

// User 用户实体
type User struct {
	gorm.Model
	Email        string   `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	Role         UserRole `gorm:"column:role;type:varchar(20);not null" json:"role"`
	IsActive     bool     `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}

// NewUser 创建普通用户
func NewUser(email, passwordHash string) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleTrader,
		IsActive:     true,
	}
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRepository 用户仓储接口
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	Count(ctx context.Context) (int64, error)
}
