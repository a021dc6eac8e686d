package database

import (
	"context"
	"errors"

	"go-pos-terminal/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// Users stores terminal operators.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (u *Users) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrUserNotFound
	}
	return user, err
}

func (u *Users) Create(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

// Count is used at start-up to decide whether the first operator may register.
func (u *Users) Count(ctx context.Context) (int64, error) {
	var n int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
