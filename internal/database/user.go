package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns an app list and memos.
// Names are unique; only the bcrypt hash of the password is stored.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	IsChild      bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	UserApps     []UserApp `gorm:"constraint:OnDelete:CASCADE;"`
	Memos        []Memo    `gorm:"constraint:OnDelete:CASCADE;"`
}

func (c *Client) CreateUser(ctx context.Context, name, passwordHash string, isChild bool) (*User, error) {
	user := User{
		Name:         name,
		PasswordHash: passwordHash,
		IsChild:      isChild,
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("failed to create user", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to get user by ID", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetUserByName(ctx context.Context, name string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("name = ?", name).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to get user by name", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}
