package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// MemoType classifies a memo. Only MemoTypeNote and MemoTypeTodo are accepted.
type MemoType int

const (
	MemoTypeNote MemoType = 1
	MemoTypeTodo MemoType = 2
)

// Valid reports whether t is a known memo type.
func (t MemoType) Valid() bool {
	return t == MemoTypeNote || t == MemoTypeTodo
}

// Memo is a short text entry owned by exactly one user.
type Memo struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	MemoType  MemoType  `gorm:"not null;index"`
	Title     string    `gorm:"not null"`
	Subtitle  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (c *Client) CreateMemo(ctx context.Context, userID uint, memoType MemoType, title, subtitle string) (*Memo, error) {
	memo := Memo{
		UserID:   userID,
		MemoType: memoType,
		Title:    title,
		Subtitle: subtitle,
	}
	if err := c.db.WithContext(ctx).Create(&memo).Error; err != nil {
		logger.Error("failed to create memo", "user_id", userID, "error", err)
		return nil, translateError(err)
	}
	return &memo, nil
}

// GetMemos returns the memos of a user, newest first, optionally filtered by type.
func (c *Client) GetMemos(ctx context.Context, userID uint, memoType *MemoType) ([]Memo, error) {
	memos := make([]Memo, 0)
	q := c.db.WithContext(ctx).Where("user_id = ?", userID)
	if memoType != nil {
		q = q.Where("memo_type = ?", *memoType)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&memos).Error; err != nil {
		logger.Error("failed to get memos", "user_id", userID, "error", err)
		return nil, err
	}
	return memos, nil
}

// GetMemo returns a memo owned by userID. A memo of another user is reported as ErrNotFound.
func (c *Client) GetMemo(ctx context.Context, userID, id uint) (*Memo, error) {
	var memo Memo
	if err := c.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&memo).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("failed to get memo", "memo_id", id, "error", err)
		}
		return nil, translateError(err)
	}
	return &memo, nil
}

// UpdateMemo changes the non-nil fields of a memo owned by userID.
// With both fields nil the memo is returned unchanged.
func (c *Client) UpdateMemo(ctx context.Context, userID, id uint, title, subtitle *string) (*Memo, error) {
	updates := make(map[string]any, 2)
	if title != nil {
		updates["title"] = *title
	}
	if subtitle != nil {
		updates["subtitle"] = *subtitle
	}
	if len(updates) == 0 {
		return c.GetMemo(ctx, userID, id)
	}

	res := c.db.WithContext(ctx).Model(&Memo{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if res.Error != nil {
		logger.Error("failed to update memo", "memo_id", id, "error", res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return c.GetMemo(ctx, userID, id)
}

// DeleteMemo removes a memo owned by userID.
func (c *Client) DeleteMemo(ctx context.Context, userID, id uint) error {
	res := c.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Memo{})
	if res.Error != nil {
		logger.Error("failed to delete memo", "memo_id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
