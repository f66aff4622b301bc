package database

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Stats summarizes the contents of the database.
type Stats struct {
	Users        int64
	Apps         int64
	UserApps     int64
	Memos        int64
	LastSignupAt *time.Time
	LastMemoAt   *time.Time
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := c.db.WithContext(ctx)

	// a failing count cancels the others
	g, gctx := errgroup.WithContext(ctx)
	counts := c.db.WithContext(gctx)
	g.Go(func() error { return counts.Model(&User{}).Count(&stats.Users).Error })
	g.Go(func() error { return counts.Model(&App{}).Count(&stats.Apps).Error })
	g.Go(func() error { return counts.Model(&UserApp{}).Count(&stats.UserApps).Error })
	g.Go(func() error { return counts.Model(&Memo{}).Count(&stats.Memos).Error })
	if err := g.Wait(); err != nil {
		logger.Error("failed to count rows", "error", err)
		return nil, err
	}

	var user User
	if stats.Users > 0 {
		if err := db.Order("created_at DESC").First(&user).Error; err != nil {
			return nil, translateError(err)
		}
		stats.LastSignupAt = &user.CreatedAt
	}

	var memo Memo
	if stats.Memos > 0 {
		if err := db.Order("created_at DESC").First(&memo).Error; err != nil {
			return nil, translateError(err)
		}
		stats.LastMemoAt = &memo.CreatedAt
	}

	return &stats, nil
}
