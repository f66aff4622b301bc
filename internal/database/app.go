package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// App is a launchable entry of the shared app catalog.
type App struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	ImgPath   string `gorm:"not null"`
	RunPath   string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserApps  []UserApp `gorm:"constraint:OnDelete:CASCADE;"`
}

// UserApp places an app at a position in a user's list.
// For one user the SortOrder values are always exactly 1..N.
type UserApp struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_user_apps_user_app"`
	AppID     uint `gorm:"not null;index;uniqueIndex:idx_user_apps_user_app"`
	SortOrder int  `gorm:"not null"`
}

// AppInput is one entry of an app list replacement.
// A nil ID, or an ID that does not exist, creates a new catalog app.
type AppInput struct {
	ID      *uint
	Name    string
	ImgPath string
	RunPath string
}

// Replacement is the outcome of a committed app list replacement.
type Replacement struct {
	// Views is the new ordered list of the user.
	Views []UserAppView
	// ChangedApps holds the ids of existing catalog apps whose fields were modified.
	// Other users' lists that contain them changed as well.
	ChangedApps []uint
}

// UserAppView is an app as it appears in a user's ordered list.
type UserAppView struct {
	AppID     uint
	Name      string
	ImgPath   string
	RunPath   string
	SortOrder int
}

func (c *Client) GetAllApps(ctx context.Context) ([]App, error) {
	apps := make([]App, 0)
	if err := c.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&apps).Error; err != nil {
		logger.Error("failed to get all apps", "error", err)
		return nil, err
	}
	return apps, nil
}

func (c *Client) GetUserApps(ctx context.Context, userID uint) ([]UserAppView, error) {
	views, err := userAppViews(c.db.WithContext(ctx), userID)
	if err != nil {
		logger.Error("failed to get user apps", "user_id", userID, "error", err)
		return nil, err
	}
	return views, nil
}

// ReplaceUserApps makes apps the complete ordered list of the user.
// Every referenced app is updated or created, the previous list is removed and
// one row per entry is written with sort order 1..N. All of it happens in a
// single transaction: on any error nothing is changed.
func (c *Client) ReplaceUserApps(ctx context.Context, userID uint, apps []AppInput) (*Replacement, error) {
	var res Replacement
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		rows := make([]UserApp, 0, len(apps))
		for i, in := range apps {
			appID, changed, err := upsertApp(tx, in)
			if err != nil {
				return err
			}
			if changed {
				res.ChangedApps = append(res.ChangedApps, appID)
			}
			rows = append(rows, UserApp{
				UserID:    userID,
				AppID:     appID,
				SortOrder: i + 1,
			})
		}

		if err := tx.Where("user_id = ?", userID).Delete(&UserApp{}).Error; err != nil {
			return err
		}

		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		var err error
		res.Views, err = userAppViews(tx, userID)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("failed to replace user apps", "user_id", userID, "error", err)
		}
		return nil, translateError(err)
	}
	return &res, nil
}

// upsertApp updates the app in place when it exists and creates it otherwise.
// changed reports whether an existing app got different fields.
func upsertApp(tx *gorm.DB, in AppInput) (id uint, changed bool, err error) {
	if in.ID != nil {
		var existing App
		res := tx.Where("id = ?", *in.ID).Limit(1).Find(&existing)
		if res.Error != nil {
			return 0, false, res.Error
		}
		if res.RowsAffected > 0 {
			if existing.Name == in.Name && existing.ImgPath == in.ImgPath && existing.RunPath == in.RunPath {
				return existing.ID, false, nil
			}
			err := tx.Model(&existing).Updates(map[string]any{
				"name":     in.Name,
				"img_path": in.ImgPath,
				"run_path": in.RunPath,
			}).Error
			if err != nil {
				return 0, false, err
			}
			return existing.ID, true, nil
		}
	}

	app := App{
		Name:    in.Name,
		ImgPath: in.ImgPath,
		RunPath: in.RunPath,
	}
	if err := tx.Create(&app).Error; err != nil {
		return 0, false, err
	}
	return app.ID, false, nil
}

func userAppViews(db *gorm.DB, userID uint) ([]UserAppView, error) {
	views := make([]UserAppView, 0)
	err := db.Table("user_apps").
		Select("apps.id AS app_id, apps.name, apps.img_path, apps.run_path, user_apps.sort_order").
		Joins("JOIN apps ON apps.id = user_apps.app_id").
		Where("user_apps.user_id = ?", userID).
		Order("user_apps.sort_order ASC").
		Scan(&views).Error
	return views, err
}
