package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/samber/lo"
)

// AppListCache caches the ordered app lists of users.
// Stamp is taken before a database read; SetUserApps and StoreReplacement
// discard their views when the list was invalidated since.
type AppListCache interface {
	GetUserApps(ctx context.Context, userID uint) ([]database.UserAppView, bool)
	Stamp(userID uint) uint64
	SetUserApps(ctx context.Context, userID uint, stamp uint64, views []database.UserAppView) bool
	StoreReplacement(ctx context.Context, userID uint, stamp uint64, views []database.UserAppView)
	InvalidateAll()
}

// UserAppResponse is one entry of a user's ordered app list.
type UserAppResponse struct {
	AppID   uint   `json:"appId"`
	Name    string `json:"name"`
	ImgPath string `json:"imgPath"`
	RunPath string `json:"runPath"`
	Order   int    `json:"order"`
}

// AppResponse is a catalog app.
type AppResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	ImgPath string `json:"imgPath"`
	RunPath string `json:"runPath"`
}

// AppService manages the app catalog and per-user app lists.
type AppService struct {
	db    database.DB
	cache AppListCache
}

// NewAppService creates an AppService. cache may be nil.
func NewAppService(db database.DB, cache AppListCache) *AppService {
	return &AppService{db: db, cache: cache}
}

// GetUserApps returns the ordered app list of the user.
func (s *AppService) GetUserApps(ctx context.Context, userID uint) Response {
	var stamp uint64
	if s.cache != nil {
		if views, ok := s.cache.GetUserApps(ctx, userID); ok {
			return Success("User apps retrieved successfully", toUserAppResponses(views), http.StatusOK)
		}
		stamp = s.cache.Stamp(userID)
	}

	views, err := s.db.GetUserApps(ctx, userID)
	if err != nil {
		return Internal("Failed to retrieve user apps")
	}
	if s.cache != nil {
		s.cache.SetUserApps(ctx, userID, stamp, views)
	}

	return Success("User apps retrieved successfully", toUserAppResponses(views), http.StatusOK)
}

// ReplaceUserApps makes apps the complete ordered list of the user.
func (s *AppService) ReplaceUserApps(ctx context.Context, userID uint, apps []database.AppInput) Response {
	if err := validateAppInputs(apps); err != nil {
		return BadRequest(err.Error())
	}

	var stamp uint64
	if s.cache != nil {
		stamp = s.cache.Stamp(userID)
	}

	res, err := s.db.ReplaceUserApps(ctx, userID, apps)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return NotFound("User not found")
		case errors.Is(err, database.ErrConflict):
			return Conflict("An app appears more than once in the list")
		default:
			log.Error("failed to replace user apps", "user_id", userID, "error", err)
			return Internal("Failed to save app order")
		}
	}
	if s.cache != nil {
		if len(res.ChangedApps) > 0 {
			// renamed catalog apps show up in other users' lists too
			s.cache.InvalidateAll()
		} else {
			s.cache.StoreReplacement(ctx, userID, stamp, res.Views)
		}
	}

	log.Debug("user apps replaced", "user_id", userID, "count", len(apps))
	return Success("App order saved successfully", OK{Success: true}, http.StatusOK)
}

// GetCatalog returns every known app ordered by name.
func (s *AppService) GetCatalog(ctx context.Context) Response {
	apps, err := s.db.GetAllApps(ctx)
	if err != nil {
		return Internal("Failed to retrieve apps")
	}
	return Success("Apps retrieved successfully", lo.Map(apps, func(a database.App, _ int) AppResponse {
		return AppResponse{
			ID:      a.ID,
			Name:    a.Name,
			ImgPath: a.ImgPath,
			RunPath: a.RunPath,
		}
	}), http.StatusOK)
}

func validateAppInputs(apps []database.AppInput) error {
	if len(apps) == 0 {
		return errors.New("apps must contain at least one entry")
	}
	for i, a := range apps {
		switch {
		case a.ID != nil && *a.ID == 0:
			return fmt.Errorf("apps[%d].id must be a positive integer", i)
		case a.Name == "":
			return fmt.Errorf("apps[%d].name is required", i)
		case a.ImgPath == "":
			return fmt.Errorf("apps[%d].imgPath is required", i)
		case a.RunPath == "":
			return fmt.Errorf("apps[%d].runPath is required", i)
		}
	}
	return nil
}

func toUserAppResponses(views []database.UserAppView) []UserAppResponse {
	return lo.Map(views, func(v database.UserAppView, _ int) UserAppResponse {
		return UserAppResponse{
			AppID:   v.AppID,
			Name:    v.Name,
			ImgPath: v.ImgPath,
			RunPath: v.RunPath,
			Order:   v.SortOrder,
		}
	})
}
