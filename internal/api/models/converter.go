package models

import (
	"github.com/homedeck/homedeck/internal/database"
	"github.com/samber/lo"
)

// ToAppInputs converts the app order payload into replacement entries, keeping the order.
func (r UpdateAppOrderRequest) ToAppInputs() []database.AppInput {
	return lo.Map(r.Apps, func(a AppItem, _ int) database.AppInput {
		return database.AppInput{
			ID:      a.ID,
			Name:    a.Name,
			ImgPath: a.ImgPath,
			RunPath: a.RunPath,
		}
	})
}

// MemoTypeFilter returns the requested memo type filter, or nil for all memos.
func (q MemoListQuery) MemoTypeFilter() *database.MemoType {
	if q.MemoType == nil {
		return nil
	}
	return lo.ToPtr(database.MemoType(*q.MemoType))
}
