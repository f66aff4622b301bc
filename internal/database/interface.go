package database

import "context"

// DB defines the persistence operations used by the services.
type DB interface {
	// User operations
	CreateUser(ctx context.Context, name, passwordHash string, isChild bool) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByName(ctx context.Context, name string) (*User, error)

	// App operations
	GetAllApps(ctx context.Context) ([]App, error)
	GetUserApps(ctx context.Context, userID uint) ([]UserAppView, error)
	ReplaceUserApps(ctx context.Context, userID uint, apps []AppInput) (*Replacement, error)

	// Memo operations
	CreateMemo(ctx context.Context, userID uint, memoType MemoType, title, subtitle string) (*Memo, error)
	GetMemos(ctx context.Context, userID uint, memoType *MemoType) ([]Memo, error)
	GetMemo(ctx context.Context, userID, id uint) (*Memo, error)
	UpdateMemo(ctx context.Context, userID, id uint, title, subtitle *string) (*Memo, error)
	DeleteMemo(ctx context.Context, userID, id uint) error

	// Utility
	GetStats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
