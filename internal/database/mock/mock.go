package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/homedeck/homedeck/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is an in-memory implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// App storage
	apps      map[uint]*database.App
	nextAppID uint
	userApps  map[uint][]database.UserApp

	// Memo storage
	memos      map[uint]*database.Memo
	nextMemoID uint

	// Error simulation
	CreateUserError      error
	GetUserByIDError     error
	GetUserByNameError   error
	GetAllAppsError      error
	GetUserAppsError     error
	ReplaceUserAppsError error
	CreateMemoError      error
	GetMemosError        error
	GetMemoError         error
	UpdateMemoError      error
	DeleteMemoError      error
	GetStatsError        error
	PingError            error

	// ReplaceCalls counts ReplaceUserApps invocations.
	ReplaceCalls int
	// GetUserAppsCalls counts GetUserApps invocations.
	GetUserAppsCalls int
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	m := &MockDB{}
	m.Reset()
	return m
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.apps = make(map[uint]*database.App)
	m.nextAppID = 1
	m.userApps = make(map[uint][]database.UserApp)
	m.memos = make(map[uint]*database.Memo)
	m.nextMemoID = 1

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByNameError = nil
	m.GetAllAppsError = nil
	m.GetUserAppsError = nil
	m.ReplaceUserAppsError = nil
	m.CreateMemoError = nil
	m.GetMemosError = nil
	m.GetMemoError = nil
	m.UpdateMemoError = nil
	m.DeleteMemoError = nil
	m.GetStatsError = nil
	m.PingError = nil

	m.ReplaceCalls = 0
	m.GetUserAppsCalls = 0
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, name, passwordHash string, isChild bool) (*database.User, error) {
	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Name == name {
			return nil, database.ErrConflict
		}
	}

	now := time.Now().UTC()
	user := &database.User{
		ID:           m.nextUserID,
		Name:         name,
		PasswordHash: passwordHash,
		IsChild:      isChild,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	m.nextUserID++

	u := *user
	return &u, nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *MockDB) GetUserByName(ctx context.Context, name string) (*database.User, error) {
	if m.GetUserByNameError != nil {
		return nil, m.GetUserByNameError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Name == name {
			u := *user
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

// App operations

func (m *MockDB) GetAllApps(ctx context.Context) ([]database.App, error) {
	if m.GetAllAppsError != nil {
		return nil, m.GetAllAppsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	apps := make([]database.App, 0, len(m.apps))
	for _, app := range m.apps {
		apps = append(apps, *app)
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Name == apps[j].Name {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].Name < apps[j].Name
	})
	return apps, nil
}

func (m *MockDB) GetUserApps(ctx context.Context, userID uint) ([]database.UserAppView, error) {
	m.mu.Lock()
	m.GetUserAppsCalls++
	m.mu.Unlock()

	if m.GetUserAppsError != nil {
		return nil, m.GetUserAppsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.viewsLocked(userID), nil
}

func (m *MockDB) ReplaceUserApps(ctx context.Context, userID uint, apps []database.AppInput) (*database.Replacement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReplaceCalls++

	if m.ReplaceUserAppsError != nil {
		return nil, m.ReplaceUserAppsError
	}
	if _, ok := m.users[userID]; !ok {
		return nil, database.ErrNotFound
	}

	// work on copies so a failed replacement leaves the catalog untouched
	staged := make(map[uint]database.App, len(apps))
	seen := make(map[uint]bool, len(apps))
	rows := make([]database.UserApp, 0, len(apps))
	var changed []uint
	nextID := m.nextAppID
	now := time.Now().UTC()

	for i, in := range apps {
		var app database.App
		if in.ID != nil {
			if existing, ok := m.apps[*in.ID]; ok {
				app = *existing
				if staged, ok := staged[app.ID]; ok {
					app = staged
				}
				if app.Name != in.Name || app.ImgPath != in.ImgPath || app.RunPath != in.RunPath {
					changed = append(changed, app.ID)
				}
			}
		}
		if app.ID == 0 {
			app = database.App{ID: nextID, CreatedAt: now}
			nextID++
		}
		app.Name = in.Name
		app.ImgPath = in.ImgPath
		app.RunPath = in.RunPath
		app.UpdatedAt = now

		if seen[app.ID] {
			return nil, database.ErrConflict
		}
		seen[app.ID] = true
		staged[app.ID] = app
		rows = append(rows, database.UserApp{UserID: userID, AppID: app.ID, SortOrder: i + 1})
	}

	for id, app := range staged {
		a := app
		m.apps[id] = &a
	}
	m.nextAppID = nextID
	m.userApps[userID] = rows

	return &database.Replacement{Views: m.viewsLocked(userID), ChangedApps: changed}, nil
}

func (m *MockDB) viewsLocked(userID uint) []database.UserAppView {
	rows := m.userApps[userID]
	views := make([]database.UserAppView, 0, len(rows))
	for _, row := range rows {
		app := m.apps[row.AppID]
		views = append(views, database.UserAppView{
			AppID:     app.ID,
			Name:      app.Name,
			ImgPath:   app.ImgPath,
			RunPath:   app.RunPath,
			SortOrder: row.SortOrder,
		})
	}
	return views
}

// Memo operations

func (m *MockDB) CreateMemo(ctx context.Context, userID uint, memoType database.MemoType, title, subtitle string) (*database.Memo, error) {
	if m.CreateMemoError != nil {
		return nil, m.CreateMemoError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	memo := &database.Memo{
		ID:        m.nextMemoID,
		UserID:    userID,
		MemoType:  memoType,
		Title:     title,
		Subtitle:  subtitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.memos[memo.ID] = memo
	m.nextMemoID++

	c := *memo
	return &c, nil
}

func (m *MockDB) GetMemos(ctx context.Context, userID uint, memoType *database.MemoType) ([]database.Memo, error) {
	if m.GetMemosError != nil {
		return nil, m.GetMemosError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	memos := make([]database.Memo, 0)
	for _, memo := range m.memos {
		if memo.UserID != userID {
			continue
		}
		if memoType != nil && memo.MemoType != *memoType {
			continue
		}
		memos = append(memos, *memo)
	}
	sort.Slice(memos, func(i, j int) bool { return memos[i].ID > memos[j].ID })
	return memos, nil
}

func (m *MockDB) GetMemo(ctx context.Context, userID, id uint) (*database.Memo, error) {
	if m.GetMemoError != nil {
		return nil, m.GetMemoError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	memo, ok := m.memos[id]
	if !ok || memo.UserID != userID {
		return nil, database.ErrNotFound
	}
	c := *memo
	return &c, nil
}

func (m *MockDB) UpdateMemo(ctx context.Context, userID, id uint, title, subtitle *string) (*database.Memo, error) {
	if m.UpdateMemoError != nil {
		return nil, m.UpdateMemoError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	memo, ok := m.memos[id]
	if !ok || memo.UserID != userID {
		return nil, database.ErrNotFound
	}
	if title != nil {
		memo.Title = *title
	}
	if subtitle != nil {
		memo.Subtitle = *subtitle
	}
	if title != nil || subtitle != nil {
		memo.UpdatedAt = time.Now().UTC()
	}
	c := *memo
	return &c, nil
}

func (m *MockDB) DeleteMemo(ctx context.Context, userID, id uint) error {
	if m.DeleteMemoError != nil {
		return m.DeleteMemoError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	memo, ok := m.memos[id]
	if !ok || memo.UserID != userID {
		return database.ErrNotFound
	}
	delete(m.memos, id)
	return nil
}

// Utility

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Users: int64(len(m.users)),
		Apps:  int64(len(m.apps)),
		Memos: int64(len(m.memos)),
	}
	for _, rows := range m.userApps {
		stats.UserApps += int64(len(rows))
	}
	return stats, nil
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockDB) Close() error {
	return nil
}
