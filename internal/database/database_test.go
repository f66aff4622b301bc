package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/homedeck/homedeck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DatabaseTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

func (s *DatabaseTestSuite) SetupTest() {
	client, err := New(&config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "data", "homedeck.db"),
	})
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()
}

func (s *DatabaseTestSuite) TearDownTest() {
	s.Require().NoError(s.client.Close())
}

func (s *DatabaseTestSuite) createUser(name string) *User {
	user, err := s.client.CreateUser(s.ctx, name, "hash", false)
	s.Require().NoError(err)
	return user
}

func (s *DatabaseTestSuite) countUserApps(userID uint) int64 {
	var n int64
	s.Require().NoError(s.client.db.Model(&UserApp{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func (s *DatabaseTestSuite) replaceApps(userID uint, apps []AppInput) ([]UserAppView, error) {
	res, err := s.client.ReplaceUserApps(s.ctx, userID, apps)
	if err != nil {
		return nil, err
	}
	return res.Views, nil
}

func TestDatabaseTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func (s *DatabaseTestSuite) TestCreateUser() {
	user := s.createUser("alice")
	s.NotZero(user.ID)
	s.Equal("alice", user.Name)
	s.False(user.IsChild)

	found, err := s.client.GetUserByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)

	byID, err := s.client.GetUserByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Name)
}

func (s *DatabaseTestSuite) TestCreateUser_DuplicateName() {
	s.createUser("alice")

	_, err := s.client.CreateUser(s.ctx, "alice", "other", true)
	s.ErrorIs(err, ErrConflict)
}

func (s *DatabaseTestSuite) TestGetUser_NotFound() {
	_, err := s.client.GetUserByName(s.ctx, "nobody")
	s.ErrorIs(err, ErrNotFound)

	_, err = s.client.GetUserByID(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
}

func (s *DatabaseTestSuite) TestReplaceUserApps() {
	user := s.createUser("alice")

	views, err := s.replaceApps(user.ID, []AppInput{
		{Name: "A", ImgPath: "/img/a.png", RunPath: "a://run"},
		{Name: "B", ImgPath: "/img/b.png", RunPath: "b://run"},
	})
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal("A", views[0].Name)
	s.Equal(1, views[0].SortOrder)
	s.Equal("B", views[1].Name)
	s.Equal(2, views[1].SortOrder)

	got, err := s.client.GetUserApps(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(views, got)
}

func (s *DatabaseTestSuite) TestReplaceUserApps_ReplacesPreviousList() {
	user := s.createUser("alice")

	first, err := s.replaceApps(user.ID, []AppInput{
		{Name: "A", ImgPath: "a.png", RunPath: "a"},
		{Name: "B", ImgPath: "b.png", RunPath: "b"},
		{Name: "C", ImgPath: "c.png", RunPath: "c"},
	})
	s.Require().NoError(err)

	// reorder: C, A (renamed), and drop B
	cID := first[2].AppID
	aID := first[0].AppID
	views, err := s.replaceApps(user.ID, []AppInput{
		{ID: &cID, Name: "C", ImgPath: "c.png", RunPath: "c"},
		{ID: &aID, Name: "A2", ImgPath: "a2.png", RunPath: "a2"},
	})
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(cID, views[0].AppID)
	s.Equal(1, views[0].SortOrder)
	s.Equal(aID, views[1].AppID)
	s.Equal("A2", views[1].Name)
	s.Equal("a2.png", views[1].ImgPath)
	s.Equal(2, views[1].SortOrder)

	s.EqualValues(2, s.countUserApps(user.ID))

	// catalog keeps the dropped app
	apps, err := s.client.GetAllApps(s.ctx)
	s.Require().NoError(err)
	s.Len(apps, 3)
}

func (s *DatabaseTestSuite) TestReplaceUserApps_ReportsChangedApps() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	first, err := s.replaceApps(alice.ID, []AppInput{
		{Name: "A", ImgPath: "a.png", RunPath: "a"},
		{Name: "B", ImgPath: "b.png", RunPath: "b"},
	})
	s.Require().NoError(err)
	aID, bID := first[0].AppID, first[1].AppID

	// same fields: nothing in the catalog changes
	res, err := s.client.ReplaceUserApps(s.ctx, bob.ID, []AppInput{
		{ID: &bID, Name: "B", ImgPath: "b.png", RunPath: "b"},
		{ID: &aID, Name: "A", ImgPath: "a.png", RunPath: "a"},
	})
	s.Require().NoError(err)
	s.Empty(res.ChangedApps)
	s.Len(res.Views, 2)

	res, err = s.client.ReplaceUserApps(s.ctx, alice.ID, []AppInput{
		{ID: &aID, Name: "A", ImgPath: "a.png", RunPath: "a"},
		{ID: &bID, Name: "B2", ImgPath: "b.png", RunPath: "b"},
		{Name: "C", ImgPath: "c.png", RunPath: "c"},
	})
	s.Require().NoError(err)
	s.Equal([]uint{bID}, res.ChangedApps)

	// bob sees the renamed app through the shared catalog row
	views, err := s.client.GetUserApps(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal("B2", views[0].Name)
}

func (s *DatabaseTestSuite) TestReplaceUserApps_UnknownIDCreatesApp() {
	user := s.createUser("alice")
	missing := uint(999)

	views, err := s.replaceApps(user.ID, []AppInput{
		{ID: &missing, Name: "New", ImgPath: "n.png", RunPath: "n"},
	})
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.NotEqual(missing, views[0].AppID)
	s.Equal("New", views[0].Name)
}

func (s *DatabaseTestSuite) TestReplaceUserApps_UnknownUser() {
	_, err := s.replaceApps(12345, []AppInput{
		{Name: "A", ImgPath: "a.png", RunPath: "a"},
	})
	s.ErrorIs(err, ErrNotFound)

	apps, err := s.client.GetAllApps(s.ctx)
	s.Require().NoError(err)
	s.Empty(apps, "no app must be written for an unknown user")
}

func (s *DatabaseTestSuite) TestReplaceUserApps_DuplicateAppRollsBack() {
	user := s.createUser("alice")
	before, err := s.replaceApps(user.ID, []AppInput{
		{Name: "A", ImgPath: "a.png", RunPath: "a"},
	})
	s.Require().NoError(err)
	id := before[0].AppID

	_, err = s.replaceApps(user.ID, []AppInput{
		{ID: &id, Name: "renamed", ImgPath: "a.png", RunPath: "a"},
		{ID: &id, Name: "renamed", ImgPath: "a.png", RunPath: "a"},
	})
	s.ErrorIs(err, ErrConflict)

	after, err := s.client.GetUserApps(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(before, after, "failed replacement must leave the previous list untouched")
}

func (s *DatabaseTestSuite) TestReplaceUserApps_Concurrent() {
	user := s.createUser("alice")

	lists := [][]AppInput{
		{{Name: "A", ImgPath: "a", RunPath: "a"}, {Name: "B", ImgPath: "b", RunPath: "b"}},
		{{Name: "X", ImgPath: "x", RunPath: "x"}, {Name: "Y", ImgPath: "y", RunPath: "y"}, {Name: "Z", ImgPath: "z", RunPath: "z"}},
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.replaceApps(user.ID, lists[i%len(lists)])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		s.Require().NoError(err)
	}

	views, err := s.client.GetUserApps(s.ctx, user.ID)
	s.Require().NoError(err)

	names := make([]string, 0, len(views))
	for i, v := range views {
		s.Equal(i+1, v.SortOrder)
		names = append(names, v.Name)
	}
	s.Contains([][]string{{"A", "B"}, {"X", "Y", "Z"}}, names)
}

func (s *DatabaseTestSuite) TestGetAllApps_OrderedByName() {
	user := s.createUser("alice")
	_, err := s.replaceApps(user.ID, []AppInput{
		{Name: "zeta", ImgPath: "z", RunPath: "z"},
		{Name: "alpha", ImgPath: "a", RunPath: "a"},
	})
	s.Require().NoError(err)

	apps, err := s.client.GetAllApps(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(apps, 2)
	s.Equal("alpha", apps[0].Name)
	s.Equal("zeta", apps[1].Name)
}

func (s *DatabaseTestSuite) TestMemoOwnership() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	memo, err := s.client.CreateMemo(s.ctx, alice.ID, MemoTypeNote, "title", "subtitle")
	s.Require().NoError(err)

	_, err = s.client.GetMemo(s.ctx, bob.ID, memo.ID)
	s.ErrorIs(err, ErrNotFound)

	title := "hacked"
	_, err = s.client.UpdateMemo(s.ctx, bob.ID, memo.ID, &title, nil)
	s.ErrorIs(err, ErrNotFound)

	s.ErrorIs(s.client.DeleteMemo(s.ctx, bob.ID, memo.ID), ErrNotFound)

	got, err := s.client.GetMemo(s.ctx, alice.ID, memo.ID)
	s.Require().NoError(err)
	s.Equal("title", got.Title)
}

func (s *DatabaseTestSuite) TestMemoLifecycle() {
	user := s.createUser("alice")

	memo, err := s.client.CreateMemo(s.ctx, user.ID, MemoTypeTodo, "buy milk", "2 liters")
	s.Require().NoError(err)

	subtitle := "3 liters"
	updated, err := s.client.UpdateMemo(s.ctx, user.ID, memo.ID, nil, &subtitle)
	s.Require().NoError(err)
	s.Equal("buy milk", updated.Title)
	s.Equal("3 liters", updated.Subtitle)

	unchanged, err := s.client.UpdateMemo(s.ctx, user.ID, memo.ID, nil, nil)
	s.Require().NoError(err)
	s.Equal(updated.Subtitle, unchanged.Subtitle)

	s.Require().NoError(s.client.DeleteMemo(s.ctx, user.ID, memo.ID))
	_, err = s.client.GetMemo(s.ctx, user.ID, memo.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *DatabaseTestSuite) TestGetMemos_FilterAndOrder() {
	user := s.createUser("alice")
	first, err := s.client.CreateMemo(s.ctx, user.ID, MemoTypeNote, "first", "n")
	s.Require().NoError(err)
	_, err = s.client.CreateMemo(s.ctx, user.ID, MemoTypeTodo, "todo", "t")
	s.Require().NoError(err)
	last, err := s.client.CreateMemo(s.ctx, user.ID, MemoTypeNote, "last", "n")
	s.Require().NoError(err)

	all, err := s.client.GetMemos(s.ctx, user.ID, nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	note := MemoTypeNote
	notes, err := s.client.GetMemos(s.ctx, user.ID, &note)
	s.Require().NoError(err)
	s.Require().Len(notes, 2)
	s.Equal(last.ID, notes[0].ID)
	s.Equal(first.ID, notes[1].ID)
}

func (s *DatabaseTestSuite) TestDeleteUserCascades() {
	user := s.createUser("alice")
	_, err := s.client.CreateMemo(s.ctx, user.ID, MemoTypeNote, "t", "s")
	s.Require().NoError(err)
	_, err = s.replaceApps(user.ID, []AppInput{{Name: "A", ImgPath: "a", RunPath: "a"}})
	s.Require().NoError(err)

	s.Require().NoError(s.client.db.Delete(&User{}, user.ID).Error)

	memos, err := s.client.GetMemos(s.ctx, user.ID, nil)
	s.Require().NoError(err)
	s.Empty(memos)
	s.Zero(s.countUserApps(user.ID))
}

func (s *DatabaseTestSuite) TestGetStats() {
	stats, err := s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Zero(stats.Users)
	s.Nil(stats.LastSignupAt)

	user := s.createUser("alice")
	_, err = s.client.CreateMemo(s.ctx, user.ID, MemoTypeNote, "t", "s")
	s.Require().NoError(err)

	stats, err = s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, stats.Users)
	s.EqualValues(1, stats.Memos)
	s.NotNil(stats.LastSignupAt)
	s.NotNil(stats.LastMemoAt)
}

func (s *DatabaseTestSuite) TestGetStats_CancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.client.GetStats(ctx)
	s.ErrorIs(err, context.Canceled)
}

func (s *DatabaseTestSuite) TestReset() {
	s.createUser("alice")
	s.Require().NoError(s.client.Reset())

	_, err := s.client.GetUserByName(s.ctx, "alice")
	s.ErrorIs(err, ErrNotFound)
}

func TestMemoTypeValid(t *testing.T) {
	tests := []struct {
		name     string
		memoType MemoType
		want     bool
	}{
		{"note", MemoTypeNote, true},
		{"todo", MemoTypeTodo, true},
		{"zero", 0, false},
		{"three", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.memoType.Valid())
		})
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
