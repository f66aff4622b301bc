package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/homedeck/homedeck/internal/database"
	"github.com/samber/lo"
)

const msgMemoNotFound = "Memo not found"

// MemoResponse is the public view of a memo.
type MemoResponse struct {
	ID        uint              `json:"id"`
	MemoType  database.MemoType `json:"memoType"`
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// MemoService manages the memos of a user. Every call is scoped to the given user id.
type MemoService struct {
	db database.DB
}

func NewMemoService(db database.DB) *MemoService {
	return &MemoService{db: db}
}

func (s *MemoService) List(ctx context.Context, userID uint, memoType *database.MemoType) Response {
	if memoType != nil && !memoType.Valid() {
		return BadRequest("memoType must be 1 or 2")
	}
	memos, err := s.db.GetMemos(ctx, userID, memoType)
	if err != nil {
		return Internal("Failed to retrieve memos")
	}
	return Success("Memos retrieved successfully", lo.Map(memos, func(m database.Memo, _ int) MemoResponse {
		return toMemoResponse(&m)
	}), http.StatusOK)
}

func (s *MemoService) Get(ctx context.Context, userID, id uint) Response {
	memo, err := s.db.GetMemo(ctx, userID, id)
	if err != nil {
		return memoFailure(err, "Failed to retrieve memo")
	}
	return Success("Memo retrieved successfully", toMemoResponse(memo), http.StatusOK)
}

func (s *MemoService) Create(ctx context.Context, userID uint, memoType database.MemoType, title, subtitle string) Response {
	if !memoType.Valid() {
		return BadRequest("memoType must be 1 or 2")
	}
	if title == "" || subtitle == "" {
		return BadRequest("title and subtitle are required")
	}
	memo, err := s.db.CreateMemo(ctx, userID, memoType, title, subtitle)
	if err != nil {
		return Internal("Failed to create memo")
	}
	return Success("Memo created successfully", toMemoResponse(memo), http.StatusCreated)
}

// Update changes the given fields. A nil field is left as is.
func (s *MemoService) Update(ctx context.Context, userID, id uint, title, subtitle *string) Response {
	if (title != nil && *title == "") || (subtitle != nil && *subtitle == "") {
		return BadRequest("title and subtitle must not be empty")
	}
	memo, err := s.db.UpdateMemo(ctx, userID, id, title, subtitle)
	if err != nil {
		return memoFailure(err, "Failed to update memo")
	}
	return Success("Memo updated successfully", toMemoResponse(memo), http.StatusOK)
}

func (s *MemoService) Delete(ctx context.Context, userID, id uint) Response {
	if err := s.db.DeleteMemo(ctx, userID, id); err != nil {
		return memoFailure(err, "Failed to delete memo")
	}
	return Success("Memo deleted successfully", OK{Success: true}, http.StatusOK)
}

func memoFailure(err error, message string) Response {
	if errors.Is(err, database.ErrNotFound) {
		return NotFound(msgMemoNotFound)
	}
	log.Error(message, "error", err)
	return Internal(message)
}

func toMemoResponse(m *database.Memo) MemoResponse {
	return MemoResponse{
		ID:        m.ID,
		MemoType:  m.MemoType,
		Title:     m.Title,
		Subtitle:  m.Subtitle,
		CreatedAt: formatTime(m.CreatedAt),
		UpdatedAt: formatTime(m.UpdatedAt),
	}
}
