package models

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=50"`
	Password string `json:"password" binding:"required,min=4"`
	IsChild  *bool  `json:"isChild"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AppItem is one entry of an app order payload. Without an id a new app is created.
type AppItem struct {
	ID      *uint  `json:"id" binding:"omitempty,min=1"`
	Name    string `json:"name" binding:"required,min=1"`
	ImgPath string `json:"imgPath" binding:"required,min=1"`
	RunPath string `json:"runPath" binding:"required,min=1"`
}

// UpdateAppOrderRequest is the body of PUT /apps/order.
type UpdateAppOrderRequest struct {
	Apps []AppItem `json:"apps" binding:"required,min=1,dive"`
}

// CreateMemoRequest is the body of POST /memos.
type CreateMemoRequest struct {
	MemoType int    `json:"memoType" binding:"required,oneof=1 2"`
	Title    string `json:"title" binding:"required,min=1"`
	Subtitle string `json:"subtitle" binding:"required,min=1"`
}

// UpdateMemoRequest is the body of PATCH /memos/:id.
type UpdateMemoRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1"`
	Subtitle *string `json:"subtitle" binding:"omitempty,min=1"`
}

// MemoListQuery holds the query parameters of GET /memos.
type MemoListQuery struct {
	MemoType *int `form:"memoType" binding:"omitempty,oneof=1 2"`
}
