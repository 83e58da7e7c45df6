package dto

import (
	"time"
)

// CreateCommentDTO for submitting a comment or a reply
type CreateCommentDTO struct {
	Content string  `json:"content" binding:"required,notblank,max=5000"`
	ReplyTo *string `json:"reply_to" binding:"omitempty,uuid"`
}

// CommentView is an approved comment as shown under its recipe
type CommentView struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	TimeAgo string    `json:"time_ago"`
	// ReplyTo holds the parent comment author's username
	ReplyTo string `json:"reply_to,omitempty"`
}

// PendingCommentView is a comment waiting for moderation (admin listing)
type PendingCommentView struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	RecipeID    string    `json:"recipe_id"`
	RecipeTitle string    `json:"recipe_title"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	Date        time.Time `json:"date"`
}

// SubmittedCommentResponse is returned right after a comment is submitted
type SubmittedCommentResponse struct {
	ID         string    `json:"id"`
	RecipeID   string    `json:"recipe_id"`
	Content    string    `json:"content"`
	ReplyTo    *string   `json:"reply_to,omitempty"`
	IsApproved bool      `json:"is_approved"`
	Date       time.Time `json:"date"`
}

// Paginated wraps one page of a listing
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginated builds a page envelope; pageSize must be positive.
func NewPaginated[T any](data []T, total, page, pageSize int) *Paginated[T] {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}

	return &Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
