package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification references users, recipes and comments by id only.
// Pending notifications belong to a comment awaiting moderation and stay
// hidden from the recipient until the comment is approved.
type Notification struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	ForUserID  string    `gorm:"type:uuid;not null;index" json:"for_user"`
	FromUserID *string   `gorm:"type:uuid" json:"from_user,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CommentID  *string   `gorm:"type:uuid;index" json:"comment_id,omitempty"`
	RecipeID   *string   `gorm:"type:uuid;index" json:"recipe_id,omitempty"`
	Read       bool      `gorm:"not null;default:false" json:"read"`
	Pending    bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time `json:"date"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}

func (Notification) TableName() string {
	return "notifications"
}
