package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to a recipe's comment list through RecipeID. ReplyToID
// points at another comment of the same recipe (one level of threading).
type Comment struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	AuthorID   string    `json:"author_id" gorm:"type:uuid;not null;index"`
	RecipeID   string    `json:"recipe_id" gorm:"type:uuid;not null;index"`
	Content    string    `json:"content" gorm:"not null;type:text"`
	CreatedAt  time.Time `json:"date" gorm:"index"`
	IsApproved bool      `json:"is_approved" gorm:"not null;default:false;index"`
	ReplyToID  *string   `json:"reply_to,omitempty" gorm:"type:uuid;index"`

	// Associations
	Author  *User    `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Recipe  *Recipe  `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
	ReplyTo *Comment `json:"-" gorm:"foreignKey:ReplyToID;constraint:OnDelete:CASCADE;"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (Comment) TableName() string {
	return "comments"
}
