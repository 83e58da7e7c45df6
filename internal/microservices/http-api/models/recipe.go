package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recipe starts unapproved and only ever moves to approved; rejection deletes it.
type Recipe struct {
	ID          string                      `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string                      `json:"title" gorm:"not null"`
	CategoryID  string                      `json:"category_id" gorm:"type:uuid;not null;index"`
	AuthorID    string                      `json:"author_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time                   `json:"date" gorm:"index"`
	IsApproved  bool                        `json:"is_approved" gorm:"not null;default:false;index"`
	CookingTime int                         `json:"cooking_time" gorm:"not null"` // minutes
	Servings    int                         `json:"servings" gorm:"not null"`
	Ingredients datatypes.JSONSlice[string] `json:"ingredients" gorm:"type:jsonb;not null"`
	Steps       datatypes.JSONSlice[string] `json:"steps" gorm:"type:jsonb;not null"`
	Likes       int                         `json:"likes" gorm:"not null;default:0"`
	Image       string                      `json:"image"`

	// Associations
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE;"`
	Author   *User     `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

func (Recipe) TableName() string {
	return "recipes"
}
