package models

import "time"

// UserRating is one rater's score of another user. (UserID, RaterID) is unique.
type UserRating struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_rater"`
	RaterID   string    `json:"rater_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_rater"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User  User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Rater User `json:"-" gorm:"foreignKey:RaterID;constraint:OnDelete:CASCADE;"`
}

func (UserRating) TableName() string {
	return "user_ratings"
}
