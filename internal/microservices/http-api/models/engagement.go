package models

import "time"

// UserLike and UserFavourite back the user's liked and favourite recipe lists.
type UserLike struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	RecipeID  string    `json:"recipe_id" gorm:"primaryKey;type:uuid;index"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (UserLike) TableName() string {
	return "user_likes"
}

type UserFavourite struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	RecipeID  string    `json:"recipe_id" gorm:"primaryKey;type:uuid;index"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;"`
}

func (UserFavourite) TableName() string {
	return "user_favourites"
}
