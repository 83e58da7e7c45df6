package models

// All lists every persisted model in dependency order for migrations.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Recipe{},
		&Comment{},
		&Notification{},
		&UserRating{},
		&UserLike{},
		&UserFavourite{},
		&RefreshToken{},
	}
}
