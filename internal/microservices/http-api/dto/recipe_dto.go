package dto

import "time"

// SubmitRecipeRequest for creating a recipe; Category is the category name
type SubmitRecipeRequest struct {
	Title       string   `json:"title" binding:"required,notblank,max=200"`
	Category    string   `json:"category" binding:"required,notblank"`
	CookingTime int      `json:"cooking_time" binding:"required,min=1"`
	Servings    int      `json:"servings" binding:"required,min=1"`
	Ingredients []string `json:"ingredients" binding:"required,min=1,dive,notblank"`
	Steps       []string `json:"steps" binding:"required,min=1,dive,notblank"`
	Image       string   `json:"image" binding:"max=500"`
}

// RecipeQuery narrows the approved recipe listing
type RecipeQuery struct {
	Category  string `form:"category"`
	Search    string `form:"search"`
	RecipesOf string `form:"recipes_of"`
	// LikedBy and FavouritedBy are user ids; set by handlers, never bound from the query
	LikedBy      string `form:"-"`
	FavouritedBy string `form:"-"`
}

// RecipeView is the full read view of one recipe
type RecipeView struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Author         string        `json:"author"`
	Category       string        `json:"category"`
	Date           time.Time     `json:"date"`
	IsApproved     bool          `json:"is_approved"`
	CookingTime    int           `json:"cooking_time"`
	Servings       int           `json:"servings"`
	Ingredients    []string      `json:"ingredients"`
	Steps          []string      `json:"steps"`
	Likes          int           `json:"likes"`
	Image          string        `json:"image"`
	CommentsNumber int           `json:"comments_number"`
	Comments       []CommentView `json:"comments"`
}

// RecipeSummary is one row of a recipe listing
type RecipeSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	IsApproved     bool      `json:"is_approved"`
	CookingTime    int       `json:"cooking_time"`
	Servings       int       `json:"servings"`
	Ingredients    []string  `json:"ingredients"`
	Likes          int       `json:"likes"`
	Image          string    `json:"image"`
	CommentsNumber int       `json:"comments_number"`
}

// LikeResponse reports the caller's like state after a toggle
type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// FavouriteResponse reports the caller's favourite state after a toggle
type FavouriteResponse struct {
	Favourited bool `json:"favourited"`
}

// CreateCategoryRequest for admin category creation
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
}
