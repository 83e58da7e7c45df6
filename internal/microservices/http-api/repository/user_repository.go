package repository

import (
	"context"
	"fmt"

	"recipehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeList names one of the recipe id-lists a user owns.
type RecipeList int

const (
	LikedList RecipeList = iota
	FavouriteList
)

func (l RecipeList) table() string {
	if l == FavouriteList {
		return "user_favourites"
	}
	return "user_likes"
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Usernames maps each known id to its username; unknown ids are absent.
	Usernames(ctx context.Context, ids []string) (map[string]string, error)
	List(ctx context.Context, page, pageSize int) ([]models.User, int64, error)
	SetRole(ctx context.Context, id, role string) error

	InList(ctx context.Context, list RecipeList, userID, recipeID string) (bool, error)
	AddToList(ctx context.Context, list RecipeList, userID, recipeID string) (bool, error)
	RemoveFromList(ctx context.Context, list RecipeList, userID, recipeID string) (bool, error)
	ListRecipeIDs(ctx context.Context, list RecipeList, userID string) ([]string, error)
	// RemoveRecipesFromLists drops the recipes from every user's liked and favourite lists.
	RemoveRecipesFromLists(ctx context.Context, recipeIDs []string) error

	UpsertRating(ctx context.Context, rating *models.UserRating) error
	RatingSummary(ctx context.Context, userID string) (average float64, count int64, err error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return conn(ctx, r.db).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on error so callers never mistake a zero value for a hit
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Usernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID       string
		Username string
	}
	if err := conn(ctx, r.db).Model(&models.User{}).
		Select("id, username").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get usernames: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Username
	}
	return out, nil
}

func (r *userRepository) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := conn(ctx, r.db).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := conn(ctx, r.db).
		Order("created_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) SetRole(ctx context.Context, id, role string) error {
	result := conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) InList(ctx context.Context, list RecipeList, userID, recipeID string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Table(list.table()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	return count > 0, err
}

// AddToList reports false when the recipe was already in the list.
func (r *userRepository) AddToList(ctx context.Context, list RecipeList, userID, recipeID string) (bool, error) {
	db := conn(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true})
	var result *gorm.DB
	if list == FavouriteList {
		result = db.Create(&models.UserFavourite{UserID: userID, RecipeID: recipeID})
	} else {
		result = db.Create(&models.UserLike{UserID: userID, RecipeID: recipeID})
	}
	return result.RowsAffected == 1, result.Error
}

func (r *userRepository) RemoveFromList(ctx context.Context, list RecipeList, userID, recipeID string) (bool, error) {
	result := conn(ctx, r.db).
		Exec("DELETE FROM "+list.table()+" WHERE user_id = ? AND recipe_id = ?", userID, recipeID)
	return result.RowsAffected == 1, result.Error
}

func (r *userRepository) ListRecipeIDs(ctx context.Context, list RecipeList, userID string) ([]string, error) {
	var ids []string
	err := conn(ctx, r.db).Table(list.table()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("recipe_id", &ids).Error
	return ids, err
}

func (r *userRepository) RemoveRecipesFromLists(ctx context.Context, recipeIDs []string) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	db := conn(ctx, r.db)
	if err := db.Where("recipe_id IN ?", recipeIDs).Delete(&models.UserLike{}).Error; err != nil {
		return fmt.Errorf("remove likes: %w", err)
	}
	if err := db.Where("recipe_id IN ?", recipeIDs).Delete(&models.UserFavourite{}).Error; err != nil {
		return fmt.Errorf("remove favourites: %w", err)
	}
	return nil
}

// UpsertRating keeps a single rating per (user, rater) pair.
func (r *userRepository) UpsertRating(ctx context.Context, rating *models.UserRating) error {
	return conn(ctx, r.db).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "rater_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(rating).Error
}

func (r *userRepository) RatingSummary(ctx context.Context, userID string) (float64, int64, error) {
	var summary struct {
		Average float64
		Count   int64
	}
	err := conn(ctx, r.db).Model(&models.UserRating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Scan(&summary).Error
	if err != nil {
		return 0, 0, err
	}
	return summary.Average, summary.Count, nil
}
