package repository

import (
	"context"
	"fmt"
	"strings"

	"recipehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RecipeFilter narrows a recipe listing. Zero values mean "no restriction",
// except OnlyIDs which, when non-nil, limits the result to those ids (an
// empty non-nil slice yields nothing).
type RecipeFilter struct {
	Approved       bool
	CategoryName   string
	Search         string
	AuthorUsername string
	OnlyIDs        []string
}

type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	FindByID(ctx context.Context, id string) (*models.Recipe, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Recipe, error)
	SetApproved(ctx context.Context, id string) (bool, error)
	AddLikes(ctx context.Context, id string, delta int) (int, error)
	// List returns approved recipes newest first, unapproved ones oldest first.
	List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	IDsByCategory(ctx context.Context, categoryID string) ([]string, error)
	CountApprovedByAuthor(ctx context.Context, authorID string) (int64, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := conn(ctx, r.db).Create(recipe).Error; err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}
	return nil
}

func (r *recipeRepository) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := conn(ctx, r.db).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if len(ids) == 0 {
		return recipes, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	return recipes, nil
}

// SetApproved flips a pending recipe to approved. It reports false when the
// recipe is missing or was already approved.
func (r *recipeRepository) SetApproved(ctx context.Context, id string) (bool, error) {
	result := conn(ctx, r.db).Model(&models.Recipe{}).
		Where("id = ? AND is_approved = ?", id, false).
		Update("is_approved", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddLikes moves the likes counter by delta, never below zero, and returns the new value.
func (r *recipeRepository) AddLikes(ctx context.Context, id string, delta int) (int, error) {
	db := conn(ctx, r.db)
	result := db.Model(&models.Recipe{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("GREATEST(likes + ?, 0)", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var likes int
	if err := db.Model(&models.Recipe{}).Where("id = ?", id).Pluck("likes", &likes).Error; err != nil {
		return 0, err
	}
	return likes, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	if filter.OnlyIDs != nil && len(filter.OnlyIDs) == 0 {
		return []models.Recipe{}, nil
	}

	q := conn(ctx, r.db).Model(&models.Recipe{}).Where("recipes.is_approved = ?", filter.Approved)

	if filter.CategoryName != "" {
		q = q.Joins("JOIN categories ON categories.id = recipes.category_id").
			Where("categories.name = ?", filter.CategoryName)
	}
	if filter.Search != "" || filter.AuthorUsername != "" {
		q = q.Joins("JOIN users ON users.id = recipes.author_id")
	}
	if filter.AuthorUsername != "" {
		q = q.Where("users.username = ?", filter.AuthorUsername)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := "%" + escapeLike(s) + "%"
		q = q.Where(`(recipes.title ILIKE ? OR users.username ILIKE ?
			OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(recipes.ingredients) AS i WHERE i ILIKE ?))`, p, p, p)
	}
	if filter.OnlyIDs != nil {
		q = q.Where("recipes.id IN ?", filter.OnlyIDs)
	}

	if filter.Approved {
		q = q.Order("recipes.created_at DESC")
	} else {
		q = q.Order("recipes.created_at ASC")
	}

	var list []models.Recipe
	if err := q.Select("recipes.*").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return list, nil
}

func (r *recipeRepository) IDsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	var ids []string
	err := conn(ctx, r.db).Model(&models.Recipe{}).
		Where("category_id = ?", categoryID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *recipeRepository) CountApprovedByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Recipe{}).
		Where("author_id = ? AND is_approved = ?", authorID, true).
		Count(&count).Error
	return count, err
}

func (r *recipeRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Delete(&models.Recipe{}).Error; err != nil {
		return fmt.Errorf("delete recipes: %w", err)
	}
	return nil
}

// escapeLike neutralises LIKE wildcards in user supplied search text.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
