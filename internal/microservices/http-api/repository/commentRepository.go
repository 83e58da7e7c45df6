package repository

import (
	"context"
	"fmt"

	"recipehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Comment, error)
	SetApproved(ctx context.Context, id string) (bool, error)
	// ListApprovedByRecipe returns the approved part of a recipe's comment list, oldest first.
	ListApprovedByRecipe(ctx context.Context, recipeID string) ([]models.Comment, error)
	ListUnapproved(ctx context.Context) ([]models.Comment, error)
	// CountApproved maps recipe id to its number of approved comments.
	CountApproved(ctx context.Context, recipeIDs []string) (map[string]int64, error)
	IDsByRecipes(ctx context.Context, recipeIDs []string) ([]string, error)
	ReplyIDs(ctx context.Context, parentIDs []string) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteByRecipes(ctx context.Context, recipeIDs []string) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return conn(ctx, r.db).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := conn(ctx, r.db).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	var comments []models.Comment
	if len(ids) == 0 {
		return comments, nil
	}
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// SetApproved reports whether this call moved the comment out of pending.
func (r *commentRepository) SetApproved(ctx context.Context, id string) (bool, error) {
	result := conn(ctx, r.db).Model(&models.Comment{}).
		Where("id = ? AND is_approved = ?", id, false).
		Update("is_approved", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *commentRepository) ListApprovedByRecipe(ctx context.Context, recipeID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := conn(ctx, r.db).
		Where("recipe_id = ? AND is_approved = ?", recipeID, true).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) ListUnapproved(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := conn(ctx, r.db).
		Where("is_approved = ?", false).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) CountApproved(ctx context.Context, recipeIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RecipeID string
		Total    int64
	}
	err := conn(ctx, r.db).Model(&models.Comment{}).
		Select("recipe_id, COUNT(*) AS total").
		Where("recipe_id IN ? AND is_approved = ?", recipeIDs, true).
		Group("recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count approved comments: %w", err)
	}
	for _, row := range rows {
		out[row.RecipeID] = row.Total
	}
	return out, nil
}

func (r *commentRepository) IDsByRecipes(ctx context.Context, recipeIDs []string) ([]string, error) {
	var ids []string
	if len(recipeIDs) == 0 {
		return ids, nil
	}
	err := conn(ctx, r.db).Model(&models.Comment{}).
		Where("recipe_id IN ?", recipeIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) ReplyIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	var ids []string
	if len(parentIDs) == 0 {
		return ids, nil
	}
	err := conn(ctx, r.db).Model(&models.Comment{}).
		Where("reply_to_id IN ?", parentIDs).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&models.Comment{}).Error
}

func (r *commentRepository) DeleteByRecipes(ctx context.Context, recipeIDs []string) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("recipe_id IN ?", recipeIDs).Delete(&models.Comment{}).Error
}
