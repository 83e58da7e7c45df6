package service

import (
	"context"
	"strings"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
)

type CategoryService interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	// Delete removes the category and every recipe filed under it.
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	tx         repository.TxManager
	categories repository.CategoryRepository
	recipes    repository.RecipeRepository
	cascade    *cascade
}

func NewCategoryService(
	tx repository.TxManager,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
) CategoryService {
	return &categoryService{
		tx:         tx,
		categories: categories,
		recipes:    recipes,
		cascade: &cascade{
			users:         users,
			recipes:       recipes,
			comments:      comments,
			notifications: notifications,
		},
	}
}

func (s *categoryService) GetAll(ctx context.Context) ([]models.Category, error) {
	list, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return list, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("category name required")
	}
	c := &models.Category{ID: uuid.New().String(), Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, conflictErr(err, "category already exists")
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.NotFound("category")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			return lookupErr(err, "category")
		}
		recipeIDs, err := s.recipes.IDsByCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := s.cascade.deleteRecipes(ctx, recipeIDs); err != nil {
			return err
		}
		if err := s.categories.Delete(ctx, id); err != nil {
			return lookupErr(err, "category")
		}
		return nil
	})
	return apperrors.Wrap(err)
}
