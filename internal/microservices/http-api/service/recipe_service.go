package service

import (
	"context"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"
)

// RecipeService covers what users do with published recipes.
type RecipeService interface {
	ToggleLike(ctx context.Context, userID, recipeID string) (*dto.LikeResponse, error)
	ToggleFavourite(ctx context.Context, userID, recipeID string) (*dto.FavouriteResponse, error)
	DeleteRecipe(ctx context.Context, userID, recipeID string, isAdmin bool) error
}

type recipeService struct {
	tx      repository.TxManager
	users   repository.UserRepository
	recipes repository.RecipeRepository
	cascade *cascade
}

func NewRecipeService(
	tx repository.TxManager,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
) RecipeService {
	return &recipeService{
		tx:      tx,
		users:   users,
		recipes: recipes,
		cascade: &cascade{
			users:         users,
			recipes:       recipes,
			comments:      comments,
			notifications: notifications,
		},
	}
}

// publishedRecipe loads a recipe that is visible to everyone.
func (s *recipeService) publishedRecipe(ctx context.Context, recipeID string) (*models.Recipe, error) {
	if !validID(recipeID) {
		return nil, apperrors.NotFound("recipe")
	}
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, lookupErr(err, "recipe")
	}
	if !recipe.IsApproved {
		return nil, apperrors.NotFound("recipe")
	}
	return recipe, nil
}

func (s *recipeService) ToggleLike(ctx context.Context, userID, recipeID string) (*dto.LikeResponse, error) {
	var resp dto.LikeResponse
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		recipe, err := s.publishedRecipe(ctx, recipeID)
		if err != nil {
			return err
		}

		liked, err := s.users.InList(ctx, repository.LikedList, userID, recipe.ID)
		if err != nil {
			return err
		}

		var changed bool
		delta := 1
		if liked {
			delta = -1
			changed, err = s.users.RemoveFromList(ctx, repository.LikedList, userID, recipe.ID)
		} else {
			changed, err = s.users.AddToList(ctx, repository.LikedList, userID, recipe.ID)
		}
		if err != nil {
			return err
		}
		// A concurrent toggle got there first; report the counter as it stands.
		if !changed {
			delta = 0
		}

		likes, err := s.recipes.AddLikes(ctx, recipe.ID, delta)
		if err != nil {
			return lookupErr(err, "recipe")
		}
		resp = dto.LikeResponse{Liked: !liked, Likes: likes}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &resp, nil
}

func (s *recipeService) ToggleFavourite(ctx context.Context, userID, recipeID string) (*dto.FavouriteResponse, error) {
	var resp dto.FavouriteResponse
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		recipe, err := s.publishedRecipe(ctx, recipeID)
		if err != nil {
			return err
		}

		favourited, err := s.users.InList(ctx, repository.FavouriteList, userID, recipe.ID)
		if err != nil {
			return err
		}
		if favourited {
			_, err = s.users.RemoveFromList(ctx, repository.FavouriteList, userID, recipe.ID)
		} else {
			_, err = s.users.AddToList(ctx, repository.FavouriteList, userID, recipe.ID)
		}
		if err != nil {
			return err
		}
		resp = dto.FavouriteResponse{Favourited: !favourited}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return &resp, nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, userID, recipeID string, isAdmin bool) error {
	if !validID(recipeID) {
		return apperrors.NotFound("recipe")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		recipe, err := s.recipes.FindByID(ctx, recipeID)
		if err != nil {
			return lookupErr(err, "recipe")
		}
		if !isAdmin && recipe.AuthorID != userID {
			return ErrNotRecipeOwner
		}
		return s.cascade.deleteRecipes(ctx, []string{recipe.ID})
	})
	return apperrors.Wrap(err)
}
