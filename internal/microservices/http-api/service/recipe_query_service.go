package service

import (
	"context"
	"strings"
	"time"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"
)

// RecipeQueryService assembles the read views of recipes.
type RecipeQueryService interface {
	GetRecipeData(ctx context.Context, recipeID string) (*dto.RecipeView, error)
	GetAllApprovedRecipesData(ctx context.Context, q dto.RecipeQuery) ([]dto.RecipeSummary, error)
	GetAllUnapprovedRecipesData(ctx context.Context) ([]dto.RecipeSummary, error)
}

type recipeQueryService struct {
	users      repository.UserRepository
	recipes    repository.RecipeRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

func NewRecipeQueryService(
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
) RecipeQueryService {
	return &recipeQueryService{
		users:      users,
		recipes:    recipes,
		comments:   comments,
		categories: categories,
		now:        time.Now,
	}
}

// GetRecipeData resolves every reference of the recipe and fails with
// NotFound as soon as one of them is missing.
func (s *recipeQueryService) GetRecipeData(ctx context.Context, recipeID string) (*dto.RecipeView, error) {
	if !validID(recipeID) {
		return nil, apperrors.NotFound("recipe")
	}

	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return nil, lookupErr(err, "recipe")
	}
	author, err := s.users.FindByID(ctx, recipe.AuthorID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}
	category, err := s.categories.FindByID(ctx, recipe.CategoryID)
	if err != nil {
		return nil, lookupErr(err, "category")
	}

	comments, err := s.comments.ListApprovedByRecipe(ctx, recipe.ID)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	views, err := s.commentViews(ctx, comments)
	if err != nil {
		return nil, err
	}

	return &dto.RecipeView{
		ID:             recipe.ID,
		Title:          recipe.Title,
		Author:         author.Username,
		Category:       category.Name,
		Date:           recipe.CreatedAt,
		IsApproved:     recipe.IsApproved,
		CookingTime:    recipe.CookingTime,
		Servings:       recipe.Servings,
		Ingredients:    nonNil(recipe.Ingredients),
		Steps:          nonNil(recipe.Steps),
		Likes:          recipe.Likes,
		Image:          recipe.Image,
		CommentsNumber: len(views),
		Comments:       views,
	}, nil
}

func (s *recipeQueryService) commentViews(ctx context.Context, comments []models.Comment) ([]dto.CommentView, error) {
	views := make([]dto.CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	var parentIDs []string
	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.AuthorID)
		if c.ReplyToID != nil {
			parentIDs = append(parentIDs, *c.ReplyToID)
		}
	}

	parents, err := s.comments.FindByIDs(ctx, parentIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	parentAuthor := make(map[string]string, len(parents))
	for _, p := range parents {
		parentAuthor[p.ID] = p.AuthorID
		userIDs = append(userIDs, p.AuthorID)
	}

	usernames, err := s.users.Usernames(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	now := s.now()
	for _, c := range comments {
		author, ok := usernames[c.AuthorID]
		if !ok {
			return nil, apperrors.NotFound("user")
		}
		view := dto.CommentView{
			ID:      c.ID,
			Author:  author,
			Content: c.Content,
			Date:    c.CreatedAt,
			TimeAgo: TimeAgo(c.CreatedAt, now),
		}
		if c.ReplyToID != nil {
			parentAuthorID, ok := parentAuthor[*c.ReplyToID]
			if !ok {
				return nil, apperrors.NotFound("comment")
			}
			replyTo, ok := usernames[parentAuthorID]
			if !ok {
				return nil, apperrors.NotFound("user")
			}
			view.ReplyTo = replyTo
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *recipeQueryService) GetAllApprovedRecipesData(ctx context.Context, q dto.RecipeQuery) ([]dto.RecipeSummary, error) {
	filter := repository.RecipeFilter{
		Approved:       true,
		CategoryName:   strings.TrimSpace(q.Category),
		Search:         strings.TrimSpace(q.Search),
		AuthorUsername: strings.TrimSpace(q.RecipesOf),
	}

	if q.LikedBy != "" {
		ids, err := s.users.ListRecipeIDs(ctx, repository.LikedList, q.LikedBy)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		filter.OnlyIDs = restrict(filter.OnlyIDs, ids)
	}
	if q.FavouritedBy != "" {
		ids, err := s.users.ListRecipeIDs(ctx, repository.FavouriteList, q.FavouritedBy)
		if err != nil {
			return nil, apperrors.Wrap(err)
		}
		filter.OnlyIDs = restrict(filter.OnlyIDs, ids)
	}

	return s.summaries(ctx, filter)
}

func (s *recipeQueryService) GetAllUnapprovedRecipesData(ctx context.Context) ([]dto.RecipeSummary, error) {
	return s.summaries(ctx, repository.RecipeFilter{Approved: false})
}

func (s *recipeQueryService) summaries(ctx context.Context, filter repository.RecipeFilter) ([]dto.RecipeSummary, error) {
	recipes, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	out := make([]dto.RecipeSummary, 0, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	recipeIDs := make([]string, 0, len(recipes))
	authorIDs := make([]string, 0, len(recipes))
	categoryIDs := make([]string, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
		categoryIDs = append(categoryIDs, r.CategoryID)
	}

	usernames, err := s.users.Usernames(ctx, authorIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	categoryNames, err := s.categories.Names(ctx, categoryIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	counts, err := s.comments.CountApproved(ctx, recipeIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	for _, r := range recipes {
		out = append(out, dto.RecipeSummary{
			ID:             r.ID,
			Title:          r.Title,
			Author:         usernames[r.AuthorID],
			Category:       categoryNames[r.CategoryID],
			Date:           r.CreatedAt,
			IsApproved:     r.IsApproved,
			CookingTime:    r.CookingTime,
			Servings:       r.Servings,
			Ingredients:    nonNil(r.Ingredients),
			Likes:          r.Likes,
			Image:          r.Image,
			CommentsNumber: int(counts[r.ID]),
		})
	}
	return out, nil
}

// restrict intersects the current id restriction with ids. A nil current
// means no restriction yet.
func restrict(current, ids []string) []string {
	if ids == nil {
		ids = []string{}
	}
	if current == nil {
		return ids
	}
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := make([]string, 0, len(current))
	for _, id := range current {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
