package service

import (
	"context"
	"strings"
	"time"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ModerationService drives recipes and comments from submission to approval
// or rejection. A state change and the notifications it causes share one
// transaction.
type ModerationService interface {
	SubmitRecipe(ctx context.Context, authorID string, req dto.SubmitRecipeRequest) (*models.Recipe, error)
	SubmitComment(ctx context.Context, authorID, recipeID string, req dto.CreateCommentDTO) (*models.Comment, error)
	ApproveRecipe(ctx context.Context, recipeID string) error
	RejectRecipe(ctx context.Context, recipeID string) error
	ApproveComment(ctx context.Context, commentID string) error
	RejectComment(ctx context.Context, commentID string) error
	ListUnapprovedComments(ctx context.Context) ([]dto.PendingCommentView, error)
}

type moderationService struct {
	tx         repository.TxManager
	users      repository.UserRepository
	recipes    repository.RecipeRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	emitter    NotificationEmitter
	cascade    *cascade
	now        func() time.Time
}

func NewModerationService(
	tx repository.TxManager,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	comments repository.CommentRepository,
	categories repository.CategoryRepository,
	notifications repository.NotificationRepository,
	emitter NotificationEmitter,
) ModerationService {
	return &moderationService{
		tx:         tx,
		users:      users,
		recipes:    recipes,
		comments:   comments,
		categories: categories,
		emitter:    emitter,
		cascade: &cascade{
			users:         users,
			recipes:       recipes,
			comments:      comments,
			notifications: notifications,
		},
		now: time.Now,
	}
}

func (s *moderationService) SubmitRecipe(ctx context.Context, authorID string, req dto.SubmitRecipeRequest) (*models.Recipe, error) {
	if !validID(authorID) {
		return nil, apperrors.NotFound("user")
	}
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		return nil, lookupErr(err, "user")
	}
	category, err := s.categories.FindByName(ctx, strings.TrimSpace(req.Category))
	if err != nil {
		return nil, lookupErr(err, "category")
	}

	recipe := &models.Recipe{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		CategoryID:  category.ID,
		AuthorID:    authorID,
		CreatedAt:   s.now(),
		IsApproved:  false,
		CookingTime: req.CookingTime,
		Servings:    req.Servings,
		Ingredients: datatypes.JSONSlice[string](trimAll(req.Ingredients)),
		Steps:       datatypes.JSONSlice[string](trimAll(req.Steps)),
		Likes:       0,
		Image:       strings.TrimSpace(req.Image),
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, apperrors.Wrap(err)
	}
	return recipe, nil
}

func (s *moderationService) SubmitComment(ctx context.Context, authorID, recipeID string, req dto.CreateCommentDTO) (*models.Comment, error) {
	if !validID(authorID) {
		return nil, apperrors.NotFound("user")
	}
	if !validID(recipeID) {
		return nil, apperrors.NotFound("recipe")
	}
	if req.ReplyTo != nil && !validID(*req.ReplyTo) {
		return nil, apperrors.NotFound("comment")
	}

	var comment *models.Comment
	var created []*models.Notification

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		author, err := s.users.FindByID(ctx, authorID)
		if err != nil {
			return lookupErr(err, "user")
		}
		recipe, err := s.recipes.FindByID(ctx, recipeID)
		if err != nil {
			return lookupErr(err, "recipe")
		}

		var parent *models.Comment
		if req.ReplyTo != nil {
			parent, err = s.comments.FindByID(ctx, *req.ReplyTo)
			if err != nil {
				return lookupErr(err, "comment")
			}
			// replies stay within one recipe's thread
			if parent.RecipeID != recipe.ID {
				return apperrors.NotFound("comment")
			}
		}

		comment = &models.Comment{
			ID:         uuid.New().String(),
			AuthorID:   author.ID,
			RecipeID:   recipe.ID,
			Content:    strings.TrimSpace(req.Content),
			CreatedAt:  s.now(),
			IsApproved: false,
		}
		if parent != nil {
			comment.ReplyToID = &parent.ID
		}
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}

		if parent != nil {
			n, err := s.emitter.Emit(ctx, NewNotification{
				ForUserID:  parent.AuthorID,
				FromUserID: &author.ID,
				Content:    repliedContent(author.Username, recipe.Title),
				CommentID:  &comment.ID,
				RecipeID:   &recipe.ID,
				Pending:    true,
			})
			if err != nil {
				return err
			}
			created = append(created, n)
		}

		n, err := s.emitter.Emit(ctx, NewNotification{
			ForUserID:  recipe.AuthorID,
			FromUserID: &author.ID,
			Content:    commentedContent(author.Username, recipe.Title),
			CommentID:  &comment.ID,
			RecipeID:   &recipe.ID,
			Pending:    true,
		})
		if err != nil {
			return err
		}
		created = append(created, n)
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err)
	}

	s.emitter.Announce(created...)
	return comment, nil
}

func (s *moderationService) ApproveRecipe(ctx context.Context, recipeID string) error {
	if !validID(recipeID) {
		return apperrors.NotFound("recipe")
	}

	var created *models.Notification
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		recipe, err := s.recipes.FindByID(ctx, recipeID)
		if err != nil {
			return lookupErr(err, "recipe")
		}
		if recipe.IsApproved {
			return nil
		}
		approved, err := s.recipes.SetApproved(ctx, recipe.ID)
		if err != nil {
			return err
		}
		if !approved {
			return nil
		}
		created, err = s.emitter.Emit(ctx, NewNotification{
			ForUserID: recipe.AuthorID,
			Content:   recipeApprovedContent(recipe.Title),
			RecipeID:  &recipe.ID,
		})
		return err
	})
	if err != nil {
		return apperrors.Wrap(err)
	}

	s.emitter.Announce(created)
	return nil
}

func (s *moderationService) RejectRecipe(ctx context.Context, recipeID string) error {
	if !validID(recipeID) {
		return apperrors.NotFound("recipe")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		recipe, err := s.recipes.FindByID(ctx, recipeID)
		if err != nil {
			return lookupErr(err, "recipe")
		}
		if recipe.IsApproved {
			return ErrAlreadyApproved
		}
		return s.cascade.deleteRecipes(ctx, []string{recipe.ID})
	})
	return apperrors.Wrap(err)
}

func (s *moderationService) ApproveComment(ctx context.Context, commentID string) error {
	if !validID(commentID) {
		return apperrors.NotFound("comment")
	}

	var announced []*models.Notification
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		comment, err := s.comments.FindByID(ctx, commentID)
		if err != nil {
			return lookupErr(err, "comment")
		}
		if comment.IsApproved {
			return nil
		}
		recipe, err := s.recipes.FindByID(ctx, comment.RecipeID)
		if err != nil {
			return lookupErr(err, "recipe")
		}

		// Only the call that flips the flag notifies.
		approved, err := s.comments.SetApproved(ctx, comment.ID)
		if err != nil {
			return err
		}
		if !approved {
			return nil
		}

		released, err := s.releaseHeld(ctx, comment.ID)
		if err != nil {
			return err
		}
		announced = append(announced, released...)

		n, err := s.emitter.Emit(ctx, NewNotification{
			ForUserID: comment.AuthorID,
			Content:   commentApprovedContent(recipe.Title),
			CommentID: &comment.ID,
			RecipeID:  &recipe.ID,
		})
		if err != nil {
			return err
		}
		announced = append(announced, n)
		return nil
	})
	if err != nil {
		return apperrors.Wrap(err)
	}

	s.emitter.Announce(announced...)
	return nil
}

// releaseHeld makes the notifications held back while the comment
// was pending.
func (s *moderationService) releaseHeld(ctx context.Context, commentID string) ([]*models.Notification, error) {
	held, err := s.cascade.notifications.ReleaseForComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Notification, 0, len(held))
	for i := range held {
		out = append(out, &held[i])
	}
	return out, nil
}

func (s *moderationService) RejectComment(ctx context.Context, commentID string) error {
	if !validID(commentID) {
		return apperrors.NotFound("comment")
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		comment, err := s.comments.FindByID(ctx, commentID)
		if err != nil {
			return lookupErr(err, "comment")
		}
		if comment.IsApproved {
			return ErrAlreadyApproved
		}
		return s.cascade.deleteComments(ctx, []string{comment.ID})
	})
	return apperrors.Wrap(err)
}

func (s *moderationService) ListUnapprovedComments(ctx context.Context) ([]dto.PendingCommentView, error) {
	comments, err := s.comments.ListUnapproved(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	if len(comments) == 0 {
		return []dto.PendingCommentView{}, nil
	}

	var parentIDs []string
	recipeIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		recipeIDs = append(recipeIDs, c.RecipeID)
		if c.ReplyToID != nil {
			parentIDs = append(parentIDs, *c.ReplyToID)
		}
	}

	parents, err := s.comments.FindByIDs(ctx, parentIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	parentAuthor := make(map[string]string, len(parents))
	userIDs := make([]string, 0, len(comments)+len(parents))
	for _, p := range parents {
		parentAuthor[p.ID] = p.AuthorID
		userIDs = append(userIDs, p.AuthorID)
	}
	for _, c := range comments {
		userIDs = append(userIDs, c.AuthorID)
	}

	usernames, err := s.users.Usernames(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	recipes, err := s.recipes.FindByIDs(ctx, recipeIDs)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	titles := make(map[string]string, len(recipes))
	for _, r := range recipes {
		titles[r.ID] = r.Title
	}

	views := make([]dto.PendingCommentView, 0, len(comments))
	for _, c := range comments {
		view := dto.PendingCommentView{
			ID:          c.ID,
			Content:     c.Content,
			Author:      usernames[c.AuthorID],
			RecipeID:    c.RecipeID,
			RecipeTitle: titles[c.RecipeID],
			Date:        c.CreatedAt,
		}
		if c.ReplyToID != nil {
			view.ReplyTo = usernames[parentAuthor[*c.ReplyToID]]
		}
		views = append(views, view)
	}
	return views, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
