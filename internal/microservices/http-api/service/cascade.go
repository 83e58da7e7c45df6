package service

import (
	"context"
	"fmt"

	"recipehub/internal/microservices/http-api/repository"
)

// cascade removes owned records together with their owner. Callers run it
// inside a transaction so a deletion is all or nothing.
type cascade struct {
	users         repository.UserRepository
	recipes       repository.RecipeRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
}

// deleteComments removes the comments, every reply below them and the
// notifications referencing any of those.
func (c *cascade) deleteComments(ctx context.Context, ids []string) error {
	all := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	frontier := ids
	for len(frontier) > 0 {
		next := make([]string, 0)
		for _, id := range frontier {
			if !seen[id] {
				seen[id] = true
				all = append(all, id)
				next = append(next, id)
			}
		}
		if len(next) == 0 {
			break
		}
		replies, err := c.comments.ReplyIDs(ctx, next)
		if err != nil {
			return fmt.Errorf("collect replies: %w", err)
		}
		frontier = replies
	}

	if err := c.notifications.DeleteByComments(ctx, all); err != nil {
		return fmt.Errorf("delete comment notifications: %w", err)
	}
	if err := c.comments.DeleteByIDs(ctx, all); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

// deleteRecipes removes the recipes with their comments, the notifications
// pointing at either, and the like/favourite rows.
func (c *cascade) deleteRecipes(ctx context.Context, recipeIDs []string) error {
	if len(recipeIDs) == 0 {
		return nil
	}

	commentIDs, err := c.comments.IDsByRecipes(ctx, recipeIDs)
	if err != nil {
		return fmt.Errorf("collect recipe comments: %w", err)
	}
	if err := c.notifications.DeleteByComments(ctx, commentIDs); err != nil {
		return fmt.Errorf("delete comment notifications: %w", err)
	}
	if err := c.notifications.DeleteByRecipes(ctx, recipeIDs); err != nil {
		return fmt.Errorf("delete recipe notifications: %w", err)
	}
	if err := c.comments.DeleteByRecipes(ctx, recipeIDs); err != nil {
		return fmt.Errorf("delete recipe comments: %w", err)
	}
	if err := c.users.RemoveRecipesFromLists(ctx, recipeIDs); err != nil {
		return err
	}
	return c.recipes.DeleteByIDs(ctx, recipeIDs)
}
