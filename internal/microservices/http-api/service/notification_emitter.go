package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recipehub/internal/events"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewNotification describes a notification to emit. Pending ones stay hidden
// from the recipient until released.
type NewNotification struct {
	ForUserID  string
	FromUserID *string
	Content    string
	CommentID  *string
	RecipeID   *string
	Pending    bool
}

// NotificationEmitter persists notifications and announces them once committed.
type NotificationEmitter interface {
	// Emit stores the notification using the transaction carried by ctx, if any.
	Emit(ctx context.Context, n NewNotification) (*models.Notification, error)
	// Announce publishes visible notifications in the background. Failures are only logged.
	Announce(notifications ...*models.Notification)
	// Wait blocks until every announcement started so far has finished.
	Wait()
}

type notificationEmitter struct {
	repo      repository.NotificationRepository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
	inflight  sync.WaitGroup
}

func NewNotificationEmitter(repo repository.NotificationRepository, publisher events.Publisher, logger *zap.Logger) NotificationEmitter {
	return &notificationEmitter{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (e *notificationEmitter) Emit(ctx context.Context, n NewNotification) (*models.Notification, error) {
	now := e.now()
	notification := &models.Notification{
		ID:         uuid.New().String(),
		ForUserID:  n.ForUserID,
		FromUserID: n.FromUserID,
		Content:    n.Content,
		CommentID:  n.CommentID,
		RecipeID:   n.RecipeID,
		Pending:    n.Pending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return notification, nil
}

func (e *notificationEmitter) Announce(notifications ...*models.Notification) {
	visible := make([]events.NotificationCreated, 0, len(notifications))
	for _, n := range notifications {
		if n == nil || n.Pending {
			continue
		}
		visible = append(visible, events.NotificationCreated{
			ID:         n.ID,
			ForUserID:  n.ForUserID,
			FromUserID: n.FromUserID,
			Content:    n.Content,
			CommentID:  n.CommentID,
			RecipeID:   n.RecipeID,
			CreatedAt:  n.CreatedAt,
		})
	}
	if len(visible) == 0 {
		return
	}

	// best-effort, non-blocking
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, ev := range visible {
			if err := e.publisher.PublishNotification(ctx, ev); err != nil {
				e.logger.Warn("failed to announce notification",
					zap.String("notification_id", ev.ID),
					zap.String("for_user", ev.ForUserID),
					zap.Error(err),
				)
			}
		}
	}()
}

func (e *notificationEmitter) Wait() {
	e.inflight.Wait()
}

// Notification contents.

func commentedContent(username, title string) string {
	return fmt.Sprintf("%s commented on your recipe \"%s\"", username, title)
}

func repliedContent(username, title string) string {
	return fmt.Sprintf("%s replied to your comment on \"%s\"", username, title)
}

func commentApprovedContent(title string) string {
	return fmt.Sprintf("Your comment on \"%s\" has been approved", title)
}

func recipeApprovedContent(title string) string {
	return fmt.Sprintf("Your recipe \"%s\" has been approved", title)
}
