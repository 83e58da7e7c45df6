package service

import (
	"context"

	"recipehub/internal/apperrors"
	"recipehub/internal/microservices/http-api/dto"
	"recipehub/internal/microservices/http-api/models"
	"recipehub/internal/microservices/http-api/repository"
)

type NotificationService interface {
	List(ctx context.Context, userID string, page, pageSize int) (*dto.Paginated[models.Notification], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, userID string, page, pageSize int) (*dto.Paginated[models.Notification], error) {
	notifications, total, err := s.repo.ListForUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, apperrors.Wrap(err)
	}
	return dto.NewPaginated(notifications, int(total), page, pageSize), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.Wrap(err)
	}
	return count, nil
}

// MarkAsRead only touches notifications addressed to userID.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	if !validID(notificationID) {
		return apperrors.NotFound("notification")
	}
	if err := s.repo.MarkAsRead(ctx, userID, notificationID); err != nil {
		return lookupErr(err, "notification")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return apperrors.Wrap(s.repo.MarkAllAsRead(ctx, userID))
}

func (s *notificationService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, apperrors.Wrap(err)
	}
	return deleted, nil
}
