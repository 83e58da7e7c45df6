package repository

import (
	"context"
	"time"

	"recipehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// ListForUser returns released notifications, newest first.
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	// ReleaseForComment makes the notifications held for a comment visible and returns them.
	ReleaseForComment(ctx context.Context, commentID string) ([]models.Notification, error)
	DeleteByComments(ctx context.Context, commentIDs []string) error
	DeleteByRecipes(ctx context.Context, recipeIDs []string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return conn(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	base := conn(ctx, r.db).Model(&models.Notification{}).
		Where("for_user_id = ? AND pending = ?", userID, false)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := conn(ctx, r.db).
		Where("for_user_id = ? AND pending = ?", userID, false).
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Notification{}).
		Where("for_user_id = ? AND pending = ? AND read = ?", userID, false, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	result := conn(ctx, r.db).
		Model(&models.Notification{}).
		Where("id = ? AND for_user_id = ? AND pending = ?", notificationID, userID, false).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return conn(ctx, r.db).
		Model(&models.Notification{}).
		Where("for_user_id = ? AND pending = ?", userID, false).
		Update("read", true).Error
}

func (r *notificationRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	result := conn(ctx, r.db).Where("for_user_id = ?", userID).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) ReleaseForComment(ctx context.Context, commentID string) ([]models.Notification, error) {
	db := conn(ctx, r.db)

	var held []models.Notification
	if err := db.Where("comment_id = ? AND pending = ?", commentID, true).Find(&held).Error; err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return held, nil
	}

	ids := make([]string, 0, len(held))
	for _, n := range held {
		ids = append(ids, n.ID)
	}
	now := time.Now()
	err := db.Model(&models.Notification{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"pending": false, "updated_at": now}).Error
	if err != nil {
		return nil, err
	}

	for i := range held {
		held[i].Pending = false
		held[i].UpdatedAt = now
	}
	return held, nil
}

func (r *notificationRepository) DeleteByComments(ctx context.Context, commentIDs []string) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("comment_id IN ?", commentIDs).Delete(&models.Notification{}).Error
}

func (r *notificationRepository) DeleteByRecipes(ctx context.Context, recipeIDs []string) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("recipe_id IN ?", recipeIDs).Delete(&models.Notification{}).Error
}
