package repo

import (
	"context"

	"github.com/KNICEX/binance-signals/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepo interface {
	Create(ctx context.Context, n entity.Notification) (string, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Notification, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &notificationRepo{
		db: db,
	}
}

func (r *notificationRepo) Create(ctx context.Context, n entity.Notification) (string, error) {
	if n.Id == "" {
		n.Id = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Create(&n).Error
	if err != nil {
		return "", err
	}
	return n.Id, nil
}

func (r *notificationRepo) FindRecent(ctx context.Context, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
