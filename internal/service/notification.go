package service

import (
	"context"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/repository"
)

type notificationService struct {
	notes repository.NotificationRepository
}

func NewNotificationService(notes repository.NotificationRepository) NotificationService {
	return &notificationService{notes: notes}
}

func (s *notificationService) List(ctx context.Context, memberID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.notes.List(ctx, memberID, pageSize, offset)
}

func (s *notificationService) CountUnread(ctx context.Context, memberID int32) (int32, error) {
	return s.notes.CountUnread(ctx, memberID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, memberID, notificationID int32) error {
	return s.notes.MarkAsRead(ctx, notificationID, memberID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, memberID int32) error {
	return s.notes.MarkAllAsRead(ctx, memberID)
}
