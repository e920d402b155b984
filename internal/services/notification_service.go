package services

import (
	"errors"

	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

type NotificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List возвращает нотификации пользователя, свежие сверху, плюс счетчик непрочитанных.
func (s *NotificationService) List(userID string) (*dto.NotificationListResponse, error) {
	notifications, err := s.notificationRepo.FindUserNotifications(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	unread, err := s.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, mapNotification(&notifications[i]))
	}
	return &dto.NotificationListResponse{
		Notifications: out,
		UnreadCount:   unread,
	}, nil
}

// MarkAsRead помечает нотификацию прочитанной. Только владелец.
func (s *NotificationService) MarkAsRead(userID, notificationID string) error {
	notification, err := s.notificationRepo.FindNotificationByID(notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.NewNotFoundError("notification", "Notification not found")
		}
		return apperrors.InternalError(err)
	}
	if notification.UserID != userID {
		return apperrors.ErrInsufficientPermissions
	}

	if err := s.notificationRepo.MarkAsRead(notificationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
