package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"helpwise_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	FindNotificationByID(id string) (*models.Notification, error)
	FindUserNotifications(userID string) ([]models.Notification, error)
	MarkAsRead(notificationID string) error
	GetUnreadCount(userID string) (int64, error)

	// Factory methods for the bid-lifecycle notifications
	CreateBidAcceptedNotification(bidderID, requestTitle, bidID string) error
	CreateBidRejectedNotification(bidderID, requestTitle, bidID string) error

	WithTx(tx *gorm.DB) NotificationRepository
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) WithTx(tx *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: tx}
}

func (r *NotificationRepositoryImpl) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindNotificationByID(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindUserNotifications(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepositoryImpl) MarkAsRead(notificationID string) error {
	now := time.Now()
	result := r.db.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

// --- Factory methods ---

func (r *NotificationRepositoryImpl) CreateBidAcceptedNotification(bidderID, requestTitle, bidID string) error {
	return r.createBidStatusNotification(
		bidderID,
		models.NotificationTypeBidAccepted,
		fmt.Sprintf("Your bid on '%s' has been accepted", requestTitle),
		bidID,
	)
}

func (r *NotificationRepositoryImpl) CreateBidRejectedNotification(bidderID, requestTitle, bidID string) error {
	return r.createBidStatusNotification(
		bidderID,
		models.NotificationTypeBidRejected,
		fmt.Sprintf("Your bid on '%s' has been rejected", requestTitle),
		bidID,
	)
}

func (r *NotificationRepositoryImpl) createBidStatusNotification(userID string, notificationType models.NotificationType, message, bidID string) error {
	data := map[string]interface{}{
		"bid_id": bidID,
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	notification := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Message: message,
		Data:    datatypes.JSON(jsonData),
		BidID:   &bidID,
	}

	return r.CreateNotification(notification)
}
