package repositories

import (
	"errors"

	"helpwise_backend/internal/models"

	"gorm.io/gorm"
)

var ErrChatSessionNotFound = errors.New("chat session not found")

type ChatSessionRepository interface {
	FindByUser(userID string) (*models.ChatSession, error)
	Create(session *models.ChatSession) error
	Update(session *models.ChatSession) error
	DeleteByUser(userID string) error
}

type ChatSessionRepositoryImpl struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) ChatSessionRepository {
	return &ChatSessionRepositoryImpl{db: db}
}

func (r *ChatSessionRepositoryImpl) FindByUser(userID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.First(&session, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *ChatSessionRepositoryImpl) Create(session *models.ChatSession) error {
	return r.db.Create(session).Error
}

func (r *ChatSessionRepositoryImpl) Update(session *models.ChatSession) error {
	return r.db.Save(session).Error
}

func (r *ChatSessionRepositoryImpl) DeleteByUser(userID string) error {
	result := r.db.Delete(&models.ChatSession{}, "user_id = ?", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatSessionNotFound
	}
	return nil
}
