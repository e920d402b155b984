package repositories

import (
	"errors"

	"helpwise_backend/internal/models"

	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepository interface {
	// FindOrCreate ищет диалог для неупорядоченной пары участников и
	// создаёт его при отсутствии. Повторный вызов для той же пары
	// возвращает тот же диалог.
	FindOrCreate(userA, userB string) (*models.Conversation, bool, error)
	FindByID(id string) (*models.Conversation, error)
	FindByParticipant(userID string) ([]models.Conversation, error)
	TouchUpdatedAt(conversationID string) error

	CreateMessage(message *models.Message) error
	FindMessages(conversationID string) ([]models.Message, error)
	DeleteMessages(conversationID string) error
}

type ConversationRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &ConversationRepositoryImpl{db: db}
}

func (r *ConversationRepositoryImpl) FindOrCreate(userA, userB string) (*models.Conversation, bool, error) {
	one, two := models.NormalizePair(userA, userB)

	var conversation models.Conversation
	err := r.db.First(&conversation, "user_one_id = ? AND user_two_id = ?", one, two).Error
	if err == nil {
		return &conversation, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	conversation = models.Conversation{UserOneID: one, UserTwoID: two}
	if err := r.db.Create(&conversation).Error; err != nil {
		// Гонка двух одинаковых create: уникальный индекс по паре,
		// перечитываем существующий диалог.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Conversation
			if ferr := r.db.First(&existing, "user_one_id = ? AND user_two_id = ?", one, two).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &conversation, true, nil
}

func (r *ConversationRepositoryImpl) FindByID(id string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("UserOne").Preload("UserTwo").
		First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *ConversationRepositoryImpl) FindByParticipant(userID string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Preload("UserOne").Preload("UserTwo").
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&conversations).Error
	return conversations, err
}

func (r *ConversationRepositoryImpl) TouchUpdatedAt(conversationID string) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", gorm.Expr("now()")).Error
}

func (r *ConversationRepositoryImpl) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *ConversationRepositoryImpl) FindMessages(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}

func (r *ConversationRepositoryImpl) DeleteMessages(conversationID string) error {
	return r.db.Delete(&models.Message{}, "conversation_id = ?", conversationID).Error
}
