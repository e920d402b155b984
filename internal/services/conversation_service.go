package services

import (
	"context"
	"errors"

	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

type ConversationService struct {
	conversationRepo repositories.ConversationRepository
	userRepo         repositories.UserRepository
	broadcaster      EventBroadcaster
}

func NewConversationService(
	conversationRepo repositories.ConversationRepository,
	userRepo repositories.UserRepository,
	broadcaster EventBroadcaster,
) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		broadcaster:      broadcaster,
	}
}

// Start открывает (или находит) диалог между текущим пользователем и собеседником.
// Пара не упорядочена: повторный вызов с любой стороны вернет тот же диалог.
func (s *ConversationService) Start(ctx context.Context, userID string, req dto.StartConversationRequest) (*dto.ConversationResponse, error) {
	if userID == req.UserID {
		return nil, apperrors.ErrConversationSelf
	}

	if _, err := s.userRepo.FindByID(req.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("conversation", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	conversation, created, err := s.conversationRepo.FindOrCreate(userID, req.UserID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if created {
		logger.CtxInfo(ctx, "conversation created", "conversation_id", conversation.ID)
	}

	full, err := s.conversationRepo.FindByID(conversation.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := mapConversation(full)
	return &resp, nil
}

func (s *ConversationService) List(userID string) ([]dto.ConversationResponse, error) {
	conversations, err := s.conversationRepo.FindByParticipant(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.ConversationResponse, 0, len(conversations))
	for i := range conversations {
		out = append(out, mapConversation(&conversations[i]))
	}
	return out, nil
}

func (s *ConversationService) Get(userID, conversationID string) (*dto.ConversationResponse, error) {
	conversation, err := s.participantConversation(userID, conversationID)
	if err != nil {
		return nil, err
	}
	resp := mapConversation(conversation)
	return &resp, nil
}

func (s *ConversationService) GetMessages(userID, conversationID string) ([]dto.MessageResponse, error) {
	if _, err := s.participantConversation(userID, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.conversationRepo.FindMessages(conversationID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, mapMessage(&messages[i]))
	}
	return out, nil
}

// SendMessage сохраняет сообщение и затем best-effort рассылает его в комнату.
// Порядок строгий: сначала запись, потом доставка.
func (s *ConversationService) SendMessage(ctx context.Context, userID, conversationID string, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if _, err := s.participantConversation(userID, conversationID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
	}
	if err := s.conversationRepo.CreateMessage(message); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.conversationRepo.TouchUpdatedAt(conversationID); err != nil {
		logger.CtxWithError(ctx, "failed to touch conversation", err, "conversation_id", conversationID)
	}

	resp := mapMessage(message)
	s.broadcaster.SendToConversation(conversationID, "chatMessage", resp)
	return &resp, nil
}

// ClearMessages удаляет всю историю диалога и оповещает комнату событием chatCleared.
func (s *ConversationService) ClearMessages(ctx context.Context, userID, conversationID string) error {
	if _, err := s.participantConversation(userID, conversationID); err != nil {
		return err
	}

	if err := s.conversationRepo.DeleteMessages(conversationID); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "conversation history cleared", "conversation_id", conversationID, "by", userID)

	s.broadcaster.SendToConversation(conversationID, "chatCleared", map[string]interface{}{
		"conversation_id": conversationID,
		"cleared_by":      userID,
	})
	return nil
}

// IsParticipant используется ws-хендлером при входе в комнату.
func (s *ConversationService) IsParticipant(userID, conversationID string) (bool, error) {
	conversation, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return false, nil
		}
		return false, err
	}
	return conversation.HasParticipant(userID), nil
}

func (s *ConversationService) participantConversation(userID, conversationID string) (*models.Conversation, error) {
	conversation, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, apperrors.NewNotFoundError("conversation", "Conversation not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if !conversation.HasParticipant(userID) {
		return nil, apperrors.ErrNotConversationParticipant
	}
	return conversation, nil
}
