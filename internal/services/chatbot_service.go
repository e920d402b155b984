package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"helpwise_backend/internal/ai"
	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

const chatbotSystemPrompt = "You are the HelpWise assistant. You help users navigate " +
	"a marketplace where people post help requests and others bid on them. " +
	"Answer briefly and practically. If a question is outside the marketplace, " +
	"politely steer the user back."

type ChatbotService struct {
	sessionRepo repositories.ChatSessionRepository
	openai      ChatCompleter
}

func NewChatbotService(sessionRepo repositories.ChatSessionRepository, openai ChatCompleter) *ChatbotService {
	return &ChatbotService{
		sessionRepo: sessionRepo,
		openai:      openai,
	}
}

// SendMessage обрабатывает реплику пользователя. Для авторизованных история
// персистентна (одна сессия на пользователя, хвост обрезается до лимита);
// гость получает одноразовый ответ без сохранения.
func (s *ChatbotService) SendMessage(ctx context.Context, userID string, req dto.ChatbotMessageRequest) (*dto.ChatbotReplyResponse, error) {
	if userID == "" {
		return s.guestReply(req)
	}

	session, entries, err := s.loadSession(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries = append(entries, models.ChatEntry{
		Sender:    models.ChatSenderUser,
		Text:      req.Message,
		Timestamp: now,
	})

	reply, err := s.openai.ChatCompletion(buildChatMessages(entries), 0.7)
	if err != nil {
		return nil, mapAIError(err)
	}

	entries = append(entries, models.ChatEntry{
		Sender:    models.ChatSenderBot,
		Text:      reply,
		Timestamp: time.Now(),
	})
	entries = TruncateChatEntries(entries, models.ChatSessionMaxEntries)

	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	session.Entries = datatypes.JSON(raw)
	session.MessageCount = len(entries)
	session.LastActivityAt = time.Now()

	if session.ID == "" {
		err = s.sessionRepo.Create(session)
	} else {
		err = s.sessionRepo.Update(session)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxDebug(ctx, "chatbot reply stored", "user_id", userID, "message_count", session.MessageCount)
	return &dto.ChatbotReplyResponse{Reply: reply}, nil
}

func (s *ChatbotService) GetHistory(userID string) (*dto.ChatHistoryResponse, error) {
	session, err := s.sessionRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatSessionNotFound) {
			return &dto.ChatHistoryResponse{Entries: []dto.ChatEntryResponse{}}, nil
		}
		return nil, apperrors.InternalError(err)
	}

	var entries []models.ChatEntry
	if len(session.Entries) > 0 {
		if err := json.Unmarshal(session.Entries, &entries); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	out := make([]dto.ChatEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ChatEntryResponse{
			Sender:    string(e.Sender),
			Text:      e.Text,
			Timestamp: e.Timestamp,
		})
	}
	return &dto.ChatHistoryResponse{
		Entries:      out,
		MessageCount: session.MessageCount,
	}, nil
}

func (s *ChatbotService) ClearHistory(userID string) error {
	err := s.sessionRepo.DeleteByUser(userID)
	if err != nil && !errors.Is(err, repositories.ErrChatSessionNotFound) {
		return apperrors.InternalError(err)
	}
	return nil
}

// guestReply отвечает без сессии: контекст приходит от клиента и нигде
// не сохраняется.
func (s *ChatbotService) guestReply(req dto.ChatbotMessageRequest) (*dto.ChatbotReplyResponse, error) {
	messages := make([]ai.Message, 0, len(req.Context)+2)
	messages = append(messages, ai.Message{Role: "system", Content: chatbotSystemPrompt})
	for _, e := range req.Context {
		role := "user"
		if e.Sender == string(models.ChatSenderBot) {
			role = "assistant"
		}
		messages = append(messages, ai.Message{Role: role, Content: e.Text})
	}
	messages = append(messages, ai.Message{Role: "user", Content: req.Message})

	reply, err := s.openai.ChatCompletion(messages, 0.7)
	if err != nil {
		return nil, mapAIError(err)
	}
	return &dto.ChatbotReplyResponse{Reply: reply}, nil
}

func (s *ChatbotService) loadSession(userID string) (*models.ChatSession, []models.ChatEntry, error) {
	session, err := s.sessionRepo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatSessionNotFound) {
			return &models.ChatSession{UserID: userID}, nil, nil
		}
		return nil, nil, apperrors.InternalError(err)
	}

	var entries []models.ChatEntry
	if len(session.Entries) > 0 {
		if err := json.Unmarshal(session.Entries, &entries); err != nil {
			return nil, nil, apperrors.InternalError(err)
		}
	}
	return session, entries, nil
}

// buildChatMessages превращает хвост истории в сообщения для модели.
// Модели уходит не вся история, а последние ChatContextWindow записей.
func buildChatMessages(entries []models.ChatEntry) []ai.Message {
	window := entries
	if len(window) > models.ChatContextWindow {
		window = window[len(window)-models.ChatContextWindow:]
	}

	messages := make([]ai.Message, 0, len(window)+1)
	messages = append(messages, ai.Message{Role: "system", Content: chatbotSystemPrompt})
	for _, e := range window {
		role := "user"
		if e.Sender == models.ChatSenderBot {
			role = "assistant"
		}
		messages = append(messages, ai.Message{Role: role, Content: e.Text})
	}
	return messages
}

// TruncateChatEntries оставляет последние limit записей.
func TruncateChatEntries(entries []models.ChatEntry, limit int) []models.ChatEntry {
	if len(entries) <= limit {
		return entries
	}
	return entries[len(entries)-limit:]
}
