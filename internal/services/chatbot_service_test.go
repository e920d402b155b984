package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpwise_backend/internal/ai"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

func TestChatbotSessionPersistence(t *testing.T) {
	sessions := newFakeChatSessionRepo()
	completer := &fakeChatCompleter{reply: "sure, here is how bidding works"}
	service := NewChatbotService(sessions, completer)

	_, err := service.SendMessage(context.Background(), "user-1", dto.ChatbotMessageRequest{Message: "how do bids work?"})
	require.NoError(t, err)

	session, err := sessions.FindByUser("user-1")
	require.NoError(t, err)

	var entries []models.ChatEntry
	require.NoError(t, json.Unmarshal(session.Entries, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, models.ChatSenderUser, entries[0].Sender)
	assert.Equal(t, models.ChatSenderBot, entries[1].Sender)
	assert.Equal(t, 2, session.MessageCount)
}

func TestChatbotSessionTruncation(t *testing.T) {
	sessions := newFakeChatSessionRepo()
	completer := &fakeChatCompleter{reply: "ok"}
	service := NewChatbotService(sessions, completer)

	// Предзаполняем сессию до лимита
	entries := make([]models.ChatEntry, models.ChatSessionMaxEntries)
	for i := range entries {
		entries[i] = models.ChatEntry{
			Sender:    models.ChatSenderUser,
			Text:      fmt.Sprintf("entry %d", i),
			Timestamp: time.Now(),
		}
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(&models.ChatSession{
		UserID:       "user-1",
		Entries:      raw,
		MessageCount: len(entries),
	}))

	_, err = service.SendMessage(context.Background(), "user-1", dto.ChatbotMessageRequest{Message: "one more"})
	require.NoError(t, err)

	session, err := sessions.FindByUser("user-1")
	require.NoError(t, err)

	var stored []models.ChatEntry
	require.NoError(t, json.Unmarshal(session.Entries, &stored))

	// История не превышает лимит, счетчик равен фактической длине
	assert.Len(t, stored, models.ChatSessionMaxEntries)
	assert.Equal(t, len(stored), session.MessageCount)

	// Обрезается начало: самые старые записи ушли, свежие на месте
	assert.Equal(t, "entry 2", stored[0].Text)
	assert.Equal(t, "ok", stored[len(stored)-1].Text)
}

func TestChatbotContextWindow(t *testing.T) {
	sessions := newFakeChatSessionRepo()
	completer := &fakeChatCompleter{reply: "ok"}
	service := NewChatbotService(sessions, completer)

	entries := make([]models.ChatEntry, 150)
	for i := range entries {
		entries[i] = models.ChatEntry{Sender: models.ChatSenderUser, Text: fmt.Sprintf("old %d", i), Timestamp: time.Now()}
	}
	raw, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, sessions.Create(&models.ChatSession{UserID: "user-1", Entries: raw, MessageCount: len(entries)}))

	_, err = service.SendMessage(context.Background(), "user-1", dto.ChatbotMessageRequest{Message: "question"})
	require.NoError(t, err)

	// system + последние ChatContextWindow записей
	require.Len(t, completer.calls, 1)
	assert.Len(t, completer.calls[0], models.ChatContextWindow+1)
	assert.Equal(t, "system", completer.calls[0][0].Role)
	assert.Equal(t, "question", completer.calls[0][len(completer.calls[0])-1].Content)
}

func TestChatbotGuestFlow(t *testing.T) {
	sessions := newFakeChatSessionRepo()
	completer := &fakeChatCompleter{reply: "guest answer"}
	service := NewChatbotService(sessions, completer)

	reply, err := service.SendMessage(context.Background(), "", dto.ChatbotMessageRequest{
		Message: "what is this site?",
		Context: []dto.ChatContextEntry{
			{Sender: "user", Text: "hi"},
			{Sender: "bot", Text: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "guest answer", reply.Reply)

	// Гостевой контекст передается модели, но ничего не сохраняется
	require.Len(t, completer.calls, 1)
	assert.Len(t, completer.calls[0], 4) // system + 2 context + вопрос
	_, err = sessions.FindByUser("")
	assert.Error(t, err)
}

func TestChatbotQuotaErrorMapping(t *testing.T) {
	sessions := newFakeChatSessionRepo()
	completer := &fakeChatCompleter{err: fmt.Errorf("openai: %w", ai.ErrQuotaExceeded)}
	service := NewChatbotService(sessions, completer)

	_, err := service.SendMessage(context.Background(), "user-1", dto.ChatbotMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrAIQuotaExceeded)
}

func TestChatbotClearHistory(t *testing.T) {
	sessions := newFakeChatSessionRepo()
	service := NewChatbotService(sessions, &fakeChatCompleter{reply: "ok"})

	_, err := service.SendMessage(context.Background(), "user-1", dto.ChatbotMessageRequest{Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, service.ClearHistory("user-1"))
	// Повторная очистка пустой сессии не считается ошибкой
	require.NoError(t, service.ClearHistory("user-1"))

	history, err := service.GetHistory("user-1")
	require.NoError(t, err)
	assert.Empty(t, history.Entries)
}
