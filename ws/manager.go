package ws

import (
	"context"
	"encoding/json"
	"sync"

	"helpwise_backend/internal/logger"
)

// ParticipantChecker проверяет право пользователя на вход в комнату.
// Реализуется сервисом разговоров.
type ParticipantChecker interface {
	IsParticipant(userID, conversationID string) (bool, error)
}

// eventEnvelope - формат всех серверных событий.
type eventEnvelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Manager - хаб live-канала: клиенты по пользователям и комнаты по
// разговорам. Доставка fire-and-forget: медленный клиент отключается.
type Manager struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	byUser  map[string]map[*Client]bool
	rooms   map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	participants ParticipantChecker
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		byUser:     make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetParticipantChecker подключается после создания сервисов
// (хаб нужен сервисам раньше, чем сервисы хабу).
func (m *Manager) SetParticipantChecker(pc ParticipantChecker) {
	m.participants = pc
}

// Run обслуживает регистрацию клиентов до отмены контекста.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case client := <-m.register:
			m.addClient(client)

		case client := <-m.unregister:
			m.removeClient(client)

		case <-ctx.Done():
			m.closeAll()
			return
		}
	}
}

func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[client] = true
	if m.byUser[client.userID] == nil {
		m.byUser[client.userID] = make(map[*Client]bool)
	}
	m.byUser[client.userID][client] = true
	logger.GetLogger().Debug("websocket client connected", "user_id", client.userID)
}

func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[client]; !ok {
		return
	}
	delete(m.clients, client)
	close(client.send)

	if set := m.byUser[client.userID]; set != nil {
		delete(set, client)
		if len(set) == 0 {
			delete(m.byUser, client.userID)
		}
	}
	for roomID, room := range m.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(m.rooms, roomID)
		}
	}
	logger.GetLogger().Debug("websocket client disconnected", "user_id", client.userID)
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for client := range m.clients {
		close(client.send)
	}
	m.clients = make(map[*Client]bool)
	m.byUser = make(map[string]map[*Client]bool)
	m.rooms = make(map[string]map[*Client]bool)
}

// joinRoom подключает клиента к комнате разговора после проверки участия.
func (m *Manager) joinRoom(client *Client, conversationID string) {
	if conversationID == "" || m.participants == nil {
		return
	}

	ok, err := m.participants.IsParticipant(client.userID, conversationID)
	if err != nil {
		logger.GetLogger().Warn("room membership check failed",
			"user_id", client.userID, "conversation_id", conversationID, "error", err.Error())
		return
	}
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[conversationID] == nil {
		m.rooms[conversationID] = make(map[*Client]bool)
	}
	m.rooms[conversationID][client] = true
}

func (m *Manager) leaveRoom(client *Client, conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room := m.rooms[conversationID]; room != nil {
		delete(room, client)
		if len(room) == 0 {
			delete(m.rooms, conversationID)
		}
	}
}

// --- Реализация services.EventBroadcaster ---

// BroadcastNewRequest рассылает событие newRequest всем подключенным.
func (m *Manager) BroadcastNewRequest(payload interface{}) {
	raw, ok := marshalEvent("newRequest", payload)
	if !ok {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.clients {
		m.trySend(client, raw)
	}
}

// SendToConversation доставляет событие участникам комнаты.
func (m *Manager) SendToConversation(conversationID string, event string, payload interface{}) {
	raw, ok := marshalEvent(event, payload)
	if !ok {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.rooms[conversationID] {
		m.trySend(client, raw)
	}
}

// SendToUser доставляет событие всем соединениям пользователя.
func (m *Manager) SendToUser(userID string, event string, payload interface{}) {
	raw, ok := marshalEvent(event, payload)
	if !ok {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.byUser[userID] {
		m.trySend(client, raw)
	}
}

// trySend кладет сообщение в буфер клиента; переполненный буфер означает
// зависшее соединение, закрытие произойдет в readPump.
func (m *Manager) trySend(client *Client, raw []byte) {
	select {
	case client.send <- raw:
	default:
		logger.GetLogger().Warn("dropping slow websocket client", "user_id", client.userID)
		client.conn.Close()
	}
}

func marshalEvent(event string, payload interface{}) ([]byte, bool) {
	raw, err := json.Marshal(eventEnvelope{Event: event, Payload: payload})
	if err != nil {
		logger.GetLogger().Error("failed to marshal websocket event", "event", event, "error", err.Error())
		return nil, false
	}
	return raw, true
}
