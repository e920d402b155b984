package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"helpwise_backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// Буфер исходящих сообщений. Переполнение означает мертвого или
	// слишком медленного клиента - такой отключается.
	sendBufferSize = 64
)

// Client - одно websocket-соединение авторизованного пользователя.
type Client struct {
	manager *Manager
	conn    *websocket.Conn
	send    chan []byte
	userID  string
}

// clientAction - входящее сообщение от клиента.
type clientAction struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
}

// readPump читает команды клиента: вход и выход из комнат разговоров.
func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.GetLogger().Debug("websocket closed unexpectedly", "user_id", c.userID, "error", err.Error())
			}
			return
		}

		var action clientAction
		if err := json.Unmarshal(raw, &action); err != nil {
			continue
		}

		switch action.Action {
		case "join_conversation":
			c.manager.joinRoom(c, action.ConversationID)
		case "leave_conversation":
			c.manager.leaveRoom(c, action.ConversationID)
		}
	}
}

// writePump сериализует запись в соединение и держит его живым ping-ами.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
