package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"agent_shopping/internal/domain"
	"agent_shopping/internal/service"
	"agent_shopping/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

// clientFrame — входящий кадр от клиента
type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

const (
	frameSend    = "send"
	frameHistory = "history"
)

type Client struct {
	conn     *websocket.Conn
	hub      *Hub
	chat     service.ChatService
	roomID   string
	userID   uuid.UUID
	userName string
	send     chan []byte
	closing  sync.Once
	mu       sync.Mutex // защищает closed и закрытие send
	closed   bool
	log      logger.Logger
}

func NewClient(hub *Hub, chat service.ChatService, conn *websocket.Conn, roomID string, userID uuid.UUID, userName string, log logger.Logger) *Client {
	return &Client{
		conn:     conn,
		hub:      hub,
		chat:     chat,
		roomID:   roomID,
		userID:   userID,
		userName: userName,
		send:     make(chan []byte, sendBuffer),
		log:      log,
	}
}

// Run блокируется до разрыва соединения
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) Deliver(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.send <- payload:
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		// Медленный потребитель: отключаем, история доступна при переподключении
		c.Kick()
	}
}

func (c *Client) Kick() {
	c.closing.Do(func() {
		c.hub.Leave(c.roomID, c)
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Kick()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.replyError("malformed frame")
			continue
		}

		switch frame.Type {
		case frameSend:
			// Авторизация перепроверяется внутри Send на каждый вызов:
			// привязка могла быть разорвана после входа в комнату
			if _, err := c.chat.Send(ctx, c.roomID, c.userID, frame.Content); err != nil {
				c.replyError(err.Error())
			}
		case frameHistory:
			messages, err := c.chat.History(ctx, c.roomID, c.userID)
			if err != nil {
				c.replyError(err.Error())
				continue
			}
			c.reply(domain.ChatEvent{
				Type:     domain.EventTypeHistory,
				RoomID:   c.roomID,
				Messages: messages,
			})
		default:
			c.replyError("unknown frame type")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply отправляет событие только этому соединению
func (c *Client) reply(event domain.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Error("Failed to marshal reply", "error", err)
		return
	}
	c.Deliver(payload)
}

func (c *Client) replyError(msg string) {
	c.reply(domain.ChatEvent{Type: domain.EventTypeError, Error: msg})
}
