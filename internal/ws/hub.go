package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eustad-backend/internal/goroutine"
	"github.com/ignatzorin/eustad-backend/internal/logger"
)

// NotificationSaver сохраняет отправленные события в БД.
type NotificationSaver interface {
	SaveEvent(ctx context.Context, userID uuid.UUID, event string, data interface{}) error
}

// Publisher рассылает готовый кадр всем экземплярам сервиса.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, frame []byte) error
}

// Frame — сообщение, которое получает клиент.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub управляет WebSocket клиентами текущего экземпляра.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	saver      NotificationSaver
	publisher  Publisher
	ctx        context.Context
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб. Цикл Run завершается вместе с ctx.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,
	}
}

// SetNotificationSaver устанавливает сервис для сохранения уведомлений.
func (h *Hub) SetNotificationSaver(saver NotificationSaver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saver = saver
}

// SetPublisher включает межэкземплярную рассылку. Без неё доставка локальная.
func (h *Hub) SetPublisher(publisher Publisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publisher = publisher
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// BroadcastToUser отправляет событие всем подключениям пользователя и сохраняет уведомление.
// Доставка не гарантируется: офлайн-пользователь событие не получит.
func (h *Hub) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	raw, err := json.Marshal(Frame{Type: event, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	h.mu.RLock()
	saver := h.saver
	publisher := h.publisher
	h.mu.RUnlock()

	if saver != nil {
		goroutine.SafeGoWithContext(h.ctx, "ws-save-notification", func(ctx context.Context) {
			if err := saver.SaveEvent(ctx, userID, event, data); err != nil {
				logger.Log.WithFields(logrus.Fields{
					"user_id": userID,
					"event":   event,
					"error":   err.Error(),
				}).Warn("ws: не удалось сохранить уведомление")
			}
		})
	}

	if publisher != nil {
		err := publisher.Publish(h.ctx, userID, raw)
		if err == nil {
			return nil
		}
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		}).Warn("ws: публикация не удалась, доставка только локально")
	}

	h.Deliver(userID, raw)
	return nil
}

// Deliver ставит готовый кадр в очередь доставки локальным подключениям.
func (h *Hub) Deliver(userID uuid.UUID, payload []byte) {
	select {
	case h.broadcast <- message{userID: userID, payload: payload}:
	case <-h.ctx.Done():
	}
}

// ConnectedClients возвращает число локальных подключений пользователя.
func (h *Hub) ConnectedClients(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент отключается. Close вызывает Unregister,
			// поэтому из цикла Run его нужно звать асинхронно.
			logger.Log.WithField("user_id", userID).Warn("ws: буфер клиента переполнен, соединение закрывается")
			goroutine.SafeGo("ws-drop-client", client.Close)
		}
	}
}
