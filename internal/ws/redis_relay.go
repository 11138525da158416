package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eustad-backend/internal/logger"
)

// NotificationsChannel — канал Redis, через который экземпляры обмениваются событиями.
const NotificationsChannel = "eustad:notifications"

type envelope struct {
	UserID uuid.UUID       `json:"user_id"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisRelay публикует кадры в Redis и доставляет полученные из Redis кадры
// локальным подключениям хаба.
type RedisRelay struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
}

// NewRedisRelay создаёт relay поверх готового клиента Redis.
func NewRedisRelay(rdb *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{rdb: rdb, hub: hub, channel: NotificationsChannel}
}

// Publish отправляет кадр пользователя всем подписанным экземплярам.
func (r *RedisRelay) Publish(ctx context.Context, userID uuid.UUID, frame []byte) error {
	raw, err := json.Marshal(envelope{UserID: userID, Frame: frame})
	if err != nil {
		return fmt.Errorf("ws relay: marshal %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("ws relay: publish %w", err)
	}
	return nil
}

// Run подписывается на канал и работает до отмены ctx.
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	logger.Log.WithField("channel", r.channel).Info("ws relay: подписка на Redis")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *RedisRelay) handle(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.UserID == uuid.Nil || len(env.Frame) == 0 {
		logger.Log.WithFields(logrus.Fields{
			"channel": r.channel,
			"error":   fmt.Sprint(err),
		}).Warn("ws relay: некорректное сообщение")
		return
	}
	r.hub.Deliver(env.UserID, env.Frame)
}
