package notification

import (
	"context"
	"strings"

	"go-erp/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Subscriber mendengarkan channel redis notifications:* dan meneruskan
// payload ke hub. Jalan di goroutine sendiri selama hidupnya proses API.
type Subscriber struct {
	rdb    *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewSubscriber(rdb *redis.Client, hub *Hub, logger ...*zap.Logger) *Subscriber {
	l := zap.L().Named("notification.subscriber")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.subscriber")
	}
	return &Subscriber{rdb: rdb, hub: hub, logger: l}
}

func (s *Subscriber) Run(ctx context.Context) error {
	pattern := events.NotificationChannel("*")
	pubsub := s.rdb.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	s.logger.Info("notification subscriber started", zap.String("pattern", pattern))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			companyID := strings.TrimPrefix(msg.Channel, events.NotificationChannel(""))
			s.hub.Broadcast(companyID, []byte(msg.Payload))
		}
	}
}
