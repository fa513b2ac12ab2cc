package notification

import (
	"context"
	"encoding/json"
	"time"

	"go-erp/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, companyID, resource, resourceID, message string) error
}

type redisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger ...*zap.Logger) Publisher {
	l := zap.L().Named("notification.publisher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.publisher")
	}
	return &redisPublisher{rdb: rdb, logger: l}
}

// Publish mengirim notifikasi ke channel redis per company. Gagal publish
// tidak boleh menggagalkan operasi bisnis pemanggil; error tetap dikembalikan
// untuk dilog oleh pemanggil.
func (p *redisPublisher) Publish(ctx context.Context, companyID, resource, resourceID, message string) error {
	n := events.Notification{
		EventType:  events.NotificationEventType,
		CompanyID:  companyID,
		Resource:   resource,
		ResourceID: resourceID,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	if err := p.rdb.Publish(ctx, events.NotificationChannel(companyID), payload).Err(); err != nil {
		p.logger.Error("publish notification failed",
			zap.String("company_id", companyID),
			zap.String("resource", resource),
			zap.Error(err),
		)
		return err
	}
	return nil
}
