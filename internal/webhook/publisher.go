package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	incidentQueueKey = "incident_events"
)

// IncidentEvent - уведомление об успешно отправленном отчете.
// Публикуется ровно один раз на каждую успешную вставку.
type IncidentEvent struct {
	IncidentID  int64     `json:"incident_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	MediaURLs   []string  `json:"media_urls"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventPublisher - интерфейс для публикации событий об инцидентах
type EventPublisher interface {
	Publish(ctx context.Context, event IncidentEvent) error
}

// RedisEventPublisher - реализация EventPublisher, использующая Redis
type RedisEventPublisher struct {
	redisClient *redis.Client
}

// NewRedisEventPublisher создает новый RedisEventPublisher
func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{
		redisClient: client,
	}
}

// Publish публикует событие в очередь Redis
func (p *RedisEventPublisher) Publish(ctx context.Context, event IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, incidentQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident event to Redis: %w", err)
	}
	return nil
}
