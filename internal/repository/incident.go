package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/satarknity/community_alerts/internal/models"
	"github.com/satarknity/community_alerts/internal/service"
)

const feedCacheKey = "incidents:feed"

type IncidentRepository struct {
	db           *pgxpool.Pool
	redisClient  *redis.Client
	feedCacheTTL time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, feedCacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:           db,
		redisClient:  redisClient,
		feedCacheTTL: feedCacheTTL,
	}
}

// Create вставляет новую запись об инциденте; id и created_at присваивает бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO satarknity_incidents (user_id, description, location, media_urls)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.UserID,
		incident.Description,
		incident.Location,
		incident.MediaURLs,
	).Scan(&incident.ID, &incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// ListIncidents возвращает все инциденты от новых к старым
func (r *IncidentRepository) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	query := `
		SELECT
			id,
			user_id,
			description,
			location,
			media_urls,
			created_at
		FROM satarknity_incidents
		ORDER BY created_at DESC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident := &models.Incident{}
		err := rows.Scan(
			&incident.ID,
			&incident.UserID,
			&incident.Description,
			&incident.Location,
			&incident.MediaURLs,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		if incident.MediaURLs == nil {
			incident.MediaURLs = []string{}
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// GetFeedFromCache пытается получить ленту из Redis.
// Промах кэша - это (nil, nil), а не ошибка.
func (r *IncidentRepository) GetFeedFromCache(ctx context.Context) ([]*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, feedCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feed from cache: %w", err)
	}

	incidents := make([]*models.Incident, 0)
	if err := json.Unmarshal(val, &incidents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed from cache: %w", err)
	}
	return incidents, nil
}

// SetFeedCache сохраняет ленту в Redis с ограниченным сроком жизни
func (r *IncidentRepository) SetFeedCache(ctx context.Context, incidents []*models.Incident) error {
	val, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("failed to marshal feed for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, feedCacheKey, val, r.feedCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set feed in cache: %w", err)
	}
	return nil
}

// InvalidateFeedCache удаляет закэшированную ленту из Redis
func (r *IncidentRepository) InvalidateFeedCache(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, feedCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate feed cache: %w", err)
	}
	return nil
}
