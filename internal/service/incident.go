package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/satarknity/community_alerts/internal/models"
	"github.com/satarknity/community_alerts/internal/webhook"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с хранилищем инцидентов
// и кэшем ленты
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	GetFeedFromCache(ctx context.Context) ([]*models.Incident, error)
	SetFeedCache(ctx context.Context, incidents []*models.Incident) error
	InvalidateFeedCache(ctx context.Context) error
}

// ObjectStorage определяет контракт внешнего object storage: загрузка по
// пути возвращает публично резолвящийся URL
type ObjectStorage interface {
	Upload(ctx context.Context, accessToken, path, contentType string, data []byte) (string, error)
}

// Geocoder определяет контракт внешнего сервиса обратного геокодирования
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// IncidentService определяет контракт бизнес-логики отчетов: отправка,
// лента и автоопределение адреса
type IncidentService interface {
	SubmitIncident(ctx context.Context, accessToken string, draft *Draft) (*models.Incident, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	ResolveLocation(ctx context.Context, lat, lon float64) (location string, resolved bool)
}

type incidentService struct {
	repo      IncidentRepository
	storage   ObjectStorage
	identity  IdentityProvider
	geocoder  Geocoder
	publisher webhook.EventPublisher
	logger    *logrus.Logger
}

func NewIncidentService(
	repo IncidentRepository,
	storage ObjectStorage,
	identity IdentityProvider,
	geocoder Geocoder,
	publisher webhook.EventPublisher,
	logger *logrus.Logger,
) IncidentService {
	return &incidentService{
		repo:      repo,
		storage:   storage,
		identity:  identity,
		geocoder:  geocoder,
		publisher: publisher,
		logger:    logger,
	}
}

// SubmitIncident проводит черновик через весь цикл отправки: валидация полей,
// проверка аутентификации, последовательная загрузка вложений и вставка одной
// записи. Порядок валидации фиксирован, первая ошибка останавливает остальное.
// Проверки полей выполняются до каких-либо внешних вызовов. Любой сбой
// загрузки или вставки прерывает отправку целиком: частичная запись не
// фиксируется, уже полученные URL отбрасываются, а черновик сохраняется для
// повторной попытки. Только при успехе черновик очищается и кэш ленты
// инвалидируется.
func (s *incidentService) SubmitIncident(ctx context.Context, accessToken string, draft *Draft) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "SubmitIncident",
	})

	if strings.TrimSpace(draft.Description) == "" {
		return nil, ErrMissingDescription
	}
	if strings.TrimSpace(draft.Location) == "" {
		return nil, ErrMissingLocation
	}

	user, err := s.identity.CurrentUser(ctx, accessToken)
	if err != nil {
		log.WithError(err).Error("Failed to resolve current user")
		return nil, fmt.Errorf("service: could not resolve current user: %w", err)
	}
	if user == nil {
		return nil, ErrAuthenticationRequired
	}
	log = log.WithField("user_id", user.ID)

	// Загружаем вложения строго по одному, в порядке стейджинга. Сбой любой
	// загрузки валит отправку целиком: вставки с частью вложений не бывает.
	attachments := draft.Attachments()
	mediaURLs := make([]string, 0, len(attachments))
	for i, att := range attachments {
		objectName := uuid.New().String() + strings.ToLower(filepath.Ext(att.Name))
		objectPath := user.ID + "/" + objectName

		url, err := s.storage.Upload(ctx, accessToken, objectPath, att.ContentType, att.Data)
		if err != nil {
			log.WithError(err).WithField("attachment", i+1).Error("Failed to upload attachment")
			return nil, fmt.Errorf("service: could not upload attachment %d of %d: %w", i+1, len(attachments), err)
		}
		mediaURLs = append(mediaURLs, url)
	}

	incident := &models.Incident{
		UserID:      user.ID,
		Description: draft.Description,
		Location:    draft.Location,
		MediaURLs:   mediaURLs,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	log = log.WithField("incident_id", incident.ID)

	// Кэш ленты инвалидируется ровно один раз на успешную отправку
	if err := s.repo.InvalidateFeedCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate feed cache")
	}

	event := webhook.IncidentEvent{
		IncidentID:  incident.ID,
		UserID:      incident.UserID,
		Description: incident.Description,
		Location:    incident.Location,
		MediaURLs:   incident.MediaURLs,
		CreatedAt:   incident.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish incident event")
	}

	draft.Reset()
	log.Info("Incident submitted successfully")
	return incident, nil
}

// ListIncidents возвращает ленту отчетов от новых к старым.
// Пустая лента - валидное состояние, отличное от ошибки.
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})

	cached, err := s.repo.GetFeedFromCache(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read feed cache")
	} else if cached != nil {
		log.WithField("count", len(cached)).Debug("Feed served from cache")
		return cached, nil
	}

	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	if err := s.repo.SetFeedCache(ctx, incidents); err != nil {
		log.WithError(err).Warn("Failed to write feed cache")
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// ResolveLocation превращает пару координат в человекочитаемый адрес.
// Любой сбой геокодера некритичен: вместо пустого поля возвращается
// отформатированная пара координат и resolved=false.
func (s *incidentService) ResolveLocation(ctx context.Context, lat, lon float64) (string, bool) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ResolveLocation",
	})

	address, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		log.WithError(err).Warn("Reverse geocoding failed, falling back to raw coordinates")
		return fmt.Sprintf("%.6f, %.6f", lat, lon), false
	}
	return address, true
}
