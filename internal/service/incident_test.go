package service_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/satarknity/community_alerts/internal/models"
	"github.com/satarknity/community_alerts/internal/service"
	"github.com/satarknity/community_alerts/internal/service/mocks"
	"github.com/satarknity/community_alerts/internal/webhook"
	webhook_mocks "github.com/satarknity/community_alerts/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type incidentServiceMocks struct {
	repo      *mocks.MockIncidentRepository
	storage   *mocks.MockObjectStorage
	identity  *mocks.MockIdentityProvider
	geocoder  *mocks.MockGeocoder
	publisher *webhook_mocks.MockEventPublisher
}

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (service.IncidentService, incidentServiceMocks) {
	ctrl := gomock.NewController(t)

	m := incidentServiceMocks{
		repo:      mocks.NewMockIncidentRepository(ctrl),
		storage:   mocks.NewMockObjectStorage(ctrl),
		identity:  mocks.NewMockIdentityProvider(ctrl),
		geocoder:  mocks.NewMockGeocoder(ctrl),
		publisher: webhook_mocks.NewMockEventPublisher(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	svc := service.NewIncidentService(m.repo, m.storage, m.identity, m.geocoder, m.publisher, logger)
	return svc, m
}

func stagedImage(t *testing.T, draft *service.Draft, name string) {
	t.Helper()
	_, err := draft.AddAttachments(models.FileUpload{
		Name:        name,
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	require.NoError(t, err)
}

func TestSubmitIncident_MissingDescription(t *testing.T) {
	// Подготовка
	svc, _ := newTestIncidentService(t)
	ctx := context.Background()

	for _, description := range []string{"", "   ", "\t\n"} {
		draft := service.NewDraft()
		draft.Description = description
		draft.Location = "5th & Main"

		// Действие: ни одного внешнего вызова не ожидается
		incident, err := svc.SubmitIncident(ctx, "token", draft)

		// Проверки
		require.ErrorIs(t, err, service.ErrMissingDescription)
		assert.Nil(t, incident)
	}
}

func TestSubmitIncident_MissingLocation(t *testing.T) {
	// Подготовка
	svc, _ := newTestIncidentService(t)
	ctx := context.Background()

	draft := service.NewDraft()
	draft.Description = "Suspicious vehicle"
	draft.Location = "   "

	// Действие: ни одного внешнего вызова не ожидается
	incident, err := svc.SubmitIncident(ctx, "token", draft)

	// Проверки
	require.ErrorIs(t, err, service.ErrMissingLocation)
	assert.Nil(t, incident)
}

func TestSubmitIncident_AuthenticationRequired(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	draft := service.NewDraft()
	draft.Description = "Suspicious vehicle"
	draft.Location = "5th & Main"

	// Ожидания: провайдер не знает такого токена, загрузка и вставка не вызываются
	m.identity.EXPECT().CurrentUser(ctx, "expired").Return(nil, nil).Times(1)

	// Действие
	incident, err := svc.SubmitIncident(ctx, "expired", draft)

	// Проверки
	require.ErrorIs(t, err, service.ErrAuthenticationRequired)
	assert.Nil(t, incident)
}

func TestSubmitIncident_NoAttachments(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	draft := service.NewDraft()
	draft.Description = "Suspicious vehicle"
	draft.Location = "5th & Main"

	// Ожидания
	m.identity.EXPECT().CurrentUser(ctx, "token").Return(&models.User{ID: "u1"}, nil).Times(1)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			assert.Equal(t, "u1", inc.UserID)
			assert.Equal(t, "Suspicious vehicle", inc.Description)
			assert.Equal(t, "5th & Main", inc.Location)
			require.NotNil(t, inc.MediaURLs)
			assert.Len(t, inc.MediaURLs, 0)
			// Симулируем, что БД присвоила ID
			inc.ID = 7
			return nil
		}).Times(1)
	m.repo.EXPECT().InvalidateFeedCache(ctx).Return(nil).Times(1)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		Do(func(_ context.Context, event webhook.IncidentEvent) {
			assert.Equal(t, int64(7), event.IncidentID)
			assert.Equal(t, "u1", event.UserID)
		}).Return(nil).Times(1)

	// Действие
	incident, err := svc.SubmitIncident(ctx, "token", draft)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(7), incident.ID)
	// Успешная отправка очищает черновик
	assert.Empty(t, draft.Description)
	assert.Equal(t, 0, draft.Len())
}

func TestSubmitIncident_UploadsSequentiallyInOrder(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	draft := service.NewDraft()
	draft.Description = "Broken streetlight"
	draft.Location = "Oak Ave"
	stagedImage(t, draft, "first.png")
	stagedImage(t, draft, "second.png")

	// Ожидания: загрузки идут по одной, в порядке стейджинга
	m.identity.EXPECT().CurrentUser(ctx, "token").Return(&models.User{ID: "u1"}, nil).Times(1)
	first := m.storage.EXPECT().
		Upload(ctx, "token", gomock.Any(), "image/png", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, path, _ string, _ []byte) (string, error) {
			assert.True(t, strings.HasPrefix(path, "u1/"))
			assert.True(t, strings.HasSuffix(path, ".png"))
			return "https://cdn.example.com/" + path, nil
		}).Times(1)
	m.storage.EXPECT().
		Upload(ctx, "token", gomock.Any(), "image/png", gomock.Any()).
		After(first).
		DoAndReturn(func(_ context.Context, _, path, _ string, _ []byte) (string, error) {
			return "https://cdn.example.com/" + path, nil
		}).Times(1)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, inc *models.Incident) error {
			// Ровно два URL, в порядке загрузки
			require.Len(t, inc.MediaURLs, 2)
			for _, url := range inc.MediaURLs {
				assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/u1/"))
			}
			inc.ID = 8
			return nil
		}).Times(1)
	m.repo.EXPECT().InvalidateFeedCache(ctx).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := svc.SubmitIncident(ctx, "token", draft)

	// Проверки
	require.NoError(t, err)
	require.Len(t, incident.MediaURLs, 2)
	assert.Equal(t, 0, draft.Len())
}

func TestSubmitIncident_SecondUploadFails(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	draft := service.NewDraft()
	defer draft.Reset()
	draft.Description = "Broken streetlight"
	draft.Location = "Oak Ave"
	stagedImage(t, draft, "first.png")
	stagedImage(t, draft, "second.png")

	// Ожидания: вторая загрузка падает, вставка не вызывается,
	// URL первой загрузки отбрасывается
	m.identity.EXPECT().CurrentUser(ctx, "token").Return(&models.User{ID: "u1"}, nil).Times(1)
	first := m.storage.EXPECT().
		Upload(ctx, "token", gomock.Any(), "image/png", gomock.Any()).
		Return("https://cdn.example.com/u1/first.png", nil).Times(1)
	m.storage.EXPECT().
		Upload(ctx, "token", gomock.Any(), "image/png", gomock.Any()).
		After(first).
		Return("", fmt.Errorf("bucket quota exceeded")).Times(1)

	// Действие
	incident, err := svc.SubmitIncident(ctx, "token", draft)

	// Проверки
	require.Error(t, err)
	assert.ErrorContains(t, err, "could not upload attachment 2 of 2")
	assert.Nil(t, incident)
	// Черновик сохранен для повторной попытки
	assert.Equal(t, 2, draft.Len())
	assert.Equal(t, "Broken streetlight", draft.Description)
}

func TestSubmitIncident_InsertFails(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	draft := service.NewDraft()
	defer draft.Reset()
	draft.Description = "Suspicious vehicle"
	draft.Location = "5th & Main"
	stagedImage(t, draft, "a.png")

	// Ожидания: вставка падает, кэш не инвалидируется, событие не публикуется
	m.identity.EXPECT().CurrentUser(ctx, "token").Return(&models.User{ID: "u1"}, nil).Times(1)
	m.storage.EXPECT().
		Upload(ctx, "token", gomock.Any(), "image/png", gomock.Any()).
		Return("https://cdn.example.com/u1/a.png", nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(fmt.Errorf("connection reset")).Times(1)

	// Действие
	incident, err := svc.SubmitIncident(ctx, "token", draft)

	// Проверки
	require.Error(t, err)
	assert.ErrorContains(t, err, "could not create incident")
	assert.Nil(t, incident)
	// Введенные данные сохранены для повторной попытки
	assert.Equal(t, 1, draft.Len())
	assert.Equal(t, "Suspicious vehicle", draft.Description)
}

func TestListIncidents_FromCache(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()
	cached := []*models.Incident{
		{ID: 2, Description: "Позже"},
		{ID: 1, Description: "Раньше"},
	}

	// Ожидания: попадание в кэш, БД не трогаем
	m.repo.EXPECT().GetFeedFromCache(ctx).Return(cached, nil).Times(1)

	// Действие
	incidents, err := svc.ListIncidents(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, cached, incidents)
}

func TestListIncidents_FromDB(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.Incident{
		{ID: 2, Description: "Позже"},
		{ID: 1, Description: "Раньше"},
	}

	// Ожидания: промах кэша, чтение из БД, запись в кэш
	m.repo.EXPECT().GetFeedFromCache(ctx).Return(nil, nil).Times(1)
	m.repo.EXPECT().ListIncidents(ctx).Return(expected, nil).Times(1)
	m.repo.EXPECT().SetFeedCache(ctx, expected).Return(nil).Times(1)

	// Действие
	incidents, err := svc.ListIncidents(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestListIncidents_EmptyFeedIsNotAnError(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	m.repo.EXPECT().GetFeedFromCache(ctx).Return(nil, nil).Times(1)
	m.repo.EXPECT().ListIncidents(ctx).Return([]*models.Incident{}, nil).Times(1)
	m.repo.EXPECT().SetFeedCache(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incidents, err := svc.ListIncidents(ctx)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, incidents)
	assert.Empty(t, incidents)
}

func TestListIncidents_RepositoryError(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	m.repo.EXPECT().GetFeedFromCache(ctx).Return(nil, nil).Times(1)
	m.repo.EXPECT().ListIncidents(ctx).Return(nil, fmt.Errorf("база недоступна")).Times(1)

	// Действие
	incidents, err := svc.ListIncidents(ctx)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incidents)
	assert.ErrorContains(t, err, "could not list incidents")
}

func TestResolveLocation_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	m.geocoder.EXPECT().Reverse(ctx, 55.75, 37.61).Return("Красная площадь, Москва", nil).Times(1)

	// Действие
	location, resolved := svc.ResolveLocation(ctx, 55.75, 37.61)

	// Проверки
	assert.True(t, resolved)
	assert.Equal(t, "Красная площадь, Москва", location)
}

func TestResolveLocation_FallsBackToRawCoordinates(t *testing.T) {
	// Подготовка
	svc, m := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания: сбой геокодера некритичен
	m.geocoder.EXPECT().Reverse(ctx, 55.75, 37.61).Return("", fmt.Errorf("timeout")).Times(1)

	// Действие
	location, resolved := svc.ResolveLocation(ctx, 55.75, 37.61)

	// Проверки
	assert.False(t, resolved)
	assert.Equal(t, "55.750000, 37.610000", location)
}
