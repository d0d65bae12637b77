package service

import (
	"context"
	"fmt"

	"github.com/satarknity/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

// IdentityProvider определяет контракт внешнего identity provider
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthService определяет контракт держателя сессии: вход, регистрация,
// выход и поиск текущего пользователя. Любой сбой некритичен для процесса
// и не оставляет частично выполненного входа.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

type authService struct {
	identity IdentityProvider
	logger   *logrus.Logger
}

func NewAuthService(identity IdentityProvider, logger *logrus.Logger) AuthService {
	return &authService{
		identity: identity,
		logger:   logger,
	}
}

// SignUp создает новую учетную запись. Ошибка провайдера отдается как есть,
// чтобы ее сообщение можно было показать пользователю.
func (s *authService) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignUp",
		"email":   email,
	})
	log.Info("Attempting to sign up")

	session, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		log.WithError(err).Warn("Sign up failed")
		return nil, fmt.Errorf("service: could not sign up: %w", err)
	}

	log.WithField("user_id", session.User.ID).Info("Sign up succeeded")
	return session, nil
}

// SignIn выполняет вход по email и паролю
func (s *authService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignIn",
		"email":   email,
	})
	log.Info("Attempting to sign in")

	session, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		log.WithError(err).Warn("Sign in failed")
		return nil, fmt.Errorf("service: could not sign in: %w", err)
	}

	log.WithField("user_id", session.User.ID).Info("Sign in succeeded")
	return session, nil
}

// SignOut отзывает сессию у провайдера
func (s *authService) SignOut(ctx context.Context, accessToken string) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "auth",
		"method":  "SignOut",
	})

	if err := s.identity.SignOut(ctx, accessToken); err != nil {
		log.WithError(err).Warn("Sign out failed")
		return fmt.Errorf("service: could not sign out: %w", err)
	}

	log.Info("Sign out succeeded")
	return nil
}

// CurrentUser возвращает активного пользователя или nil, если токен невалиден
func (s *authService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	user, err := s.identity.CurrentUser(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("service: could not look up current user: %w", err)
	}
	return user, nil
}
