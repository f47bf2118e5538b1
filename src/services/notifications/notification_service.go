package notifications

import (
	"context"
	"errors"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"

	"go.uber.org/zap"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*entities.Profile, error)
}

// NotificationService transforma eventos de conexão em emails.
// Hoje só connection.requested gera email; os demais tipos são ignorados.
type NotificationService struct {
	logger   *zap.Logger
	profiles ProfileLookup
	mailer   Mailer
}

func NewNotificationService(logger *zap.Logger, profiles ProfileLookup, mailer Mailer) *NotificationService {
	return &NotificationService{
		logger:   logger.With(zap.String("component", "notification_service")),
		profiles: profiles,
		mailer:   mailer,
	}
}

// Handle devolve erro só para falhas que valem reprocessar. Perfil inexistente descarta o evento.
func (s *NotificationService) Handle(ctx context.Context, event domain.ConnectionEvent) error {
	if event.Type != domain.EventConnectionRequested {
		return nil
	}

	requester, err := s.profiles.GetByID(ctx, event.ActorID)
	if err != nil {
		return s.lookupError(event, event.ActorID, err)
	}

	target, err := s.profiles.GetByID(ctx, event.SubjectID)
	if err != nil {
		return s.lookupError(event, event.SubjectID, err)
	}

	email := Email{
		To:      target.Email,
		Subject: fmt.Sprintf("%s wants to connect with you", requester.Name),
		Body: fmt.Sprintf("Hi %s,\n\n%s sent you a connection request. Open your pending requests to accept or ignore it.\n",
			target.Name, requester.Name),
	}

	if err := s.mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("NotificationService.Handle - failed to send email for event %s: %w", event.ID, err)
	}

	s.logger.Debug("connection request email sent", zap.String("event_id", event.ID), zap.String("target_id", target.ID))
	return nil
}

func (s *NotificationService) lookupError(event domain.ConnectionEvent, userID string, err error) error {
	if errors.Is(err, domain.ErrProfileNotFound) {
		s.logger.Warn("skipping notification, profile not found",
			zap.String("event_id", event.ID),
			zap.String("user_id", userID))
		return nil
	}
	return fmt.Errorf("NotificationService.Handle - failed to load profile %s: %w", userID, err)
}

// LogMailer só registra o email; a entrega real fica com o provedor externo.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.With(zap.String("component", "log_mailer"))}
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("email", zap.String("to", email.To), zap.String("subject", email.Subject))
	return nil
}
