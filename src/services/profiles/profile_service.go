package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

type ProfileReader interface {
	GetByID(ctx context.Context, id string) (*entities.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entities.Profile, error)
}

type StatusReader interface {
	StatusOf(ctx context.Context, currentUser string, other string) (domain.ConnectionStatus, error)
}

type ProfileService struct {
	profiles ProfileReader
	status   StatusReader
}

func NewProfileService(profiles ProfileReader, status StatusReader) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		status:   status,
	}
}

// GetUserProfile busca o perfil por id ou, se o identificador tiver '@', por email,
// junto do status de conexão entre o viewer e o usuário.
func (s *ProfileService) GetUserProfile(ctx context.Context, viewer string, idOrEmail string) (*domain.UserProfileView, error) {
	if err := domain.ValidateUserID(viewer); err != nil {
		return nil, err
	}

	profile, err := s.lookup(ctx, idOrEmail)
	if err != nil {
		return nil, err
	}

	status, err := s.status.StatusOf(ctx, viewer, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("ProfileService.GetUserProfile - failed to read connection status: %w", err)
	}

	return &domain.UserProfileView{
		ProfileSummary: domain.NewProfileSummary(*profile),
		Status:         status,
	}, nil
}

func (s *ProfileService) lookup(ctx context.Context, idOrEmail string) (*entities.Profile, error) {
	var (
		profile *entities.Profile
		err     error
	)

	// Email passa pela mesma validação: sem espaços, imprimível, UTF-8 válido
	if err := domain.ValidateUserID(idOrEmail); err != nil {
		return nil, err
	}

	if strings.Contains(idOrEmail, "@") {
		profile, err = s.profiles.GetByEmail(ctx, strings.ToLower(idOrEmail))
	} else {
		profile, err = s.profiles.GetByID(ctx, idOrEmail)
	}

	if err != nil {
		return nil, profileError("GetUserProfile", err)
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	return profile, nil
}

// ConnectionsVisibleTo aplica o gate de privacidade antes de listar as conexões de outro usuário.
func (s *ProfileService) ConnectionsVisibleTo(ctx context.Context, viewer string, owner string) error {
	if err := domain.ValidateUserID(owner); err != nil {
		return err
	}
	if viewer == owner {
		return nil
	}

	profile, err := s.profiles.GetByID(ctx, owner)
	if err != nil {
		return profileError("ConnectionsVisibleTo", err)
	}
	if profile == nil {
		return domain.ErrProfileNotFound
	}

	if !profile.RegistrationsVisibleTo(viewer) {
		return domain.ErrPrivateProfile
	}
	return nil
}

// profileError mantém ErrProfileNotFound e trata qualquer outra falha da origem como ErrStoreUnavailable.
func profileError(operation string, err error) error {
	if errors.Is(err, domain.ErrProfileNotFound) {
		return fmt.Errorf("ProfileService.%s - %w", operation, err)
	}
	return fmt.Errorf("ProfileService.%s - %w: %w", operation, domain.ErrStoreUnavailable, err)
}
