package entities

import "time"

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

const DefaultLocation = "Seattle, WA"

// Projeção leve do usuário, o dono dos dados é o componente de perfil.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Location  string    `json:"location"`
	Bio       string    `json:"bio"`
	Privacy   Privacy   `json:"privacy"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Profile) MemberSince() int {
	if p.CreatedAt.IsZero() {
		return time.Now().Year()
	}
	return p.CreatedAt.Year()
}

func (p Profile) DisplayLocation() string {
	if p.Location == "" {
		return DefaultLocation
	}
	return p.Location
}

// RegistrationsVisibleTo é o gate de privacidade usado pelas listagens de inscrições.
func (p Profile) RegistrationsVisibleTo(viewerID string) bool {
	return p.Privacy != PrivacyPrivate || p.ID == viewerID
}
