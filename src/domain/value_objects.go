package domain

import (
	"errors"
	"time"

	"socialgraph/src/domain/entities"
)

var (
	ErrSelfConnection        = errors.New("cannot connect to yourself")
	ErrAlreadyRequested      = errors.New("connection request already sent")
	ErrAlreadyConnected      = errors.New("already connected to this user")
	ErrIncomingRequestExists = errors.New("this user has already sent you a connection request")
	ErrNoPendingRequest      = errors.New("no pending connection request found")
	ErrInvalidUserID         = errors.New("invalid user id")
	ErrProfileNotFound       = errors.New("user not found")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrPrivateProfile        = errors.New("this user's connections are private")

	// Falha de storage/transporte. A mensagem é genérica de propósito, nunca vaza o erro do driver.
	ErrStoreUnavailable = errors.New("service temporarily unavailable, please try again later")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

// ############################################################
// ################ STATUS ENTRE DOIS USUÁRIOS ################
// ############################################################

type ConnectionStatus string

const (
	StatusNone            ConnectionStatus = "none"
	StatusPendingSent     ConnectionStatus = "pending_sent"
	StatusPendingReceived ConnectionStatus = "pending_received"
	StatusConnected       ConnectionStatus = "connected"
)

// DeriveStatus calcula o status a partir das duas arestas direcionais (nil = ausente).
// Precedência: Connected (qualquer direção) > PendingSent > PendingReceived > None.
func DeriveStatus(outbound, inbound *entities.Edge) ConnectionStatus {
	if (outbound != nil && outbound.Is(entities.EdgeStateConnected)) ||
		(inbound != nil && inbound.Is(entities.EdgeStateConnected)) {
		return StatusConnected
	}
	if outbound != nil && outbound.Is(entities.EdgeStatePending) {
		return StatusPendingSent
	}
	if inbound != nil && inbound.Is(entities.EdgeStatePending) {
		return StatusPendingReceived
	}
	return StatusNone
}

// ############################################################
// ############ VISÕES DE LISTAGEM (ENRIQUECIDAS) #############
// ############################################################

// ProfileSummary é a projeção exposta nas listagens.
type ProfileSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Location    string           `json:"location"`
	Bio         string           `json:"bio"`
	MemberSince int              `json:"member_since"`
	Privacy     entities.Privacy `json:"privacy"`
}

func NewProfileSummary(p entities.Profile) ProfileSummary {
	return ProfileSummary{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Location:    p.DisplayLocation(),
		Bio:         p.Bio,
		MemberSince: p.MemberSince(),
		Privacy:     p.Privacy,
	}
}

// EnrichedEdge é uma aresta junto do perfil da contraparte.
type EnrichedEdge struct {
	Edge        entities.Edge
	Counterpart string
	Profile     ProfileSummary
}

func (e EnrichedEdge) RequestID() string {
	return e.Edge.Owner + "-" + e.Edge.Peer
}

type ConnectionView struct {
	PeerID      string         `json:"user_id"`
	ConnectedAt time.Time      `json:"connected_at"`
	State       string         `json:"status"`
	Profile     ProfileSummary `json:"user"`
}

type IncomingRequestView struct {
	RequestID   string         `json:"request_id"`
	RequesterID string         `json:"requester_id"`
	RequestedAt time.Time      `json:"requested_at"`
	State       string         `json:"status"`
	Profile     ProfileSummary `json:"user"`
}

type OutgoingRequestView struct {
	RequestID   string         `json:"request_id"`
	RecipientID string         `json:"recipient_id"`
	RequestedAt time.Time      `json:"requested_at"`
	State       string         `json:"status"`
	Profile     ProfileSummary `json:"user"`
}

type IgnoredRequestView struct {
	RequestID   string         `json:"request_id"`
	RequesterID string         `json:"requester_id"`
	RequestedAt time.Time      `json:"requested_at"`
	IgnoredAt   *time.Time     `json:"ignored_at,omitempty"`
	State       string         `json:"status"`
	Profile     ProfileSummary `json:"user"`
}

// UserProfileView é o perfil público visto por um usuário autenticado.
type UserProfileView struct {
	ProfileSummary
	Status ConnectionStatus `json:"connection_status"`
}
