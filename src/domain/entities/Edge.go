package entities

import "time"

type EdgeState string

const (
	EdgeStatePending   EdgeState = "pending"
	EdgeStateConnected EdgeState = "connected"
	EdgeStateIgnored   EdgeState = "ignored"
)

func (s EdgeState) Valid() bool {
	switch s {
	case EdgeStatePending, EdgeStateConnected, EdgeStateIgnored:
		return true
	}
	return false
}

// É a "aresta" direcionada: Owner afirma algo sobre Peer.
// A chave primária é o par ordenado (Owner, Peer).
type Edge struct {
	Owner     string    `json:"owner_id"`
	Peer      string    `json:"peer_id"`
	State     EdgeState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	// Nil até a primeira transição de estado.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// LastChangedAt retorna UpdatedAt quando presente, senão CreatedAt.
func (e Edge) LastChangedAt() time.Time {
	if e.UpdatedAt != nil && !e.UpdatedAt.IsZero() {
		return *e.UpdatedAt
	}
	return e.CreatedAt
}

func (e Edge) Is(state EdgeState) bool {
	return e.State == state
}
