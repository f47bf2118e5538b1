package domain

import "time"

type ConnectionEventType string

const (
	EventConnectionRequested    ConnectionEventType = "connection.requested"
	EventConnectionAccepted     ConnectionEventType = "connection.accepted"
	EventConnectionIgnored      ConnectionEventType = "connection.ignored"
	EventConnectionDisconnected ConnectionEventType = "connection.disconnected"
)

// ConnectionEvent descreve uma transição concluída no grafo de conexões.
// Actor é quem executou a operação, Subject é a outra ponta.
type ConnectionEvent struct {
	ID         string              `json:"id"`
	Type       ConnectionEventType `json:"type"`
	ActorID    string              `json:"actor_id"`
	SubjectID  string              `json:"subject_id"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// PartitionKey mantém a ordem dos eventos do mesmo par, independente de quem agiu.
func (e ConnectionEvent) PartitionKey() string {
	if e.ActorID < e.SubjectID {
		return e.ActorID + ":" + e.SubjectID
	}
	return e.SubjectID + ":" + e.ActorID
}

type ProfileEventType string

const (
	EventProfileUpdated ProfileEventType = "profile.updated"
	EventProfileDeleted ProfileEventType = "profile.deleted"
)

// ProfileEvent é publicado pelo componente dono dos perfis; aqui só invalida o cache.
type ProfileEvent struct {
	ID         string           `json:"id"`
	Type       ProfileEventType `json:"type"`
	UserID     string           `json:"user_id"`
	OccurredAt time.Time        `json:"occurred_at"`
}
