package connections

import (
	"context"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

const (
	ViewConnections = "connections"
	ViewPending     = "pending"
	ViewOutgoing    = "outgoing"
	ViewIgnored     = "ignored"
)

func peerOf(edge entities.Edge) string  { return edge.Peer }
func ownerOf(edge entities.Edge) string { return edge.Owner }
func createdAtOf(edge entities.Edge) time.Time {
	return edge.CreatedAt
}

// ListConnections lista as conexões do usuário, mais recentes primeiro.
// connectedAt é o momento do aceite: UpdatedAt da aresta do solicitante, CreatedAt da aresta reversa.
//
// Junta as arestas Connected de saída com as de entrada (índice reverso) para que uma conexão
// assimétrica, deixada por um Accept interrompido, continue aparecendo para os dois lados.
func (s *ConnectionService) ListConnections(ctx context.Context, user string) (views []domain.ConnectionView, err error) {
	defer func() { s.record("list_connections", err) }()

	if err := domain.ValidateUserID(user); err != nil {
		return nil, err
	}

	outbound, err := s.edges.QueryByOwner(ctx, user, entities.EdgeStateConnected)
	if err != nil {
		return nil, storeError("ListConnections", err)
	}

	inbound, err := s.reverse.QueryByPeer(ctx, user, entities.EdgeStateConnected)
	if err != nil {
		return nil, storeError("ListConnections", err)
	}

	// Normaliza tudo como user->peer; a aresta própria tem prioridade
	byPeer := make(map[string]entities.Edge, len(outbound)+len(inbound))
	for _, edge := range outbound {
		byPeer[edge.Peer] = edge
	}
	for _, edge := range inbound {
		if _, ok := byPeer[edge.Owner]; ok {
			continue
		}
		byPeer[edge.Owner] = entities.Edge{
			Owner:     user,
			Peer:      edge.Owner,
			State:     entities.EdgeStateConnected,
			CreatedAt: edge.LastChangedAt(),
		}
	}

	edges := make([]entities.Edge, 0, len(byPeer))
	for _, edge := range byPeer {
		edges = append(edges, edge)
	}

	enriched, err := s.enricher.Enrich(ctx, ViewConnections, edges, peerOf, entities.Edge.LastChangedAt)
	if err != nil {
		return nil, storeError("ListConnections", err)
	}

	views = make([]domain.ConnectionView, 0, len(enriched))
	for _, item := range enriched {
		views = append(views, domain.ConnectionView{
			PeerID:      item.Counterpart,
			ConnectedAt: item.Edge.LastChangedAt(),
			State:       string(item.Edge.State),
			Profile:     item.Profile,
		})
	}

	return views, nil
}

// ListPending lista os pedidos recebidos ainda pendentes. Ignorados ficam de fora.
func (s *ConnectionService) ListPending(ctx context.Context, user string) (views []domain.IncomingRequestView, err error) {
	defer func() { s.record("list_pending", err) }()

	if err := domain.ValidateUserID(user); err != nil {
		return nil, err
	}

	edges, err := s.reverse.QueryByPeer(ctx, user, entities.EdgeStatePending)
	if err != nil {
		return nil, storeError("ListPending", err)
	}

	enriched, err := s.enricher.Enrich(ctx, ViewPending, edges, ownerOf, createdAtOf)
	if err != nil {
		return nil, storeError("ListPending", err)
	}

	views = make([]domain.IncomingRequestView, 0, len(enriched))
	for _, item := range enriched {
		views = append(views, domain.IncomingRequestView{
			RequestID:   item.RequestID(),
			RequesterID: item.Counterpart,
			RequestedAt: item.Edge.CreatedAt,
			State:       string(item.Edge.State),
			Profile:     item.Profile,
		})
	}

	return views, nil
}

// ListOutgoing lista os pedidos enviados pelo usuário que não viraram conexão (pendentes ou ignorados).
func (s *ConnectionService) ListOutgoing(ctx context.Context, user string) (views []domain.OutgoingRequestView, err error) {
	defer func() { s.record("list_outgoing", err) }()

	if err := domain.ValidateUserID(user); err != nil {
		return nil, err
	}

	edges, err := s.edges.QueryByOwner(ctx, user, entities.EdgeStatePending, entities.EdgeStateIgnored)
	if err != nil {
		return nil, storeError("ListOutgoing", err)
	}

	enriched, err := s.enricher.Enrich(ctx, ViewOutgoing, edges, peerOf, createdAtOf)
	if err != nil {
		return nil, storeError("ListOutgoing", err)
	}

	views = make([]domain.OutgoingRequestView, 0, len(enriched))
	for _, item := range enriched {
		views = append(views, domain.OutgoingRequestView{
			RequestID:   item.RequestID(),
			RecipientID: item.Counterpart,
			RequestedAt: item.Edge.CreatedAt,
			State:       string(item.Edge.State),
			Profile:     item.Profile,
		})
	}

	return views, nil
}

// ListIgnored lista os pedidos recebidos que o usuário ignorou, ordenados pela data em que foram ignorados.
func (s *ConnectionService) ListIgnored(ctx context.Context, user string) (views []domain.IgnoredRequestView, err error) {
	defer func() { s.record("list_ignored", err) }()

	if err := domain.ValidateUserID(user); err != nil {
		return nil, err
	}

	edges, err := s.reverse.QueryByPeer(ctx, user, entities.EdgeStateIgnored)
	if err != nil {
		return nil, storeError("ListIgnored", err)
	}

	enriched, err := s.enricher.Enrich(ctx, ViewIgnored, edges, ownerOf, entities.Edge.LastChangedAt)
	if err != nil {
		return nil, storeError("ListIgnored", err)
	}

	views = make([]domain.IgnoredRequestView, 0, len(enriched))
	for _, item := range enriched {
		views = append(views, domain.IgnoredRequestView{
			RequestID:   item.RequestID(),
			RequesterID: item.Counterpart,
			RequestedAt: item.Edge.CreatedAt,
			IgnoredAt:   item.Edge.UpdatedAt,
			State:       string(item.Edge.State),
			Profile:     item.Profile,
		})
	}

	return views, nil
}
