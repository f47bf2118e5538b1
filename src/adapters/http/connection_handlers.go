package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) RequestConnection(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	request, err := decodeTarget(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.connections.RequestConnection(r.Context(), caller, request.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "connection request sent"})
}

func (s *Server) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	request, err := decodeTarget(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.connections.AcceptConnection(r.Context(), caller, request.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "connection accepted"})
}

func (s *Server) IgnoreConnection(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	request, err := decodeTarget(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.connections.IgnoreConnection(r.Context(), caller, request.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "connection request ignored"})
}

func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	if err := s.connections.Disconnect(r.Context(), caller, chi.URLParam(r, "userId")); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "connection removed"})
}

func (s *Server) ListConnections(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	views, err := s.connections.ListConnections(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewListResponse(views))
}

func (s *Server) ListPending(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	views, err := s.connections.ListPending(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewListResponse(views))
}

func (s *Server) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	views, err := s.connections.ListOutgoing(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewListResponse(views))
}

func (s *Server) ListIgnored(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	views, err := s.connections.ListIgnored(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewListResponse(views))
}

func (s *Server) GetConnectionStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	status, err := s.connections.StatusOf(r.Context(), caller, chi.URLParam(r, "userId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}
