package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetUserProfile aceita id ou email no path.
func (s *Server) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	view, err := s.profiles.GetUserProfile(r.Context(), caller, chi.URLParam(r, "userId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) ListUserConnections(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	owner := chi.URLParam(r, "userId")

	if err := s.profiles.ConnectionsVisibleTo(r.Context(), caller, owner); err != nil {
		s.writeError(w, r, err)
		return
	}

	views, err := s.connections.ListConnections(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewListResponse(views))
}
