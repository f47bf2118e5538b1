package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"socialgraph/src/domain"
	"socialgraph/src/repositories"

	"go.uber.org/zap"
)

const (
	codeSelfConnection        = "SELF_CONNECTION"
	codeInvalidUserID         = "INVALID_USER_ID"
	codeValidation            = "VALIDATION_ERROR"
	codeAlreadyRequested      = "ALREADY_REQUESTED"
	codeAlreadyConnected      = "ALREADY_CONNECTED"
	codeIncomingRequestExists = "INCOMING_REQUEST_EXISTS"
	codeNoPendingRequest      = "NO_PENDING_REQUEST"
	codeProfileNotFound       = "PROFILE_NOT_FOUND"
	codePrivateProfile        = "PRIVATE_PROFILE"
	codeUnauthenticated       = "UNAUTHENTICATED"
	codeRateLimited           = "RATE_LIMITED"
	codeStoreUnavailable      = "STORE_UNAVAILABLE"
	codeInternal              = "INTERNAL_ERROR"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrSelfConnection, http.StatusBadRequest, codeSelfConnection},
	{domain.ErrInvalidUserID, http.StatusBadRequest, codeInvalidUserID},
	{domain.ErrAlreadyRequested, http.StatusConflict, codeAlreadyRequested},
	{domain.ErrAlreadyConnected, http.StatusConflict, codeAlreadyConnected},
	{domain.ErrIncomingRequestExists, http.StatusConflict, codeIncomingRequestExists},
	{domain.ErrNoPendingRequest, http.StatusNotFound, codeNoPendingRequest},
	{domain.ErrProfileNotFound, http.StatusNotFound, codeProfileNotFound},
	{domain.ErrPrivateProfile, http.StatusForbidden, codePrivateProfile},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, codeUnauthenticated},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
	{repositories.ErrProfileSourceUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
}

// writeError traduz o erro para status + código estável. Falhas de storage nunca vazam o detalhe do driver.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *validationError
	if errors.As(err, &invalid) {
		writeErrorBody(w, http.StatusBadRequest, codeValidation, invalid.message)
		return
	}

	for _, mapping := range errorMappings {
		if !errors.Is(err, mapping.target) {
			continue
		}

		if mapping.status == http.StatusServiceUnavailable {
			s.logger.Error("store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
			writeErrorBody(w, mapping.status, mapping.code, domain.ErrStoreUnavailable.Error())
			return
		}

		writeErrorBody(w, mapping.status, mapping.code, mapping.target.Error())
		return
	}

	s.logger.Error("unexpected error", zap.String("path", r.URL.Path), zap.Error(err))
	writeErrorBody(w, http.StatusInternalServerError, codeInternal, domain.ErrUnavailableServer.Error())
}

func writeErrorBody(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Cabeçalho já foi enviado, não há o que fazer com o erro além de descartar
	_ = json.NewEncoder(w).Encode(body)
}
