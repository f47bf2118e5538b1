package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"socialgraph/src/domain"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ConnectionTargetRequest é o corpo de request/accept/ignore: o outro usuário da operação.
type ConnectionTargetRequest struct {
	UserID string `json:"userId" validate:"required,max=128"`
}

type StatusResponse struct {
	Status domain.ConnectionStatus `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// decodeTarget lê e valida o corpo JSON. Erros voltam como *validationError.
func decodeTarget(w http.ResponseWriter, r *http.Request) (ConnectionTargetRequest, error) {
	var request ConnectionTargetRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		return request, &validationError{message: "invalid JSON payload"}
	}

	request.UserID = strings.TrimSpace(request.UserID)
	if err := validate.Struct(request); err != nil {
		return request, &validationError{message: describeValidation(err)}
	}

	return request, nil
}

type validationError struct {
	message string
}

func (e *validationError) Error() string {
	return e.message
}

func describeValidation(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "invalid request"
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			messages = append(messages, "userId is required")
		case "max":
			messages = append(messages, fmt.Sprintf("userId must be at most %s characters", fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("userId failed %s validation", fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}
