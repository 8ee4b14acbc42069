package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents an API error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// JSONError writes an error response
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	writeResponse(w, status, Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func writeResponse(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// HandleError handles common domain errors and writes appropriate responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		JSONError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)

	case errors.Is(err, domain.ErrUnboundCollection):
		JSONError(w, http.StatusUnprocessableEntity, "UNBOUND_COLLECTION", err.Error(), nil)

	case errors.Is(err, domain.ErrDuplicateDispatch):
		JSONError(w, http.StatusConflict, "DUPLICATE_DISPATCH", "Content already announced", nil)

	case errors.Is(err, domain.ErrDeliveryFailed):
		var details map[string]string
		var deliveryErr *domain.DeliveryError
		if errors.As(err, &deliveryErr) {
			details = map[string]string{
				"kind":       deliveryErr.Kind.Label(),
				"content_id": deliveryErr.ContentID,
			}
		}
		JSONError(w, http.StatusBadGateway, "DELIVERY_FAILED", err.Error(), details)

	default:
		var validationErr domain.ValidationError
		if errors.As(err, &validationErr) {
			JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message, map[string]string{
				"field": validationErr.Field,
			})
			return
		}

		if errors.Is(err, domain.ErrInvalidInput) {
			JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}

		JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}

// DecodeJSON decodes JSON request body
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return domain.NewValidationError("body", "request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}

	return nil
}
