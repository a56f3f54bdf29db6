package http

import (
	"encoding/json"
	"net/http"

	apperrors "furnace/pkg/errors"
	"furnace/pkg/model"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a failure envelope. Errors that are not AppErrors are
// reported as internal without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), model.BookingResponse{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, message string, data []*model.Booking) error {
	return WriteJSON(w, http.StatusOK, model.BookingResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WriteCreated(w http.ResponseWriter, message string, data []*model.Booking) error {
	return WriteJSON(w, http.StatusCreated, model.BookingResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

type listResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    []*model.Booking `json:"data"`
}

// WriteList always emits a data array, empty rather than absent.
func WriteList(w http.ResponseWriter, data []*model.Booking) error {
	if data == nil {
		data = []*model.Booking{}
	}
	return WriteJSON(w, http.StatusOK, listResponse{Success: true, Data: data})
}

// WriteData writes an arbitrary success payload under "data".
func WriteData(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}
