package http

import (
	"net/http"
	"time"

	apperrors "furnace/pkg/errors"
	"furnace/pkg/model"
)

// ExtractDate reads the required YYYY-MM-DD "date" query parameter.
func ExtractDate(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Time{}, apperrors.InvalidInput("query parameter 'date' is required (YYYY-MM-DD)")
	}
	day, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(err.Error())
	}
	return day, nil
}
