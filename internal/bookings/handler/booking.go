package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"furnace/internal/bookings/service"
	"furnace/internal/bookings/validator"
	"furnace/internal/projector"
	"furnace/pkg/contracts"
	apperrors "furnace/pkg/errors"
	httputil "furnace/pkg/http"
	"furnace/pkg/logger"
	"furnace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	BookingsPath = "/api/v1/bookings"
	DayPath      = "/api/v1/bookings/day/:date"
)

type BookingHandler struct {
	store     contracts.BookingStore
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(store contracts.BookingStore, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		store:     store,
		validator: validator,
		log:       log,
	}
}

// DayView is the server-side projection of one calendar day.
type DayView struct {
	Date     string               `json:"date"`
	Bookings []*model.Booking     `json:"bookings"`
	Segments []projector.Segment  `json:"segments"`
	Grid     []projector.HourSlot `json:"grid"`
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	day, err := httputil.ExtractDate(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, err := h.store.List(r.Context(), day)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteList(w, bookings); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) Day(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	day, err := model.ParseDate(ps.ByName("date"))
	if err != nil {
		h.writeError(w, "Day", apperrors.InvalidInput(err.Error()))
		return
	}

	bookings, err := h.store.List(r.Context(), day)
	if err != nil {
		h.writeError(w, "Day", err)
		return
	}

	segments := projector.ProjectDay(day, bookings)
	view := DayView{
		Date:     day.Format(model.DateLayout),
		Bookings: bookings,
		Segments: segments,
		Grid:     projector.GridFromSegments(segments),
	}
	if err := httputil.WriteData(w, view); err != nil {
		h.log.Error("failed to write day response", "handler", "Day", "operation", "WriteData", "error", err)
	}
}

// Write routes a POST on the bookings endpoint by its action field.
func (h *BookingHandler) Write(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Write", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.validator.ValidateRequest(&req); err != nil {
		h.writeError(w, "Write", requestError(err))
		return
	}

	switch req.Action {
	case model.ActionCreate:
		h.create(w, r, &req)
	case model.ActionUpdate:
		h.update(w, r, &req)
	case model.ActionDelete:
		h.delete(w, r, &req)
	}
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request, req *model.BookingRequest) {
	booking, err := h.store.Create(r.Context(), req.NewBooking())
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, service.MsgCreated, []*model.Booking{booking}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) update(w http.ResponseWriter, r *http.Request, req *model.BookingRequest) {
	booking, err := h.store.Update(r.Context(), req.Update())
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, service.MsgUpdated, []*model.Booking{booking}); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) delete(w http.ResponseWriter, r *http.Request, req *model.BookingRequest) {
	if err := h.store.Delete(r.Context(), req.ID); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, service.MsgDeleted, nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// requestError maps envelope validation failures: a bad action is malformed
// input, anything else is a validation failure.
func requestError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Internal("Failed to validate request", err)
	}
	if _, badAction := verrs.Fields()["action"]; badAction {
		return apperrors.InvalidInput("action must be one of: CREATE, UPDATE, DELETE")
	}
	return apperrors.Validation(verrs.Summary(), verrs.Fields())
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(BookingsPath, h.List)
	router.POST(BookingsPath, h.Write)
	router.GET(DayPath, h.Day)
}
