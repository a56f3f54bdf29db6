package model

// Action discriminates write requests on the single bookings endpoint.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// BookingRequest is the body of POST /api/v1/bookings.
type BookingRequest struct {
	Action        Action   `json:"action" validate:"required,oneof=CREATE UPDATE DELETE"`
	ID            string   `json:"id,omitempty"`
	StartDateTime DateTime `json:"startDateTime"`
	EndDateTime   DateTime `json:"endDateTime"`
	Name          string   `json:"name,omitempty"`
	Sample        string   `json:"sample,omitempty"`
	Gas           string   `json:"gas,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

func (r *BookingRequest) NewBooking() *NewBooking {
	return &NewBooking{
		StartDateTime: r.StartDateTime,
		EndDateTime:   r.EndDateTime,
		Name:          r.Name,
		Sample:        r.Sample,
		Gas:           r.Gas,
		Notes:         r.Notes,
	}
}

func (r *BookingRequest) Update() *BookingUpdate {
	return &BookingUpdate{ID: r.ID, NewBooking: *r.NewBooking()}
}

func CreateRequest(nb *NewBooking) *BookingRequest {
	return &BookingRequest{
		Action:        ActionCreate,
		StartDateTime: nb.StartDateTime,
		EndDateTime:   nb.EndDateTime,
		Name:          nb.Name,
		Sample:        nb.Sample,
		Gas:           nb.Gas,
		Notes:         nb.Notes,
	}
}

func UpdateRequest(u *BookingUpdate) *BookingRequest {
	req := CreateRequest(&u.NewBooking)
	req.Action = ActionUpdate
	req.ID = u.ID
	return req
}

func DeleteRequest(id string) *BookingRequest {
	return &BookingRequest{Action: ActionDelete, ID: id}
}

// BookingResponse is the envelope returned by every bookings endpoint.
type BookingResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Data    []*Booking     `json:"data,omitempty"`
}
