package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"furnace/pkg/contracts"
	apperrors "furnace/pkg/errors"
	"furnace/pkg/model"
)

const bookingsPath = "/api/v1/bookings"

const (
	MsgListFailed    = "Failed to load bookings."
	MsgConnectFailed = "Failed to connect to backend."
	MsgUpdateFailed  = "Update failed."
	MsgDeleteFailed  = "Delete failed."
)

// BookingClient is a BookingStore backed by a remote furnace service.
type BookingClient struct {
	httpClient *HttpClient
}

var _ contracts.BookingStore = (*BookingClient)(nil)

func NewBookingClient(baseURL string, timeout time.Duration) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *BookingClient) List(ctx context.Context, day time.Time) ([]*model.Booking, error) {
	q := url.Values{}
	q.Set("date", day.Format(model.DateLayout))

	resp, err := c.httpClient.GET(ctx, bookingsPath+"?"+q.Encode())
	if err != nil {
		return []*model.Booking{}, apperrors.Transport(MsgListFailed, err)
	}

	envelope, err := decodeEnvelope(resp, MsgListFailed)
	if err != nil {
		return []*model.Booking{}, err
	}
	if envelope.Data == nil {
		return []*model.Booking{}, nil
	}
	return envelope.Data, nil
}

func (c *BookingClient) Create(ctx context.Context, booking *model.NewBooking) (*model.Booking, error) {
	return c.write(ctx, model.CreateRequest(booking), MsgConnectFailed)
}

func (c *BookingClient) Update(ctx context.Context, update *model.BookingUpdate) (*model.Booking, error) {
	return c.write(ctx, model.UpdateRequest(update), MsgUpdateFailed)
}

func (c *BookingClient) Delete(ctx context.Context, id string) error {
	resp, err := c.httpClient.POST(ctx, bookingsPath, model.DeleteRequest(id))
	if err != nil {
		return apperrors.Transport(MsgDeleteFailed, err)
	}
	_, err = decodeEnvelope(resp, MsgDeleteFailed)
	return err
}

// Ping checks the remote service's readiness endpoint.
func (c *BookingClient) Ping(ctx context.Context) error {
	resp, err := c.httpClient.GET(ctx, "/ready")
	if err != nil {
		return apperrors.Transport(MsgConnectFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.Transport(fmt.Sprintf("backend not ready (status %d)", resp.StatusCode), nil)
	}
	return nil
}

// WaitUntilHealthy blocks until the service answers /health or maxWait
// elapses.
func (c *BookingClient) WaitUntilHealthy(ctx context.Context, maxWait time.Duration) error {
	if err := c.httpClient.WaitForHealthy(ctx, maxWait); err != nil {
		return apperrors.Transport(MsgConnectFailed, err)
	}
	return nil
}

func (c *BookingClient) write(ctx context.Context, req *model.BookingRequest, fallback string) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, bookingsPath, req)
	if err != nil {
		return nil, apperrors.Transport(fallback, err)
	}

	envelope, err := decodeEnvelope(resp, fallback)
	if err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 || envelope.Data[0] == nil {
		return nil, apperrors.Transport(fallback, fmt.Errorf("response carried no booking"))
	}
	return envelope.Data[0], nil
}

// decodeEnvelope turns a response into its envelope, or into the AppError the
// server reported. Bodies that are not envelopes count as transport failures.
func decodeEnvelope(resp *Response, fallback string) (*model.BookingResponse, error) {
	var envelope model.BookingResponse
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, apperrors.Transport(fallback, fmt.Errorf("status %d: undecodable body: %w", resp.StatusCode, err))
	}

	if envelope.Success && resp.StatusCode < http.StatusBadRequest {
		return &envelope, nil
	}

	code := envelope.Code
	if code == "" {
		code = codeForStatus(resp.StatusCode)
	}
	message := envelope.Message
	if message == "" {
		message = fallback
	}
	return nil, apperrors.FromCode(code, message, envelope.Details)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeInvalidInput
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return apperrors.CodeValidation
	case http.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	case http.StatusGatewayTimeout:
		return apperrors.CodeTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return apperrors.CodeTransport
	default:
		return apperrors.CodeInternal
	}
}
