package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"tms/pkg/model"

	"github.com/cenkalti/backoff/v5"
)

const (
	LoadPath        = "/load"
	BidPath         = "/bid"
	BookingPath     = "/booking"
	TransporterPath = "/transporter"

	IdempotencyHeader = "Idempotency-Key"
)

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func (e *StatusError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

func statusError(resp *Response) *StatusError {
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	_ = resp.DecodeJSON(&body)
	return &StatusError{StatusCode: resp.StatusCode, Code: body.Code, Message: body.Error}
}

type envelope[T any] struct {
	Data T `json:"data"`
}

func decodeData[T any](resp *Response, want int) (T, error) {
	var out envelope[T]
	if resp.StatusCode != want {
		return out.Data, statusError(resp)
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return out.Data, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Data, nil
}

type LoadClient struct {
	httpClient *HttpClient
}

func NewLoadClient(baseURL string) *LoadClient {
	return &LoadClient{httpClient: NewHttpClient(baseURL)}
}

func (c *LoadClient) Create(ctx context.Context, req model.LoadRequest) (*model.Load, error) {
	resp, err := c.httpClient.POST(ctx, LoadPath, req)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Load](resp, http.StatusCreated)
}

func (c *LoadClient) Get(ctx context.Context, id string) (*model.LoadDetail, error) {
	resp, err := c.httpClient.GET(ctx, LoadPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.LoadDetail](resp, http.StatusOK)
}

func (c *LoadClient) BestBids(ctx context.Context, id string) ([]*model.RankedBid, error) {
	resp, err := c.httpClient.GET(ctx, LoadPath+"/"+url.PathEscape(id)+"/best-bids")
	if err != nil {
		return nil, err
	}
	return decodeData[[]*model.RankedBid](resp, http.StatusOK)
}

func (c *LoadClient) Cancel(ctx context.Context, id string) (*model.Load, error) {
	resp, err := c.httpClient.PATCH(ctx, LoadPath+"/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Load](resp, http.StatusOK)
}

type TransporterClient struct {
	httpClient *HttpClient
}

func NewTransporterClient(baseURL string) *TransporterClient {
	return &TransporterClient{httpClient: NewHttpClient(baseURL)}
}

func (c *TransporterClient) Register(ctx context.Context, req model.TransporterRequest) (*model.Transporter, error) {
	resp, err := c.httpClient.POST(ctx, TransporterPath, req)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Transporter](resp, http.StatusCreated)
}

func (c *TransporterClient) Get(ctx context.Context, id string) (*model.Transporter, error) {
	resp, err := c.httpClient.GET(ctx, TransporterPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Transporter](resp, http.StatusOK)
}

// UpdateTrucks replaces the transporter's free truck counts.
func (c *TransporterClient) UpdateTrucks(ctx context.Context, id string, trucks map[string]int) (*model.Transporter, error) {
	path := TransporterPath + "/" + url.PathEscape(id) + "/trucks"
	resp, err := c.httpClient.PUT(ctx, path, model.UpdateTrucksRequest{AvailableTrucks: trucks})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Transporter](resp, http.StatusOK)
}

type BidClient struct {
	httpClient *HttpClient
}

func NewBidClient(baseURL string) *BidClient {
	return &BidClient{httpClient: NewHttpClient(baseURL)}
}

func (c *BidClient) Submit(ctx context.Context, req model.BidRequest) (*model.Bid, error) {
	resp, err := c.httpClient.POST(ctx, BidPath, req)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Bid](resp, http.StatusCreated)
}

func (c *BidClient) Reject(ctx context.Context, id string) (*model.Bid, error) {
	resp, err := c.httpClient.PATCH(ctx, BidPath+"/"+url.PathEscape(id)+"/reject", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Bid](resp, http.StatusOK)
}

// RetryPolicy bounds how a caller re-runs a booking after a 409.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxTries:        5,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

type BookingClient struct {
	httpClient *HttpClient
	retry      RetryPolicy
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{httpClient: NewHttpClient(baseURL), retry: DefaultRetryPolicy}
}

func (c *BookingClient) WithRetryPolicy(p RetryPolicy) *BookingClient {
	c.retry = p
	return c
}

// AcceptBid keys the request by bid so a resend after a lost response replays
// the original 201 instead of failing on the now ACCEPTED bid.
func (c *BookingClient) AcceptBid(ctx context.Context, bidID string) (*model.Booking, error) {
	headers := map[string]string{IdempotencyHeader: "accept-" + bidID}
	resp, err := c.httpClient.POSTWithHeaders(ctx, BookingPath, model.BookingRequest{BidID: bidID}, headers)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Booking](resp, http.StatusCreated)
}

// AcceptBidWithRetry re-runs the whole acceptance while the service answers
// 409. Any other failure, including a capacity rejection, ends the loop.
func (c *BookingClient) AcceptBidWithRetry(ctx context.Context, bidID string) (*model.Booking, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval

	operation := func() (*model.Booking, error) {
		booking, err := c.AcceptBid(ctx, bidID)
		if err == nil {
			return booking, nil
		}
		var se *StatusError
		if errors.As(err, &se) && se.Conflict() {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.retry.MaxTries),
	)
}

func (c *BookingClient) Get(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, BookingPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Booking](resp, http.StatusOK)
}

func (c *BookingClient) Cancel(ctx context.Context, id string) error {
	resp, err := c.httpClient.PATCH(ctx, BookingPath+"/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	return nil
}
