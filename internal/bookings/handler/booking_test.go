package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	apperrors "tms/pkg/errors"
	"tms/pkg/logger"
	"tms/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock service for testing
type mockBookingService struct {
	acceptFunc func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	cancelFunc func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingService) AcceptBid(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	return m.acceptFunc(ctx, req)
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	return m.cancelFunc(ctx, id)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	h := NewBookingHandler(svc, logger.Discard())
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func TestCreate_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"created", nil, http.StatusCreated},
		{"bid not pending", apperrors.InvalidState("Can only accept PENDING bids. Current status: ACCEPTED"), http.StatusBadRequest},
		{"capacity lost", apperrors.InsufficientCapacity("Transporter no longer has 3 Flatbed trucks available"), http.StatusBadRequest},
		{"unknown bid", apperrors.NotFoundWithID("Bid", "b-1"), http.StatusNotFound},
		{"lost race", apperrors.Conflict("Another transaction modified the transporter capacity. Please retry."), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			router := newRouter(&mockBookingService{
				acceptFunc: func(_ context.Context, req *model.BookingRequest) (*model.Booking, error) {
					received = req.BidID
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Booking{ID: "bk-1", BidID: req.BidID, Status: model.BookingConfirmed}, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(`{"bidId":"b-1"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "b-1", received)

			if tt.err == nil {
				var body struct {
					Data model.Booking `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "bk-1", body.Data.ID)
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(apperrors.AsAppError(tt.err).Code), body["code"])
		})
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(`{"bidId":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancel_NoContent(t *testing.T) {
	var cancelled string
	router := newRouter(&mockBookingService{
		cancelFunc: func(_ context.Context, id string) (*model.Booking, error) {
			cancelled = id
			return &model.Booking{ID: id, Status: model.BookingCancelled}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/booking/bk-7/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
	assert.Equal(t, "bk-7", cancelled)
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	router := newRouter(&mockBookingService{
		cancelFunc: func(context.Context, string) (*model.Booking, error) {
			return nil, apperrors.InvalidState("Booking is already cancelled.")
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/booking/bk-7/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	router := newRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/booking/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
