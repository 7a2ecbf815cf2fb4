package httpgin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/domain"
	redisx "github.com/kirinyoku/padelgo/internal/redis"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/kirinyoku/padelgo/internal/service/booking"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	idemLockTTL          = 60 * time.Second
)

// @Summary  Create booking hold (idempotent)
// @Tags     bookings
// @Security BearerAuth
// @Param    Idempotency-Key header string false "replay key"
// @Param    req body  booking.CreateInput true "payload"
// @Success  201 {object} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "court not found"
// @Failure  409 {object} ErrorResponse "slot taken / idempotency key in progress"
// @Failure  422 {object} ErrorResponse "court unavailable / outside hours"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /bookings [post]
func handleCreateBooking(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req booking.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()
		caller := callerFrom(c)

		idemKey := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisx.KeyIdemBooking(caller.UserID, idemKey)

			if replay(c, idem, idemStorageKey, idemKey) {
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if replay(c, idem, idemStorageKey, idemKey) {
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress", Code: "idempotency_in_progress"})
				return
			}
		}

		b, err := svcs.Bookings.CreateHold(ctx, caller, req)
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" {
			payload, _ := json.Marshal(b)
			_ = idem.SaveResult(ctx, idemStorageKey, string(payload))
			c.Header(headerIdempotencyKey, idemKey)
		}

		c.JSON(http.StatusCreated, b)
	}
}

func replay(c *gin.Context, idem *redisrepo.IdempotencyStore, storageKey, idemKey string) bool {
	payload, ok, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !ok {
		return false
	}

	c.Header(headerIdempotencyKey, idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))

	return true
}

// @Summary  List bookings visible to the caller
// @Tags     bookings
// @Security BearerAuth
// @Param    mine     query bool   false "only the caller's own bookings"
// @Param    status   query string false "status"
// @Param    court_id query int    false "court"
// @Param    date     query string false "YYYY-MM-DD"
// @Param    limit    query int    false "page size"
// @Param    offset   query int    false "offset"
// @Success  200 {object} booking.Page
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, f := bookingQuery(c)
		f.Limit = parseIntDefault(c.Query("limit"), booking.DefaultPageSize)
		f.Offset = parseIntDefault(c.Query("offset"), 0)

		page, err := svcs.Bookings.List(c.Request.Context(), scope, f)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

// @Summary  Booking counts and amounts per status
// @Tags     bookings
// @Security BearerAuth
// @Success  200 {object} domain.BookingStats
// @Router   /bookings/stats [get]
func handleBookingStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, f := bookingQuery(c)

		stats, err := svcs.Bookings.Stats(c.Request.Context(), scope, f)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func bookingQuery(c *gin.Context) (domain.Scope, domain.BookingFilter) {
	caller := callerFrom(c)

	scope := domain.ScopeFor(caller)
	if c.Query("mine") == "true" {
		scope = domain.OwnScope(caller)
	}

	return scope, domain.BookingFilter{
		Status:  domain.BookingStatus(c.Query("status")),
		CourtID: parseInt64Default(c.Query("court_id"), 0),
		Date:    c.Query("date"),
	}
}

// @Summary  Get booking
// @Tags     bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Bookings.Get(c.Request.Context(), callerFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Attach payment proof to a hold
// @Tags     bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  PaymentProofRequest true "payload"
// @Success  200 {object} domain.Booking
// @Failure  404 {object} ErrorResponse "not found or not modifiable"
// @Failure  422 {object} ErrorResponse "hold expired"
// @Router   /bookings/{id}/payment-proof [post]
func handleAttachProof(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req PaymentProofRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Bookings.AttachProof(c.Request.Context(), callerFrom(c), id, req.PaymentProofURL)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Cancel a confirmed booking
// @Tags     bookings
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  CancelRequest false "payload"
// @Success  200 {object} domain.Booking
// @Failure  404 {object} ErrorResponse
// @Failure  422 {object} ErrorResponse "not cancellable"
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req CancelRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		b, err := svcs.Bookings.Cancel(c.Request.Context(), callerFrom(c), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Create a confirmed booking on behalf of a user
// @Tags     admin
// @Security BearerAuth
// @Param    req body  booking.AdminCreateInput true "payload"
// @Success  201 {object} domain.Booking
// @Failure  409 {object} ErrorResponse "slot taken"
// @Router   /admin/bookings [post]
func handleAdminCreateBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req booking.AdminCreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Bookings.AdminCreate(c.Request.Context(), callerFrom(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  Approve or reject a payment proof
// @Tags     admin
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Param    req body  VerifyRequest true "approve | reject"
// @Success  200 {object} domain.Booking
// @Failure  400 {object} ErrorResponse "invalid action"
// @Failure  422 {object} ErrorResponse "not pending verification"
// @Router   /admin/bookings/{id}/verify [post]
func handleVerifyBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		b, err := svcs.Bookings.Verify(c.Request.Context(), callerFrom(c), id, req.Action)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Mark a confirmed booking as played
// @Tags     admin
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200 {object} domain.Booking
// @Router   /admin/bookings/{id}/complete [post]
func handleCompleteBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Bookings.Complete(c.Request.Context(), callerFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Delete a booking
// @Tags     admin
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  204
// @Router   /admin/bookings/{id} [delete]
func handleDeleteBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		if err := svcs.Bookings.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
