package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/auth"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type harness struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
	tokens *auth.Issuer
}

func newHarness(t *testing.T, idem *redisrepo.IdempotencyStore) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	tokens := auth.NewIssuer("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svcs := service.NewServices(service.Deps{
		Store:  store,
		Clock:  fixedClock{t: time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)},
		Tokens: tokens,
		Logger: logger,
	}, service.Config{BcryptCost: bcrypt.MinCost})

	return &harness{
		t:      t,
		router: NewRouter(svcs, tokens, idem, logger),
		store:  store,
		tokens: tokens,
	}
}

func (h *harness) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) signup(email string, role domain.Role) string {
	h.t.Helper()
	w := h.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": email, "email": email, "password": "password123", "role": role,
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(h.t, w, &resp)
	return resp.Token
}

func (h *harness) admin() string {
	h.t.Helper()
	u := &domain.User{Name: "root", Email: "root@example.com", Role: domain.RoleAdmin}
	require.NoError(h.t, h.store.Users().Create(context.Background(), u))
	tok, err := h.tokens.Issue(u)
	require.NoError(h.t, err)
	return tok
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	decode(t, w, &e)
	return e.Code
}

func TestBookingFlow(t *testing.T) {
	h := newHarness(t, nil)

	owner := h.signup("owner@example.com", domain.RoleOwner)
	player := h.signup("player@example.com", domain.RolePlayer)
	rival := h.signup("rival@example.com", domain.RolePlayer)
	admin := h.admin()

	w := h.do(http.MethodPost, "/courts", player, map[string]any{"name": "C", "location": "L", "price_per_hour": 3000})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, "/courts", owner, map[string]any{"name": "Center", "location": "Lahore", "price_per_hour": 3000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var court domain.Court
	decode(t, w, &court)

	courtPath := "/courts/" + itoa(court.ID)
	w = h.do(http.MethodGet, courtPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = h.do(http.MethodGet, courtPath, "", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	hold := map[string]any{"court_id": court.ID, "date": "2025-06-01", "time": "18:00", "duration": 2}

	w = h.do(http.MethodPost, "/bookings", "", hold)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/bookings", player, hold)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b domain.Booking
	decode(t, w, &b)
	assert.Equal(t, domain.BookingHold, b.Status)
	assert.Equal(t, int64(6000), b.TotalAmount)
	require.NotNil(t, b.HoldExpiresAt)

	w = h.do(http.MethodPost, "/bookings", rival, map[string]any{"court_id": court.ID, "date": "2025-06-01", "time": "19:00"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "slot_taken", errCode(t, w))

	w = h.do(http.MethodGet, courtPath+"/availability?date=2025-06-01&time=19:00", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var av struct {
		Requested struct {
			Available bool   `json:"available"`
			Code      string `json:"code"`
		} `json:"requested"`
	}
	decode(t, w, &av)
	assert.False(t, av.Requested.Available)
	assert.Equal(t, "slot_taken", av.Requested.Code)

	bookingPath := "/bookings/" + b.ID.String()

	w = h.do(http.MethodGet, bookingPath, rival, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodGet, bookingPath, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodPost, bookingPath+"/payment-proof", player, map[string]any{"payment_proof_url": "https://proofs/1.png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &b)
	assert.Equal(t, domain.BookingPendingVerification, b.Status)

	w = h.do(http.MethodPost, "/admin"+bookingPath+"/verify", player, map[string]any{"action": "approve"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, "/admin"+bookingPath+"/verify", admin, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &b)
	assert.Equal(t, domain.BookingConfirmed, b.Status)

	w = h.do(http.MethodPost, "/admin"+bookingPath+"/verify", admin, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "not_pending_verification", errCode(t, w))

	w = h.do(http.MethodPost, bookingPath+"/cancel", player, map[string]any{"reason": "rain"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &b)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	assert.Equal(t, int64(6000), b.RefundAmount, "33 hours ahead refunds in full")

	w = h.do(http.MethodGet, "/bookings?mine=true", player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	w = h.do(http.MethodGet, "/notifications?unread=true", player, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []domain.Notification
	decode(t, w, &notes)
	assert.NotEmpty(t, notes)

	w = h.do(http.MethodPost, "/notifications/"+itoa(notes[0].ID)+"/read", rival, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = h.do(http.MethodPost, "/notifications/"+itoa(notes[0].ID)+"/read", player, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t, nil)

	h.signup("a@example.com", domain.RolePlayer)

	w := h.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": "a", "email": "A@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", errCode(t, w))

	w = h.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "a@example.com", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "a@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var sess struct {
		Token string `json:"token"`
	}
	decode(t, w, &sess)

	w = h.do(http.MethodGet, "/me", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = h.do(http.MethodGet, "/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBadRequests(t *testing.T) {
	h := newHarness(t, nil)
	player := h.signup("p@example.com", domain.RolePlayer)

	w := h.do(http.MethodGet, "/bookings/not-a-uuid", player, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/bookings", player, map[string]any{"court_id": 1, "date": "tomorrow", "time": "18:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/bookings", player, map[string]any{"court_id": 999, "date": "2025-06-01", "time": "18:00"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "court_not_found", errCode(t, w))

	w = h.do(http.MethodGet, "/courts/1/availability", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTournamentEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	org := h.signup("org@example.com", domain.RoleOrganizer)
	player := h.signup("p@example.com", domain.RolePlayer)
	admin := h.admin()

	w := h.do(http.MethodPost, "/tournaments", org, map[string]any{
		"title":                 "Open",
		"location":              "Lahore",
		"start_date":            "2025-06-20T09:00:00Z",
		"registration_deadline": "2025-06-10T00:00:00Z",
		"entry_fee":             5000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tr domain.Tournament
	decode(t, w, &tr)
	assert.False(t, tr.Approved)

	regPath := "/tournaments/" + itoa(tr.ID) + "/registrations"
	body := map[string]any{"name": "P", "email": "p@example.com", "phone": "0300"}

	w = h.do(http.MethodPost, regPath, player, body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "tournament_not_approved", errCode(t, w))

	w = h.do(http.MethodGet, "/tournaments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	reviewPath := "/admin/tournaments/" + itoa(tr.ID) + "/review"
	w = h.do(http.MethodPost, reviewPath, org, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodGet, "/admin/tournaments?approved=false", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []domain.Tournament
	decode(t, w, &pending)
	require.Len(t, pending, 1)

	w = h.do(http.MethodPost, reviewPath, admin, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &tr)
	assert.True(t, tr.Approved)

	w = h.do(http.MethodPost, regPath, player, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg domain.Registration
	decode(t, w, &reg)

	w = h.do(http.MethodPost, regPath, player, body)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_registered", errCode(t, w))

	w = h.do(http.MethodGet, regPath, player, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, "/registrations/"+reg.ID.String()+"/review", org, map[string]any{"action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &reg)
	assert.Equal(t, domain.RegistrationConfirmed, reg.Status)

	w = h.do(http.MethodPut, "/tournaments/"+itoa(tr.ID), org, map[string]any{
		"title":                 "Open (moved)",
		"location":              "Karachi",
		"start_date":            "2025-06-21T09:00:00Z",
		"registration_deadline": "2025-06-10T00:00:00Z",
		"entry_fee":             5000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &tr)
	assert.False(t, tr.Approved)

	w = h.do(http.MethodGet, "/tournaments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestPromoCodeEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	owner := h.signup("owner@example.com", domain.RoleOwner)
	player := h.signup("player@example.com", domain.RolePlayer)

	w := h.do(http.MethodPost, "/courts", owner, map[string]any{"name": "Center", "location": "Lahore", "price_per_hour": 3000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var court domain.Court
	decode(t, w, &court)

	promoPath := "/courts/" + itoa(court.ID) + "/promo-codes"
	promo := map[string]any{
		"code":           "june25",
		"discount_type":  "percentage",
		"discount_value": 25,
		"starts_at":      "2025-05-01T00:00:00Z",
		"ends_at":        "2025-07-01T00:00:00Z",
		"usage_limit":    1,
	}

	w = h.do(http.MethodPost, promoPath, player, promo)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, promoPath, owner, promo)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodPost, promoPath, owner, promo)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "promo_code_taken", errCode(t, w))

	w = h.do(http.MethodGet, "/promo-codes/JUNE25?total=3000", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"code":"JUNE25","court_id":`+itoa(court.ID)+`,"total":3000,"discount":750,"final_amount":2250,"remaining_uses":1}`, w.Body.String())

	hold := map[string]any{"court_id": court.ID, "date": "2025-06-01", "time": "18:00", "promo_code": "june25"}
	w = h.do(http.MethodPost, "/bookings", player, hold)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b domain.Booking
	decode(t, w, &b)
	assert.Equal(t, int64(2250), b.TotalAmount)
	assert.Equal(t, int64(750), b.DiscountAmount)

	hold["time"] = "19:00"
	w = h.do(http.MethodPost, "/bookings", player, hold)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "promo_exhausted", errCode(t, w))

	w = h.do(http.MethodGet, "/promo-codes/JUNE25", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, promoPath, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var codes []domain.PromoCode
	decode(t, w, &codes)
	require.Len(t, codes, 1)
	assert.Equal(t, 1, codes[0].UsedCount)
}

func TestProfileEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	player := h.signup("p@example.com", domain.RolePlayer)

	w := h.do(http.MethodPatch, "/me", player, map[string]any{"phone": "0300 1234567"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u domain.User
	decode(t, w, &u)
	assert.Equal(t, "0300 1234567", u.Phone)

	w = h.do(http.MethodPost, "/me/password", player, map[string]any{
		"current_password": "wrong-password", "new_password": "password456",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "wrong_password", errCode(t, w))

	w = h.do(http.MethodPost, "/me/password", player, map[string]any{
		"current_password": "password123", "new_password": "password456",
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "p@example.com", "password": "password456"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateBooking_Idempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := newHarness(t, redisrepo.NewIdempotencyStore(rdb, time.Hour))
	owner := h.signup("owner@example.com", domain.RoleOwner)
	player := h.signup("player@example.com", domain.RolePlayer)

	w := h.do(http.MethodPost, "/courts", owner, map[string]any{"name": "C", "location": "L", "price_per_hour": 100})
	require.Equal(t, http.StatusCreated, w.Code)
	var court domain.Court
	decode(t, w, &court)

	hold := map[string]any{"court_id": court.ID, "date": "2025-06-01", "time": "10:00"}

	first := h.do(http.MethodPost, "/bookings", player, hold, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, "k1", first.Header().Get("Idempotency-Key"))

	second := h.do(http.MethodPost, "/bookings", player, hold, "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	third := h.do(http.MethodPost, "/bookings", player, hold, "Idempotency-Key", "k2")
	assert.Equal(t, http.StatusConflict, third.Code, "a new key is a new attempt")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
