package httpgin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/padelgo/internal/domain"
	redisrepo "github.com/kirinyoku/padelgo/internal/repository/redis"
	"github.com/kirinyoku/padelgo/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires every HTTP route. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewRouter(
	svcs *service.Services,
	tokens TokenParser,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
	})

	authn := JWTAuth(tokens)
	admin := RequireRole(domain.RoleAdmin)

	// accounts
	r.POST("/auth/register", handleRegister(svcs))
	r.POST("/auth/login", handleLogin(svcs))
	r.GET("/me", authn, handleProfile(svcs))
	r.PATCH("/me", authn, handleUpdateProfile(svcs))
	r.POST("/me/password", authn, handleChangePassword(svcs))

	// courts
	r.GET("/courts", handleListCourts(svcs))
	r.GET("/courts/:id", handleGetCourt(svcs))
	r.GET("/courts/:id/availability", handleCourtAvailability(svcs))
	courts := r.Group("/courts", authn)
	{
		courts.POST("", RequireRole(domain.RoleOwner, domain.RoleAdmin), handleCreateCourt(svcs))
		courts.PATCH("/:id/status", RequireRole(domain.RoleOwner, domain.RoleAdmin), handleUpdateCourtStatus(svcs))
		courts.PATCH("/:id/featured", admin, handleSetCourtFeatured(svcs))
		courts.DELETE("/:id", RequireRole(domain.RoleOwner, domain.RoleAdmin), handleDeleteCourt(svcs))
		courts.POST("/:id/promo-codes", RequireRole(domain.RoleOwner, domain.RoleAdmin), handleCreatePromoCode(svcs))
		courts.GET("/:id/promo-codes", RequireRole(domain.RoleOwner, domain.RoleAdmin), handleListPromoCodes(svcs))
	}
	r.GET("/promo-codes/:code", handleCheckPromoCode(svcs))

	// bookings
	bookings := r.Group("/bookings", authn)
	{
		bookings.POST("", handleCreateBooking(svcs, idem))
		bookings.GET("", handleListBookings(svcs))
		bookings.GET("/stats", handleBookingStats(svcs))
		bookings.GET("/:id", handleGetBooking(svcs))
		bookings.POST("/:id/payment-proof", handleAttachProof(svcs))
		bookings.POST("/:id/cancel", handleCancelBooking(svcs))
	}

	// tournaments
	r.GET("/tournaments", handleListTournaments(svcs))
	r.GET("/tournaments/:id", handleGetTournament(svcs))
	tournaments := r.Group("/tournaments", authn)
	{
		tournaments.POST("", RequireRole(domain.RoleOrganizer, domain.RoleAdmin), handleCreateTournament(svcs))
		tournaments.PUT("/:id", RequireRole(domain.RoleOrganizer, domain.RoleAdmin), handleUpdateTournament(svcs))
		tournaments.POST("/:id/registrations", handleRegisterForTournament(svcs))
		tournaments.GET("/:id/registrations", RequireRole(domain.RoleOrganizer, domain.RoleAdmin), handleListRegistrations(svcs))
	}
	registrations := r.Group("/registrations", authn)
	{
		registrations.POST("/:id/review", RequireRole(domain.RoleOrganizer, domain.RoleAdmin), handleReviewRegistration(svcs))
		registrations.POST("/:id/payment-proof", handleRegistrationProof(svcs))
	}

	// notifications
	notifications := r.Group("/notifications", authn)
	{
		notifications.GET("", handleListNotifications(svcs))
		notifications.POST("/:id/read", handleMarkNotificationRead(svcs))
	}

	// admin
	adm := r.Group("/admin", authn, admin)
	{
		adm.POST("/bookings", handleAdminCreateBooking(svcs))
		adm.POST("/bookings/:id/verify", handleVerifyBooking(svcs))
		adm.POST("/bookings/:id/complete", handleCompleteBooking(svcs))
		adm.DELETE("/bookings/:id", handleDeleteBooking(svcs))
		adm.GET("/tournaments", handleAdminListTournaments(svcs))
		adm.POST("/tournaments/:id/review", handleReviewTournament(svcs))
	}

	return r
}

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseInt64Default(s string, def int64) int64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}
