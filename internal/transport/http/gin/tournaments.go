package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/kirinyoku/padelgo/internal/service/tournaments"
)

func tournamentFilter(c *gin.Context) domain.TournamentFilter {
	f := domain.TournamentFilter{
		OrganizerID: parseInt64Default(c.Query("organizer_id"), 0),
		Limit:       parseIntDefault(c.Query("limit"), tournaments.DefaultPageSize),
		Offset:      parseIntDefault(c.Query("offset"), 0),
	}
	if v, err := strconv.ParseBool(c.Query("approved")); err == nil {
		f.Approved = &v
	}
	return f
}

// @Summary  List approved tournaments
// @Tags     tournaments
// @Param    organizer_id query int false "organizer"
// @Param    limit        query int false "page size"
// @Param    offset       query int false "offset"
// @Success  200 {array} domain.Tournament
// @Router   /tournaments [get]
func handleListTournaments(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Tournaments.List(c.Request.Context(), domain.Caller{}, tournamentFilter(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=30")
	}
}

// @Summary  List tournaments for review
// @Tags     admin
// @Security BearerAuth
// @Param    approved     query bool false "approval state"
// @Param    organizer_id query int  false "organizer"
// @Param    limit        query int  false "page size"
// @Param    offset       query int  false "offset"
// @Success  200 {array} domain.Tournament
// @Router   /admin/tournaments [get]
func handleAdminListTournaments(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Tournaments.List(c.Request.Context(), callerFrom(c), tournamentFilter(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Approve or reject a tournament
// @Tags     admin
// @Security BearerAuth
// @Param    id  path  int  true  "Tournament ID"
// @Param    req body  TournamentReviewRequest true "approve | reject"
// @Success  200 {object} domain.Tournament
// @Failure  404 {object} ErrorResponse
// @Router   /admin/tournaments/{id}/review [post]
func handleReviewTournament(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req TournamentReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tournaments.ReviewTournament(c.Request.Context(), callerFrom(c), id, req.Action, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Update tournament
// @Description An organizer's edit sends the tournament back for approval.
// @Tags     tournaments
// @Security BearerAuth
// @Param    id  path  int  true  "Tournament ID"
// @Param    req body  tournaments.CreateInput true "payload"
// @Success  200 {object} domain.Tournament
// @Failure  422 {object} ErrorResponse "already started / below registrations"
// @Router   /tournaments/{id} [put]
func handleUpdateTournament(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req tournaments.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tournaments.Update(c.Request.Context(), callerFrom(c), id, req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, t)
	}
}

// @Summary  Get tournament
// @Tags     tournaments
// @Param    id  path  int  true  "Tournament ID"
// @Success  200 {object} domain.Tournament
// @Failure  404 {object} ErrorResponse
// @Router   /tournaments/{id} [get]
func handleGetTournament(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		t, err := svcs.Tournaments.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, t, "public, max-age=30")
	}
}

// @Summary  Create tournament
// @Tags     tournaments
// @Security BearerAuth
// @Param    req body  tournaments.CreateInput true "payload"
// @Success  201 {object} domain.Tournament
// @Failure  400 {object} ErrorResponse
// @Router   /tournaments [post]
func handleCreateTournament(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tournaments.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		t, err := svcs.Tournaments.Create(c.Request.Context(), callerFrom(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, t)
	}
}

// @Summary  Register for a tournament
// @Tags     tournaments
// @Security BearerAuth
// @Param    id  path  int  true  "Tournament ID"
// @Param    req body  tournaments.RegisterInput true "payload"
// @Success  201 {object} domain.Registration
// @Failure  409 {object} ErrorResponse "already registered"
// @Failure  422 {object} ErrorResponse "registration closed / full"
// @Router   /tournaments/{id}/registrations [post]
func handleRegisterForTournament(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req tournaments.RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		reg, err := svcs.Tournaments.Register(c.Request.Context(), callerFrom(c), id, req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, reg)
	}
}

// @Summary  List tournament registrations
// @Tags     tournaments
// @Security BearerAuth
// @Param    id  path  int  true  "Tournament ID"
// @Success  200 {array} domain.Registration
// @Router   /tournaments/{id}/registrations [get]
func handleListRegistrations(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		out, err := svcs.Tournaments.ListRegistrations(c.Request.Context(), callerFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Approve or reject a registration
// @Tags     tournaments
// @Security BearerAuth
// @Param    id  path  string  true  "Registration ID (uuid)"
// @Param    req body  ReviewRequest true "approve | reject"
// @Success  200 {object} domain.Registration
// @Router   /registrations/{id}/review [post]
func handleReviewRegistration(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		reg, err := svcs.Tournaments.Review(c.Request.Context(), callerFrom(c), id, req.Action)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, reg)
	}
}

// @Summary  Attach registration payment proof
// @Tags     tournaments
// @Security BearerAuth
// @Param    id  path  string  true  "Registration ID (uuid)"
// @Param    req body  PaymentProofRequest true "payload"
// @Success  200 {object} domain.Registration
// @Router   /registrations/{id}/payment-proof [post]
func handleRegistrationProof(svcs *service.Services) gin.HandlerFunc {
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

		reg, err := svcs.Tournaments.AttachProof(c.Request.Context(), callerFrom(c), id, req.PaymentProofURL)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, reg)
	}
}
