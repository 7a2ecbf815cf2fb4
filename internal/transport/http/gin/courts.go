package httpgin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/kirinyoku/padelgo/internal/service/courts"
)

// @Summary  List courts
// @Tags     courts
// @Param    status   query string false "Available | Disabled | Maintenance"
// @Param    city     query string false "city"
// @Param    type     query string false "Indoor | Outdoor"
// @Param    surface  query string false "surface"
// @Param    featured query bool   false "featured only"
// @Param    owner_id query int    false "owner"
// @Param    limit    query int    false "page size"
// @Param    offset   query int    false "offset"
// @Success  200 {array} domain.Court
// @Router   /courts [get]
func handleListCourts(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := domain.CourtFilter{
			Status:  domain.CourtStatus(c.Query("status")),
			City:    c.Query("city"),
			Type:    domain.CourtType(c.Query("type")),
			Surface: domain.Surface(c.Query("surface")),
			OwnerID: parseInt64Default(c.Query("owner_id"), 0),
			Limit:   parseIntDefault(c.Query("limit"), courts.DefaultPageSize),
			Offset:  parseIntDefault(c.Query("offset"), 0),
		}
		if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
			f.Featured = &v
		}

		out, err := svcs.Courts.List(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, out, "public, max-age=15")
	}
}

// @Summary  Get court
// @Tags     courts
// @Param    id  path  int  true  "Court ID"
// @Success  200 {object} domain.Court
// @Failure  404 {object} ErrorResponse
// @Router   /courts/{id} [get]
func handleGetCourt(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		court, err := svcs.Courts.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, court, "public, max-age=60")
	}
}

// @Summary  Hourly availability of a court day
// @Tags     courts
// @Param    id       path  int    true  "Court ID"
// @Param    date     query string true  "YYYY-MM-DD"
// @Param    time     query string false "HH:MM, adds the verdict for this slot"
// @Param    duration query int    false "hours, with time"
// @Success  200 {object} courts.Availability
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /courts/{id}/availability [get]
func handleCourtAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		date := c.Query("date")
		if date == "" {
			badRequest(c, "date is required")
			return
		}

		av, err := svcs.Courts.Availability(
			c.Request.Context(),
			id,
			date,
			c.Query("time"),
			parseIntDefault(c.Query("duration"), domain.MinDuration),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, av, "no-cache")
	}
}

// @Summary  Create court
// @Tags     courts
// @Security BearerAuth
// @Param    req body  courts.CreateInput true "payload"
// @Success  201 {object} domain.Court
// @Failure  400 {object} ErrorResponse
// @Router   /courts [post]
func handleCreateCourt(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req courts.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		court, err := svcs.Courts.Create(c.Request.Context(), callerFrom(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, court)
	}
}

// @Summary  Change court status
// @Tags     courts
// @Security BearerAuth
// @Param    id  path  int  true  "Court ID"
// @Param    req body  CourtStatusRequest true "payload"
// @Success  200 {object} domain.Court
// @Router   /courts/{id}/status [patch]
func handleUpdateCourtStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req CourtStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		court, err := svcs.Courts.UpdateStatus(c.Request.Context(), callerFrom(c), id, domain.CourtStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, court)
	}
}

// @Summary  Feature or unfeature a court
// @Tags     admin
// @Security BearerAuth
// @Param    id  path  int  true  "Court ID"
// @Param    req body  FeaturedRequest true "payload"
// @Success  200 {object} domain.Court
// @Router   /courts/{id}/featured [patch]
func handleSetCourtFeatured(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req FeaturedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		court, err := svcs.Courts.SetFeatured(c.Request.Context(), callerFrom(c), id, *req.Featured)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, court)
	}
}

// @Summary  Delete court
// @Tags     courts
// @Security BearerAuth
// @Param    id  path  int  true  "Court ID"
// @Success  204
// @Failure  422 {object} ErrorResponse "court has active bookings"
// @Router   /courts/{id} [delete]
func handleDeleteCourt(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		if err := svcs.Courts.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
