package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/kirinyoku/padelgo/internal/service/promos"
)

// @Summary  Create promo code
// @Tags     courts
// @Security BearerAuth
// @Param    id  path  int  true  "Court ID"
// @Param    req body  promos.CreateInput true "payload"
// @Success  201 {object} domain.PromoCode
// @Failure  409 {object} ErrorResponse "code taken"
// @Router   /courts/{id}/promo-codes [post]
func handleCreatePromoCode(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req promos.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := svcs.Promos.Create(c.Request.Context(), callerFrom(c), id, req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, p)
	}
}

// @Summary  List promo codes of a court
// @Tags     courts
// @Security BearerAuth
// @Param    id  path  int  true  "Court ID"
// @Success  200 {array} domain.PromoCode
// @Router   /courts/{id}/promo-codes [get]
func handleListPromoCodes(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		out, err := svcs.Promos.ListForCourt(c.Request.Context(), callerFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		if out == nil {
			out = []domain.PromoCode{}
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Preview a promo code
// @Tags     courts
// @Param    code  path  string true  "Promo code"
// @Param    total query int    false "booking total to discount"
// @Success  200 {object} promos.Quote
// @Failure  404 {object} ErrorResponse
// @Router   /promo-codes/{code} [get]
func handleCheckPromoCode(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := svcs.Promos.Check(c.Request.Context(), c.Param("code"), parseInt64Default(c.Query("total"), 0))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, q)
	}
}
