package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/service"
	"github.com/kirinyoku/padelgo/internal/service/users"
)

// @Summary  Sign up
// @Tags     auth
// @Param    req body  users.RegisterInput true "payload"
// @Success  201 {object} users.Session
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /auth/register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req users.RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svcs.Users.Register(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, sess)
	}
}

// @Summary  Sign in
// @Tags     auth
// @Param    req body  users.LoginInput true "payload"
// @Success  200 {object} users.Session
// @Failure  401 {object} ErrorResponse
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req users.LoginInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svcs.Users.Login(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, sess)
	}
}

// @Summary  Current user
// @Tags     auth
// @Security BearerAuth
// @Success  200 {object} domain.User
// @Router   /me [get]
func handleProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svcs.Users.Profile(c.Request.Context(), callerFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, u)
	}
}

// @Summary  Update profile
// @Tags     auth
// @Security BearerAuth
// @Param    req body  users.ProfileInput true "payload"
// @Success  200 {object} domain.User
// @Router   /me [patch]
func handleUpdateProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req users.ProfileInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		u, err := svcs.Users.UpdateProfile(c.Request.Context(), callerFrom(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, u)
	}
}

// @Summary  Change password
// @Tags     auth
// @Security BearerAuth
// @Param    req body  users.PasswordInput true "payload"
// @Success  204
// @Failure  401 {object} ErrorResponse "wrong current password"
// @Router   /me/password [post]
func handleChangePassword(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req users.PasswordInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if err := svcs.Users.ChangePassword(c.Request.Context(), callerFrom(c), req); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  List notifications
// @Tags     notifications
// @Security BearerAuth
// @Param    unread query bool false "unread only"
// @Param    limit  query int  false "max items"
// @Success  200 {array} domain.Notification
// @Router   /notifications [get]
func handleListNotifications(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Notifications.List(
			c.Request.Context(),
			callerFrom(c),
			c.Query("unread") == "true",
			parseIntDefault(c.Query("limit"), 0),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Mark notification read
// @Tags     notifications
// @Security BearerAuth
// @Param    id  path  int  true  "Notification ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /notifications/{id}/read [post]
func handleMarkNotificationRead(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		if err := svcs.Notifications.MarkRead(c.Request.Context(), callerFrom(c), id); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
