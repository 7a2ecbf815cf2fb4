package httpgin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/padelgo/internal/auth"
	"github.com/kirinyoku/padelgo/internal/domain"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// authenticated caller on the context.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			abortJSON(c, http.StatusUnauthorized, "missing bearer token", "unauthorized")
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "invalid token", "unauthorized")
			return
		}

		caller, err := claims.Caller()
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "invalid token", "unauthorized")
			return
		}

		c.Set(ctxCaller, caller)
		c.Next()
	}
}

// RequireRole must run after JWTAuth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := allowed[callerFrom(c).Role]; !ok {
			abortJSON(c, http.StatusForbidden, "access denied", "forbidden")
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) domain.Caller {
	v, _ := c.Get(ctxCaller)
	caller, _ := v.(domain.Caller)
	return caller
}

func abortJSON(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}
