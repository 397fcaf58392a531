package middleware

import (
	"errors"
	"net/http"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/policy"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// SessionLoader attaches the session named by the cookie, if any, to the
// request context. It never rejects a request.
func SessionLoader(store session.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(sessionContextKey, sess)
		case errors.Is(err, session.ErrSessionNotFound):
			// Stale cookie: treat as anonymous.
		default:
			logger.Log.Warn("Session lookup failed, continuing anonymously",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}

		c.Next()
	}
}

// CurrentSession returns the session loaded by SessionLoader, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// SetSession attaches sess to the request context.
func SetSession(c *gin.Context, sess *session.Session) {
	c.Set(sessionContextKey, sess)
}

// RequireLogin aborts with 401 when no session is attached.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.RequireLogin(CurrentSession(c)); err != nil {
			abortWith(c, err)
			return
		}
		c.Next()
	}
}

// RequireRole aborts with 401 without a session and 403 when the role is insufficient.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.RequireRole(CurrentSession(c), role); err != nil {
			abortWith(c, err)
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	status := http.StatusUnauthorized
	if errors.Is(err, apperror.ErrForbidden) {
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
