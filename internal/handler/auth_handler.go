package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieConfig controls the session cookie written on register and login.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Register creates an account and logs it in.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	user, sess, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		logger.Log.Warn("Registration failed",
			zap.String("username", req.Username),
			zap.String("email", req.Email),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sess)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user.Public(),
	})
}

// Login verifies credentials and starts a session.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if !bindJSON(c, &req) {
		return
	}

	logger.Log.Info("User login attempt",
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	user, sess, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		// An unknown email is a failed login to the client, not a missing resource.
		if errors.Is(err, apperror.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, sess)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user.Public(),
	})
}

// Logout destroys the current session, if any, and clears the cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the logged-in user.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.CurrentUser(middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sess *session.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		h.cookie.Name,
		sess.ID,
		int(h.cookie.TTL.Seconds()),
		"/",
		"",              // current domain
		h.cookie.Secure, // HTTPS-only in production
		true,            // httpOnly
	)
}
