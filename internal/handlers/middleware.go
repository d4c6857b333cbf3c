package handlers

import (
	"errors"
	"net/http"
	"strings"

	"expense_tracker/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session"

	userIDKey   = logger.UserIDKey
	usernameKey = "username"
)

var (
	errMissingAuth = errors.New("missing Authorization header")
	errAuthFormat  = errors.New("invalid Authorization header format")
)

// bearerOrSession returns the token from the Authorization header, falling back to the
// session cookie when no header is sent.
func bearerOrSession(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
			return token, nil
		}
		return "", errMissingAuth
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", errAuthFormat
	}
	return strings.TrimSpace(parts[1]), nil
}

// userIdMiddleware guards JSON endpoints and answers 401 in JSON.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	token, err := bearerOrSession(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": err.Error(),
		})
		return
	}

	userId, err := h.services.ParseToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(userIDKey, userId)
	c.Next()
}

// sessionMiddleware guards HTML pages: it needs a valid session cookie for an existing
// user and otherwise redirects to the login page.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		h.redirectWithFlash(c, "/login", flashWarning, "Please log in to access this page.")
		c.Abort()
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		h.clearSession(c)
		h.redirectWithFlash(c, "/login", flashWarning, "Your session has expired. Please log in again.")
		c.Abort()
		return
	}

	user, err := h.services.GetUser(userID)
	if err != nil {
		h.log.Infow("session_user_lookup_failed", "user_id", userID, "err", err)
		h.clearSession(c)
		h.redirectWithFlash(c, "/login", flashWarning, "Please log in to access this page.")
		c.Abort()
		return
	}

	c.Set(userIDKey, user.ID)
	c.Set(usernameKey, user.Username)
	c.Next()
}

// currentUserID returns the id stored by one of the auth middlewares.
func currentUserID(c *gin.Context) int {
	return c.GetInt(userIDKey)
}

func (h *Handler) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.SecureCookie, true)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.opts.SecureCookie, true)
}
