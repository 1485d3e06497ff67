package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/service/anonymous"
)

const (
	sessionIDKey = "sessionID"
	tokenKey     = "accessToken"
)

type sessionResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	SessionID   string `json:"sessionId"`
	ExpiresIn   int    `json:"expiresIn"`
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// sessionMiddleware resolves the bearer token to the session owning the cart.
func (h *handlers) sessionMiddleware(sessions sessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}
		sessionID, err := sessions.Lookup(c.Request.Context(), token)
		if errors.Is(err, anonymous.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
			return
		}
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionIDKey, sessionID)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func (h *handlers) createSession(c *gin.Context) {
	token, sessionID, err := h.deps.SessionSvc.Issue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Debug("session issued", zap.String("session", sessionID))
	c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		SessionID:   sessionID,
		ExpiresIn:   h.deps.SessionSvc.TTLSeconds(),
	})
}

// endSession revokes the token and discards the cart.
func (h *handlers) endSession(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID, err := h.deps.SessionSvc.Revoke(ctx, c.GetString(tokenKey))
	if errors.Is(err, anonymous.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.deps.CartSvc.Forget(ctx, sessionID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
