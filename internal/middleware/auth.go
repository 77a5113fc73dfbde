package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/appointment-invites/internal/config"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

const (
	ContextActorID    = "actorID"
	ContextActorEmail = "actorEmail"
)

// AuthClaims is the payload expected in API bearer tokens. sub is the actor
// id; email is used as the creator's reply address.
type AuthClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.JWTSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		claims := &AuthClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		actorID := strings.TrimSpace(claims.Subject)
		if actorID == "" {
			httperr.Unauthorized(c, "token has no subject")
			c.Abort()
			return
		}

		c.Set(ContextActorID, actorID)
		c.Set(ContextActorEmail, strings.TrimSpace(claims.Email))

		ctx := logging.AppendCtx(c.Request.Context(), slog.String("actor_id", actorID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ActorID returns the authenticated actor, or "" outside AuthMiddleware.
func ActorID(c *gin.Context) string {
	return c.GetString(ContextActorID)
}

func ActorEmail(c *gin.Context) string {
	return c.GetString(ContextActorEmail)
}
