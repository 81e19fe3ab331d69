// Package middleware provides authentication, rate limiting, logging, metrics, and tracing
// middleware for the HTTP surface.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"agora/internal/config"
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenIssuer   = "agora"
	TokenAudience = "agora-api"
)

// Claims is the access token payload. The subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token id has been revoked (logged out).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var (
	cfg         *config.Config
	revocations RevocationChecker
)

// InitMiddleware initializes authentication middleware with the given config.
// checker may be nil, in which case revoked tokens are not looked up.
func InitMiddleware(c *config.Config, checker RevocationChecker) {
	cfg = c
	revocations = checker
}

// ParseToken validates signature, issuer, audience and expiry. Expired tokens yield
// AUTH-401-JWT_EXPIRED; any other failure yields AUTH-401-JWT_INVALID.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrJWTExpired.Wrap(err)
		}
		return nil, models.ErrJWTInvalid.Wrap(err)
	}
	if !token.Valid {
		return nil, models.ErrJWTInvalid.New()
	}
	return claims, nil
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, models.ErrJWTInvalid.WithMessage("Invalid user ID in token")
	}
	return uint(id), nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", models.NewUnauthorizedError("Authorization header required")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", models.NewUnauthorizedError("Invalid authorization header format")
	}
	return parts[1], nil
}

func authenticate(c *fiber.Ctx, tokenString string) error {
	if cfg == nil {
		return models.NewInternalError(errors.New("auth middleware not initialized"))
	}
	claims, err := ParseToken(cfg.JWTSecret, tokenString)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}
	if revocations != nil && claims.ID != "" {
		revoked, rerr := revocations.IsRevoked(c.UserContext(), claims.ID)
		if rerr != nil {
			// Redis being down must not lock everyone out.
			Logger.WarnContext(c.UserContext(), "token revocation lookup failed", "error", rerr)
		} else if revoked {
			return models.ErrJWTInvalid.WithMessage("The access token has been revoked.")
		}
	}

	c.Locals("userID", userID)
	c.Locals("role", claims.Role)
	c.Locals("jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals("tokenExpiresAt", claims.ExpiresAt.Time)
	}
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return models.RespondWithError(c, 0, err)
	}
	if err := authenticate(c, tokenString); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return c.Next()
}

// WebSocketAuthRequired accepts the token from the "token" query parameter, since
// browsers cannot set headers on websocket upgrades, and falls back to the header.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		var err error
		tokenString, err = bearerToken(c)
		if err != nil {
			return models.RespondWithError(c, 0, err)
		}
	}
	if err := authenticate(c, tokenString); err != nil {
		return models.RespondWithError(c, 0, err)
	}
	return c.Next()
}
