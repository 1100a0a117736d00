package server

import (
	"context"
	"strings"
	"time"

	"driverquote/internal/middleware"
	"driverquote/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims expected on back-office tokens.
const (
	AdminIssuer   = "driverquote-api"
	AdminAudience = "driverquote-admin"
	AdminRole     = "admin"
)

// RevokedTokenKey is the Redis key marking a token id as revoked.
func RevokedTokenKey(jti string) string {
	return "blacklist:" + jti
}

// AdminClaims are the JWT claims carried by back-office tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs an HS256 back-office token for subject, valid for ttl.
// Returns the token and its jti.
func IssueAdminToken(secret, subject string, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := AdminClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    AdminIssuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{AdminAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// AdminRequired guards back-office routes. It is a pass-through unless
// ADMIN_AUTH_REQUIRED is set.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.config.AdminAuthRequired {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authentification requise"))
		}

		var claims AdminClaims
		token, err := jwt.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
			return []byte(s.config.JWTSecret), nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(AdminIssuer),
			jwt.WithAudience(AdminAudience),
			jwt.WithExpirationRequired(),
		)
		if err != nil || !token.Valid {
			return models.RespondWithError(c, models.NewUnauthorizedError("Jeton invalide ou expiré"))
		}

		if claims.Role != AdminRole {
			return models.RespondWithError(c, models.NewUnauthorizedError("Accès administrateur requis"))
		}

		// Revocation is best-effort: without Redis, signature and expiry still apply
		if claims.ID != "" && s.redis != nil {
			revoked, err := s.redis.Exists(c.UserContext(), RevokedTokenKey(claims.ID)).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, models.NewUnauthorizedError("Jeton révoqué"))
			}
		}

		c.Locals("adminSubject", claims.Subject)
		ctx := context.WithValue(c.UserContext(), middleware.AdminKey, claims.Subject)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
