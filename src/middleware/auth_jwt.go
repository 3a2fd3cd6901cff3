package middleware

import (
	"log"
	"strings"

	"Backend-Feedback/src/apperror"
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
)

// AuthJWT verifies the access token from the Authorization header (or the
// accessToken cookie), rejects blacklisted tokens and stores the caller
// identity in c.Locals.
func AuthJWT(tokens *utils.TokenManager, sessions *utils.SessionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ""
		if authHeader := c.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else {
			tokenStr = c.Cookies("accessToken")
		}
		if tokenStr == "" {
			return utils.HandleError(c, apperror.Unauthorized("missing or invalid Authorization header"))
		}

		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			return utils.HandleError(c, apperror.Unauthorized("invalid or expired token"))
		}

		blacklisted, err := sessions.IsTokenBlacklisted(c.UserContext(), claims.ID)
		if err != nil {
			log.Printf("⚠️ blacklist check failed: %v", err)
		}
		if blacklisted {
			return utils.HandleError(c, apperror.Unauthorized("token has been revoked"))
		}

		identity, err := claims.Identity()
		if err != nil {
			return utils.HandleError(c, apperror.Unauthorized("invalid or expired token"))
		}

		c.Locals(identityKey, identity)
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// CurrentIdentity returns the identity AuthJWT stored for this request.
func CurrentIdentity(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	return identity, ok
}

func CurrentClaims(c *fiber.Ctx) (*utils.JWTClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*utils.JWTClaims)
	return claims, ok
}

// RequireRoles must run after AuthJWT.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return utils.HandleError(c, apperror.Unauthorized("authentication required"))
		}
		for _, r := range roles {
			if identity.Role == r {
				return c.Next()
			}
		}
		return utils.HandleError(c, apperror.Forbidden("you do not have permission to access this resource"))
	}
}
