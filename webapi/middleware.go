package webapi

import (
	"strings"

	"github.com/amirasaad/custodia/pkg/config"
	"github.com/amirasaad/custodia/pkg/service/auth"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtProtected guards a route group with bearer token verification. The
// verified token lands in c.Locals("user") for CallerIdentity.
func JwtProtected(cfg config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "missing or malformed") {
		return ErrorResponseJSON(c, fiber.StatusBadRequest, "Missing or malformed JWT", err.Error())
	}
	return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Invalid or expired JWT", err.Error())
}

// CallerIdentity resolves the authenticated caller from the verified token
// stored by JwtProtected.
func CallerIdentity(c *fiber.Ctx) (transfer.Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return transfer.Identity{}, fiber.ErrUnauthorized
	}
	return auth.CurrentIdentity(token)
}
