package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/security/jwt"
)

// caller returns the identity carried by the request token.
func caller(c *fiber.Ctx) (identity.Identity, bool) {
	claims, ok := jwt.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		return identity.Identity{}, false
	}
	return identity.Identity{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}, true
}

func unauthenticated(c *fiber.Ctx) error {
	return presenter.Error(c, http.StatusUnauthorized, "could not determine the user")
}
