package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID = "userId"
	LocalRole   = "role"
	LocalClaims = "claims"
)

var errUnexpectedMethod = errors.New("unexpected signing method")

// Parse validates an HS256 token and returns its claims.
func Parse(tokenStr, secret, expectedIssuer string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedMethod
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if expectedIssuer != "" && claims.Issuer != expectedIssuer {
		return nil, errors.New("invalid token issuer")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("invalid token role")
	}
	return claims, nil
}

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// On success sets subject, role and claims into c.Locals.
func NewAuthMiddleware(secret, expectedIssuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "missing Authorization header")
		}
		// Support both "Bearer <token>" and "<token>" (no prefix).
		tokenStr := strings.TrimSpace(authHeader)
		if scheme, rest, ok := strings.Cut(tokenStr, " "); ok && strings.EqualFold(scheme, "Bearer") {
			tokenStr = strings.TrimSpace(rest)
		}
		if tokenStr == "" {
			return unauthorized(c, "empty token")
		}
		claims, err := Parse(tokenStr, secret, expectedIssuer)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalClaims, claims)
		return c.Next()
	}
}

// RequireRole lets the request through only when the authenticated role is
// one of roles. It must run after NewAuthMiddleware.
func RequireRole(roles ...identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(identity.Role)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"message": "this action requires role " + joinRoles(roles),
			"code":    apperr.CodeForbidden,
		})
	}
}

// ClaimsFrom returns the claims stored by NewAuthMiddleware, if any.
func ClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*Claims)
	return claims, ok
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": msg, "code": apperr.CodeUnauthorized})
}

func joinRoles(roles []identity.Role) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, " or ")
}
