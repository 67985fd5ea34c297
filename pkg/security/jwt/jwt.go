package jwt

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
)

type Generator struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewGenerator(secret, issuer string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Claims carries the registered claims plus the identity's role and display
// fields.
type Claims struct {
	jwt.RegisteredClaims
	Role  identity.Role `json:"role"`
	Name  string        `json:"name,omitempty"`
	Email string        `json:"email,omitempty"`
}

func (g *Generator) Generate(ctx context.Context, id identity.Identity) (string, error) {
	now := g.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
		Role:  id.Role,
		Name:  id.Name,
		Email: id.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

var _ identity.TokenGenerator = (*Generator)(nil)
