package identity

import (
	"context"
	"strings"
	"time"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
)

// Role decides which half of the marketplace an identity uses.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

func (r Role) Valid() bool { return r == RoleCandidate || r == RoleRecruiter }

// Identity is the application-level login, independent of the wallet.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Member is the public face of a user, snapshotted next to skills,
// endorsements, proposals and ballots.
type Member struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
	Avatar   string `json:"avatar,omitempty" yaml:"avatar"`
}

// Member derives the public snapshot; the username is the local part of the
// email address.
func (i Identity) Member() Member {
	username, _, _ := strings.Cut(i.Email, "@")
	return Member{ID: i.ID, Name: i.Name, Username: strings.ToLower(username)}
}

// account is a registered signup as kept in the account registry.
type account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a account) identity() Identity {
	return Identity{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}

// Demo identity handed out to unregistered logins.
const (
	DemoID            = "user123"
	DemoCandidateName = "Alex Johnson"
	DemoRecruiterName = "Sarah Williams"
)

var (
	ErrNotLoggedIn        = apperr.New(apperr.CodeNotFound, "not logged in")
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthorized, "invalid email or password")
	ErrEmailTaken         = apperr.New(apperr.CodeConflict, "email already registered")
	ErrPasswordMismatch   = apperr.New(apperr.CodeValidation, "passwords do not match")
)

// TokenGenerator issues API tokens for an identity (e.g. JWT).
type TokenGenerator interface {
	Generate(ctx context.Context, id Identity) (string, error)
}

// Result is a logged-in identity plus its API token.
type Result struct {
	Identity Identity `json:"user"`
	Token    string   `json:"token"`
}
