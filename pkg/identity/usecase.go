// Package identity keeps the logged-in user record and the registry of
// signed-up accounts in the durable key-value store.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

// UseCase describes signup, login and the current-identity record.
type UseCase interface {
	Signup(ctx context.Context, in SignupInput) (Result, error)
	Login(ctx context.Context, email, password string, role Role) (Result, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (Identity, error)
}

type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            Role   `json:"role"`
}

type service struct {
	store  kv.Store
	tokens TokenGenerator
	now    func() time.Time

	// serialises read-modify-write of the account registry
	mu sync.Mutex
}

// NewService returns the default UseCase.
func NewService(store kv.Store, tokens TokenGenerator) UseCase {
	return &service{store: store, tokens: tokens, now: time.Now}
}

func (s *service) Signup(ctx context.Context, in SignupInput) (Result, error) {
	in.Name = strings.TrimSpace(in.Name)
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return Result{}, err
	}
	if in.Name == "" {
		return Result{}, apperr.Validation("name is required")
	}
	if in.Password == "" {
		return Result{}, apperr.Validation("password is required")
	}
	if !in.Role.Valid() {
		return Result{}, apperr.Validation("invalid role %q", in.Role)
	}
	if in.Password != in.ConfirmPassword {
		return Result{}, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accounts(ctx)
	if err != nil {
		return Result{}, err
	}
	if _, exists := accounts[email]; exists {
		return Result{}, ErrEmailTaken
	}
	acc := account{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	accounts[email] = acc
	if err := s.saveAccounts(ctx, accounts); err != nil {
		return Result{}, err
	}
	return s.establish(ctx, acc.identity())
}

// Login checks the password of registered accounts. Unregistered emails get
// the demo identity for the requested role.
func (s *service) Login(ctx context.Context, email, password string, role Role) (Result, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Result{}, err
	}
	if password == "" {
		return Result{}, apperr.Validation("password is required")
	}
	if !role.Valid() {
		return Result{}, apperr.Validation("invalid role %q", role)
	}

	s.mu.Lock()
	accounts, err := s.accounts(ctx)
	s.mu.Unlock()
	if err != nil {
		return Result{}, err
	}

	acc, registered := accounts[email]
	if !registered {
		return s.establish(ctx, demoIdentity(email, role))
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return Result{}, ErrInvalidCredentials
	}
	id := acc.identity()
	// the role picked at login wins over the one chosen at signup
	id.Role = role
	return s.establish(ctx, id)
}

func (s *service) Logout(ctx context.Context) error {
	return s.store.Delete(ctx, kv.KeyIdentity)
}

func (s *service) Current(ctx context.Context) (Identity, error) {
	raw, err := s.store.Get(ctx, kv.KeyIdentity)
	if errors.Is(err, kv.ErrNotFound) {
		return Identity{}, ErrNotLoggedIn
	}
	if err != nil {
		return Identity{}, err
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.ID == "" || !id.Role.Valid() {
		log.Printf("level=warn msg=\"removing unreadable identity record\" err=%v", err)
		if delErr := s.store.Delete(ctx, kv.KeyIdentity); delErr != nil {
			return Identity{}, delErr
		}
		return Identity{}, ErrNotLoggedIn
	}
	return id, nil
}

// establish overwrites the stored identity and issues a token for it.
func (s *service) establish(ctx context.Context, id Identity) (Result, error) {
	b, err := json.Marshal(id)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.Set(ctx, kv.KeyIdentity, b); err != nil {
		return Result{}, fmt.Errorf("store identity: %w", err)
	}
	token, err := s.tokens.Generate(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return Result{Identity: id, Token: token}, nil
}

func (s *service) accounts(ctx context.Context) (map[string]account, error) {
	raw, err := s.store.Get(ctx, kv.KeyAccounts)
	if errors.Is(err, kv.ErrNotFound) {
		return map[string]account{}, nil
	}
	if err != nil {
		return nil, err
	}
	var accounts map[string]account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decode account registry: %w", err)
	}
	if accounts == nil {
		// a stored JSON null decodes to a nil map
		accounts = map[string]account{}
	}
	return accounts, nil
}

func (s *service) saveAccounts(ctx context.Context, accounts map[string]account) error {
	b, err := json.Marshal(accounts)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, kv.KeyAccounts, b)
}

func demoIdentity(email string, role Role) Identity {
	name := DemoCandidateName
	if role == RoleRecruiter {
		name = DemoRecruiterName
	}
	return Identity{ID: DemoID, Name: name, Email: email, Role: role}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperr.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Validation("invalid email %q", email)
	}
	return email, nil
}
