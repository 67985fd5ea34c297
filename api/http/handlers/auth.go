package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
)

type AuthHandler struct {
	useCase marketplace.UseCase
	ids     identity.UseCase
}

func NewAuthHandler(useCase marketplace.UseCase, ids identity.UseCase) *AuthHandler {
	return &AuthHandler{useCase: useCase, ids: ids}
}

// Signup handles account registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body identity.SignupInput true "registration payload"
// @Success 201 {object} identity.Result
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req identity.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}
	if !req.Role.Valid() {
		return presenter.Error(c, http.StatusBadRequest, "role must be candidate or recruiter")
	}

	result, err := h.useCase.Signup(c.Context(), req)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Role     identity.Role `json:"role"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} identity.Result
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.Error(c, http.StatusBadRequest, "email and password are required")
	}
	if req.Role == "" {
		req.Role = identity.RoleCandidate
	}
	if !req.Role.Valid() {
		return presenter.Error(c, http.StatusBadRequest, "role must be candidate or recruiter")
	}

	result, err := h.useCase.Login(c.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, result)
}

// Logout clears the stored identity record.
// @Summary Logout
// @Tags    auth
// @Security BearerAuth
// @Success 204
// @Router  /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.ids.Logout(c.Context()); err != nil {
		return presenter.FromError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me returns the identity carried by the token.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} identity.Identity
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	return presenter.JSON(c, http.StatusOK, id)
}
