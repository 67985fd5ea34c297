package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
	"github.com/mk-2871/Proof-of-Talent/pkg/resume"
)

type ApplicationsHandler struct {
	uc   marketplace.UseCase
	apps *application.Store
}

func NewApplicationsHandler(uc marketplace.UseCase, apps *application.Store) *ApplicationsHandler {
	return &ApplicationsHandler{uc: uc, apps: apps}
}

// @Summary Shortlisted applications
// @Tags    applications
// @Produce json
// @Param   q query string false "free-text search"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[application.Application]
// @Router  /applications/shortlisted [get]
func (h *ApplicationsHandler) Shortlisted(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, h.apps.ShortlistedApplications(), applicationFields)))
}

// @Summary Get application by ID
// @Tags    applications
// @Produce json
// @Param   id path string true "application ID"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id} [get]
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	a, ok := h.apps.Get(c.Params("id"))
	if !ok {
		return presenter.FromError(c, marketplace.ErrAppNotFound)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// @Summary Shortlist candidate
// @Tags    applications
// @Produce json
// @Param   id path string true "application ID"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications/{id}/shortlist [post]
func (h *ApplicationsHandler) Shortlist(c *fiber.Ctx) error {
	return h.review(c, h.uc.Shortlist)
}

// @Summary Reject candidate
// @Tags    applications
// @Produce json
// @Param   id path string true "application ID"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/reject [post]
func (h *ApplicationsHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.uc.Reject)
}

// @Summary Remove from shortlist
// @Tags    applications
// @Produce json
// @Param   id path string true "application ID"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications/{id}/unshortlist [post]
func (h *ApplicationsHandler) Unshortlist(c *fiber.Ctx) error {
	return h.review(c, h.uc.RemoveFromShortlist)
}

func (h *ApplicationsHandler) review(c *fiber.Ctx, step func(ctx context.Context, id string) (application.Application, error)) error {
	a, err := step(c.Context(), c.Params("id"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// Withdraw signs the withdrawal of one of the caller's applications.
// @Summary Withdraw application
// @Tags    applications
// @Produce json
// @Param   id path string true "application ID"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/withdraw [post]
func (h *ApplicationsHandler) Withdraw(c *fiber.Ctx) error {
	candidate, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	a, err := h.uc.Withdraw(c.Context(), candidate, c.Params("id"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// UpdateResume replaces the resume attached to one application.
// @Summary Replace application resume
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   id    path string      true "application ID"
// @Param   input body resume.Meta true "resume metadata"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/resume [put]
func (h *ApplicationsHandler) UpdateResume(c *fiber.Ctx) error {
	candidate, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var meta resume.Meta
	if err := c.BodyParser(&meta); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if meta.Name == "" {
		return presenter.Error(c, http.StatusBadRequest, "resume name is required")
	}
	a, err := h.uc.UpdateApplicationResume(c.Context(), candidate, c.Params("id"), &meta)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// @Summary Applications of a candidate
// @Tags    candidates
// @Produce json
// @Param   id path string true "candidate ID"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[application.Application]
// @Router  /candidates/{id}/applications [get]
func (h *ApplicationsHandler) CandidateApplications(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, h.apps.ApplicationsByCandidate(c.Params("id")), applicationFields)))
}

// CandidateResume returns the resume attached to the candidate's first
// application; 404 when that application has none.
// @Summary Candidate resume
// @Tags    candidates
// @Produce json
// @Param   id path string true "candidate ID"
// @Security BearerAuth
// @Success 200 {object} resume.Meta
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /candidates/{id}/resume [get]
func (h *ApplicationsHandler) CandidateResume(c *fiber.Ctx) error {
	meta := h.apps.CandidateResume(c.Params("id"))
	if meta == nil {
		return presenter.Error(c, http.StatusNotFound, "no resume on file")
	}
	return presenter.JSON(c, http.StatusOK, meta)
}

// UpdateProfile saves the caller's profile. A resume in the body replaces
// the resume on all of the caller's applications.
// @Summary Update candidate profile
// @Tags    candidates
// @Accept  json
// @Produce json
// @Param   id    path string                   true "candidate ID"
// @Param   input body marketplace.ProfileInput true "profile"
// @Security BearerAuth
// @Success 200 {object} marketplace.Profile
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /candidates/{id}/resume [put]
func (h *ApplicationsHandler) UpdateProfile(c *fiber.Ctx) error {
	candidate, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	if c.Params("id") != candidate.ID {
		return presenter.Error(c, http.StatusForbidden, "profiles can only be edited by their owner")
	}
	var req marketplace.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	p, err := h.uc.UpdateProfile(c.Context(), candidate, req)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}
