package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/application"
	"github.com/mk-2871/Proof-of-Talent/pkg/job"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
)

type JobsHandler struct {
	uc   marketplace.UseCase
	jobs *job.Store
	apps *application.Store
}

func NewJobsHandler(uc marketplace.UseCase, jobs *job.Store, apps *application.Store) *JobsHandler {
	return &JobsHandler{uc: uc, jobs: jobs, apps: apps}
}

// List returns job postings in insertion order.
// @Summary List jobs
// @Tags    jobs
// @Produce json
// @Param   status query string false "active (default) or all"
// @Param   q      query string false "free-text search"
// @Param   limit  query int    false "page size (max 200)"
// @Param   offset query int    false "page offset"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[job.Job]
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs [get]
func (h *JobsHandler) List(c *fiber.Ctx) error {
	var items []job.Job
	switch c.Query("status", "active") {
	case "active":
		items = h.jobs.ActiveJobs()
	case "all":
		items = h.jobs.Jobs()
	default:
		return presenter.Error(c, http.StatusBadRequest, "status must be active or all")
	}
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, items, jobFields)))
}

// @Summary Get job by ID
// @Tags    jobs
// @Produce json
// @Param   id path string true "job ID"
// @Security BearerAuth
// @Success 200 {object} job.Job
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id} [get]
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	j, ok := h.jobs.Get(c.Params("id"))
	if !ok {
		return presenter.FromError(c, marketplace.ErrJobNotFound)
	}
	return presenter.JSON(c, http.StatusOK, j)
}

type createJobRequest struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Budget      string   `json:"budget"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
	// SkillsText is the comma separated form, used when Skills is empty.
	SkillsText string `json:"skillsText"`
}

// Create posts a new job owned by the caller.
// @Summary Post a job
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   input body createJobRequest true "job posting"
// @Security BearerAuth
// @Success 201 {object} job.Job
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs [post]
func (h *JobsHandler) Create(c *fiber.Ctx) error {
	recruiter, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	skills := req.Skills
	if len(skills) == 0 && strings.TrimSpace(req.SkillsText) != "" {
		skills = job.SplitSkills(req.SkillsText)
	}
	j, err := h.uc.PostJob(c.Context(), recruiter, job.Fields{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Budget:      req.Budget,
		Location:    req.Location,
		Skills:      skills,
	})
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, j)
}

type statusRequest struct {
	Status job.Status `json:"status"`
}

// UpdateStatus moves one of the caller's jobs to active, draft or closed.
// @Summary Change job status
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   id    path string        true "job ID"
// @Param   input body statusRequest true "new status"
// @Security BearerAuth
// @Success 200 {object} job.Job
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id}/status [patch]
func (h *JobsHandler) UpdateStatus(c *fiber.Ctx) error {
	recruiter, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	j, err := h.uc.SetJobStatus(c.Context(), recruiter, c.Params("id"), req.Status)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, j)
}

// @Summary Jobs of a recruiter
// @Tags    jobs
// @Produce json
// @Param   id path string true "recruiter ID"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[job.Job]
// @Router  /recruiters/{id}/jobs [get]
func (h *JobsHandler) RecruiterJobs(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, h.jobs.RecruiterJobs(c.Params("id")), jobFields)))
}

// @Summary Dashboard counters of the caller
// @Tags    jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} marketplace.Stats
// @Router  /recruiter/stats [get]
func (h *JobsHandler) Stats(c *fiber.Ctx) error {
	recruiter, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	return presenter.JSON(c, http.StatusOK, h.uc.RecruiterStats(recruiter.ID))
}

// ReleasePayment pays the job budget to the first shortlisted candidate.
// @Summary Release payment
// @Tags    jobs
// @Produce json
// @Param   id path string true "job ID"
// @Security BearerAuth
// @Success 200 {object} marketplace.Payment
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id}/payment [post]
func (h *JobsHandler) ReleasePayment(c *fiber.Ctx) error {
	recruiter, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	p, err := h.uc.ReleasePayment(c.Context(), recruiter, c.Params("id"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// Apply submits the caller's application to a job.
// @Summary Apply for a job
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   id    path string                  true "job ID"
// @Param   input body marketplace.ApplyInput  true "application"
// @Security BearerAuth
// @Success 201 {object} application.Application
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /jobs/{id}/applications [post]
func (h *JobsHandler) Apply(c *fiber.Ctx) error {
	candidate, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var req marketplace.ApplyInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	req.JobID = c.Params("id")
	app, err := h.uc.Apply(c.Context(), candidate, req)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, app)
}

// Applications lists the applications to one of the caller's jobs.
// @Summary Applications for a job
// @Tags    applications
// @Produce json
// @Param   id path string true "job ID"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[application.Application]
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id}/applications [get]
func (h *JobsHandler) Applications(c *fiber.Ctx) error {
	recruiter, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	j, found := h.jobs.Get(c.Params("id"))
	if !found {
		return presenter.FromError(c, marketplace.ErrJobNotFound)
	}
	if j.RecruiterID != recruiter.ID {
		return presenter.FromError(c, marketplace.ErrNotJobOwner)
	}
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, h.apps.ApplicationsByJob(j.ID), applicationFields)))
}
