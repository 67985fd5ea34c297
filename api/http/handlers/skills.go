package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/identity"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
	"github.com/mk-2871/Proof-of-Talent/pkg/skill"
)

type SkillsHandler struct {
	uc     marketplace.UseCase
	skills *skill.Store
}

func NewSkillsHandler(uc marketplace.UseCase, skills *skill.Store) *SkillsHandler {
	return &SkillsHandler{uc: uc, skills: skills}
}

// @Summary Skills of the caller
// @Tags    skills
// @Produce json
// @Security BearerAuth
// @Success 200 {object} presenter.Page[skill.Skill]
// @Router  /skills/mine [get]
func (h *SkillsHandler) Mine(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	return presenter.JSON(c, http.StatusOK, page(c, h.skills.SkillsByOwner(me.ID)))
}

// Queue lists pending skills the caller may review; their own are left out.
// @Summary Verification queue
// @Tags    skills
// @Produce json
// @Param   q query string false "free-text search"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[skill.Skill]
// @Router  /skills/queue [get]
func (h *SkillsHandler) Queue(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	queue := h.skills.Queue()
	others := make([]skill.Skill, 0, len(queue))
	for _, sk := range queue {
		if sk.Owner.ID != me.ID {
			others = append(others, sk)
		}
	}
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, others, skillFields)))
}

// @Summary Get skill by ID
// @Tags    skills
// @Produce json
// @Param   id path string true "skill ID"
// @Security BearerAuth
// @Success 200 {object} skill.Skill
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /skills/{id} [get]
func (h *SkillsHandler) Get(c *fiber.Ctx) error {
	sk, ok := h.skills.Get(c.Params("id"))
	if !ok {
		return presenter.FromError(c, marketplace.ErrSkillNotFound)
	}
	return presenter.JSON(c, http.StatusOK, sk)
}

// Submit asks the community to verify one of the caller's skills.
// @Summary Submit skill for verification
// @Tags    skills
// @Accept  json
// @Produce json
// @Param   input body marketplace.SkillInput true "skill claim"
// @Security BearerAuth
// @Success 201 {object} skill.Skill
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /skills [post]
func (h *SkillsHandler) Submit(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var in marketplace.SkillInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	sk, err := h.uc.SubmitSkill(c.Context(), me, in)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, sk)
}

// @Summary Verify skill
// @Tags    skills
// @Produce json
// @Param   id path string true "skill ID"
// @Security BearerAuth
// @Success 200 {object} skill.Skill
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /skills/{id}/verify [post]
func (h *SkillsHandler) Verify(c *fiber.Ctx) error {
	return h.act(c, h.uc.VerifySkill)
}

// @Summary Reject skill
// @Tags    skills
// @Produce json
// @Param   id path string true "skill ID"
// @Security BearerAuth
// @Success 200 {object} skill.Skill
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /skills/{id}/reject [post]
func (h *SkillsHandler) Reject(c *fiber.Ctx) error {
	return h.act(c, h.uc.RejectSkill)
}

// @Summary Mint skill certificate
// @Tags    skills
// @Produce json
// @Param   id path string true "skill ID"
// @Security BearerAuth
// @Success 200 {object} skill.Skill
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /skills/{id}/certificate [post]
func (h *SkillsHandler) Certificate(c *fiber.Ctx) error {
	return h.act(c, h.uc.MintCertificate)
}

func (h *SkillsHandler) act(c *fiber.Ctx, fn func(context.Context, identity.Identity, string) (skill.Skill, error)) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	sk, err := fn(c.Context(), me, c.Params("id"))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, sk)
}

// @Summary Endorsements a member received
// @Tags    skills
// @Produce json
// @Param   id path string true "member ID"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[skill.Endorsement]
// @Router  /members/{id}/endorsements [get]
func (h *SkillsHandler) Endorsements(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, page(c, h.skills.EndorsementsFor(c.Params("id"))))
}

type endorseRequest struct {
	Name   string `json:"name"`
	Skill  string `json:"skill"`
	Reason string `json:"reason"`
}

// @Summary Endorse a member
// @Tags    skills
// @Accept  json
// @Produce json
// @Param   id    path string         true "member ID"
// @Param   input body endorseRequest true "endorsement"
// @Security BearerAuth
// @Success 201 {object} skill.Endorsement
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /members/{id}/endorsements [post]
func (h *SkillsHandler) Endorse(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var req endorseRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	e, err := h.uc.Endorse(c.Context(), me, marketplace.EndorseInput{
		UserID: c.Params("id"),
		Name:   req.Name,
		Skill:  req.Skill,
		Reason: req.Reason,
	})
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, e)
}
