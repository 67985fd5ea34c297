package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/governance"
	"github.com/mk-2871/Proof-of-Talent/pkg/marketplace"
)

type GovernanceHandler struct {
	uc        marketplace.UseCase
	proposals *governance.Store
}

func NewGovernanceHandler(uc marketplace.UseCase, proposals *governance.Store) *GovernanceHandler {
	return &GovernanceHandler{uc: uc, proposals: proposals}
}

// @Summary List proposals
// @Tags    governance
// @Produce json
// @Param   q      query string false "free-text search"
// @Param   limit  query int    false "page size (max 200)"
// @Param   offset query int    false "page offset"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[governance.Proposal]
// @Router  /proposals [get]
func (h *GovernanceHandler) List(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, page(c, matching(c, h.proposals.Proposals(), proposalFields)))
}

// @Summary Get proposal by ID
// @Tags    governance
// @Produce json
// @Param   id path string true "proposal ID"
// @Security BearerAuth
// @Success 200 {object} governance.Proposal
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /proposals/{id} [get]
func (h *GovernanceHandler) Get(c *fiber.Ctx) error {
	p, ok := h.proposals.Get(c.Params("id"))
	if !ok {
		return presenter.FromError(c, marketplace.ErrProposalNotFound)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// @Summary Create proposal
// @Tags    governance
// @Accept  json
// @Produce json
// @Param   input body marketplace.ProposalInput true "proposal"
// @Security BearerAuth
// @Success 201 {object} governance.Proposal
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /proposals [post]
func (h *GovernanceHandler) Create(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var in marketplace.ProposalInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	p, err := h.uc.CreateProposal(c.Context(), me, in)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, p)
}

type voteRequest struct {
	Choice governance.Choice `json:"choice"`
}

// Vote records or changes the caller's vote.
// @Summary Vote on proposal
// @Tags    governance
// @Accept  json
// @Produce json
// @Param   id    path string      true "proposal ID"
// @Param   input body voteRequest true "yes or no"
// @Security BearerAuth
// @Success 200 {object} governance.Proposal
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /proposals/{id}/votes [post]
func (h *GovernanceHandler) Vote(c *fiber.Ctx) error {
	me, ok := caller(c)
	if !ok {
		return unauthenticated(c)
	}
	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	p, err := h.uc.Vote(c.Context(), me, c.Params("id"), req.Choice)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, p)
}

// @Summary Voting history of a member
// @Tags    governance
// @Produce json
// @Param   id path string true "member ID"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[governance.CastVote]
// @Router  /members/{id}/votes [get]
func (h *GovernanceHandler) Votes(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, page(c, h.proposals.VotesBy(c.Params("id"))))
}

// @Summary Leaderboard
// @Tags    governance
// @Produce json
// @Param   by query string false "verified (default), endorsed or dao"
// @Security BearerAuth
// @Success 200 {array}  marketplace.Standing
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /leaderboard [get]
func (h *GovernanceHandler) Leaderboard(c *fiber.Ctx) error {
	standings, err := h.uc.Leaderboard(marketplace.Ranking(c.Query("by", string(marketplace.RankVerified))))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, standings)
}
