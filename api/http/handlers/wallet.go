package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/api/http/presenter"
	"github.com/mk-2871/Proof-of-Talent/pkg/session"
	"github.com/mk-2871/Proof-of-Talent/pkg/wallet"
)

// WalletSession is the session surface exposed over HTTP. *session.Manager
// satisfies it.
type WalletSession interface {
	Snapshot() session.Snapshot
	Target() wallet.Network
	Connect(ctx context.Context) (session.Snapshot, error)
	Disconnect(ctx context.Context) session.Snapshot
	SignMessage(ctx context.Context, text string) (string, error)
	SendTransaction(ctx context.Context, to, amount string) (session.TxResult, error)
	SwitchToTargetNetwork(ctx context.Context) (session.Snapshot, error)
}

type WalletHandler struct {
	session WalletSession
}

func NewWalletHandler(s WalletSession) *WalletHandler { return &WalletHandler{session: s} }

type walletView struct {
	session.Snapshot
	Network wallet.Network `json:"network"`
}

// Snapshot returns the current session state.
// @Summary Wallet session
// @Tags    wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} walletView
// @Router  /wallet [get]
func (h *WalletHandler) Snapshot(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, walletView{Snapshot: h.session.Snapshot(), Network: h.session.Target()})
}

// Connect asks the wallet for an account.
// @Summary Connect wallet
// @Tags    wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.Snapshot
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /wallet/connect [post]
func (h *WalletHandler) Connect(c *fiber.Ctx) error {
	snap, err := h.session.Connect(c.Context())
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, snap)
}

// Disconnect forgets the wallet session.
// @Summary Disconnect wallet
// @Tags    wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.Snapshot
// @Router  /wallet/disconnect [post]
func (h *WalletHandler) Disconnect(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, h.session.Disconnect(c.Context()))
}

type signRequest struct {
	Message string `json:"message"`
}

// Sign asks the wallet for a personal_sign signature.
// @Summary Sign message
// @Tags    wallet
// @Accept  json
// @Produce json
// @Param   input body signRequest true "message to sign"
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /wallet/sign [post]
func (h *WalletHandler) Sign(c *fiber.Ctx) error {
	var req signRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if req.Message == "" {
		return presenter.Error(c, http.StatusBadRequest, "message is required")
	}
	sig, err := h.session.SignMessage(c.Context(), req.Message)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"signature": sig})
}

type sendRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Send transfers ether from the connected account.
// @Summary Send transaction
// @Tags    wallet
// @Accept  json
// @Produce json
// @Param   input body sendRequest true "recipient and ether amount"
// @Security BearerAuth
// @Success 200 {object} session.TxResult
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /wallet/send [post]
func (h *WalletHandler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	tx, err := h.session.SendTransaction(c.Context(), strings.TrimSpace(req.To), strings.TrimSpace(req.Amount))
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, tx)
}

// SwitchNetwork moves the wallet to the target network, adding it first if
// the wallet does not know it.
// @Summary Switch to target network
// @Tags    wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} session.Snapshot
// @Failure 502 {object} presenter.ErrorResponse
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /wallet/switch-network [post]
func (h *WalletHandler) SwitchNetwork(c *fiber.Ctx) error {
	snap, err := h.session.SwitchToTargetNetwork(c.Context())
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, snap)
}
