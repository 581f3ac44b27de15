package handler

import (
	"net/http"

	"parkbay/internal/domain"
	"parkbay/internal/middleware"
	"parkbay/internal/repository"
	"parkbay/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	store   *repository.Store
	gateway payment.Gateway
	log     *zap.Logger
}

func NewPaymentHandler(store *repository.Store, gateway payment.Gateway, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{store: store, gateway: gateway, log: log}
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	out, err := h.store.Payments.ListByUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": out})
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	pay, err := h.store.Payments.GetByID(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if pay.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your payment"})
		return
	}
	c.JSON(http.StatusOK, pay)
}

// PayoutAccountStatus reports whether the caller's connected account can
// receive charges. Owners use this to see why their bays cannot be booked.
func (h *PaymentHandler) PayoutAccountStatus(c *gin.Context) {
	u, err := h.store.Users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !u.HasPayoutAccount() {
		c.JSON(http.StatusOK, gin.H{"onboarded": false})
		return
	}
	acct, err := h.gateway.AccountStatus(c.Request.Context(), *u.StripeAccountID)
	if err != nil {
		h.log.Warn("payout account lookup failed", zap.Uint("user_id", u.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payout account lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"onboarded":       true,
		"charges_enabled": acct.ChargesEnabled,
		"payouts_enabled": acct.PayoutsEnabled,
	})
}
