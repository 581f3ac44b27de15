package handler

import (
	"net/http"

	"parkbay/internal/middleware"
	"parkbay/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MeHandler struct {
	store *repository.Store
	log   *zap.Logger
}

func NewMeHandler(store *repository.Store, log *zap.Logger) *MeHandler {
	return &MeHandler{store: store, log: log}
}

func (h *MeHandler) Get(c *gin.Context) {
	u, err := h.store.Users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type UpdateMeRequest struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Phone           *string `json:"phone"`
	CarRegistration *string `json:"car_registration"`
	StripeAccountID *string `json:"stripe_account_id"`
}

func (h *MeHandler) Update(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.store.Users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.CarRegistration != nil {
		u.CarRegistration = *req.CarRegistration
	}
	if req.StripeAccountID != nil {
		u.StripeAccountID = req.StripeAccountID
	}
	if err := h.store.Users.Update(u); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
