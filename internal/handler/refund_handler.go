package handler

import (
	"net/http"

	"parkbay/internal/domain"
	"parkbay/internal/middleware"
	"parkbay/internal/repository"
	"parkbay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RefundHandler struct {
	svc   *service.RefundService
	store *repository.Store
	log   *zap.Logger
}

func NewRefundHandler(svc *service.RefundService, store *repository.Store, log *zap.Logger) *RefundHandler {
	return &RefundHandler{svc: svc, store: store, log: log}
}

type RefundRequestBody struct {
	PaymentID uint   `json:"payment_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

func (h *RefundHandler) Request(c *gin.Context) {
	var req RefundRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rf, err := h.svc.Request(c.Request.Context(), middleware.GetUserID(c), req.PaymentID, req.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, rf)
}

type ResubmitRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *RefundHandler) Resubmit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rf, err := h.svc.Resubmit(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rf)
}

func (h *RefundHandler) ListMine(c *gin.Context) {
	out, err := h.store.Refunds.ListByRequester(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": out})
}

// List is the admin queue view, filterable by ?status=.
func (h *RefundHandler) List(c *gin.Context) {
	status := c.DefaultQuery("status", domain.RefundRequested)
	out, err := h.store.Refunds.ListByStatus(status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refunds": out})
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (h *RefundHandler) Approve(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rf, err := h.svc.Approve(c.Request.Context(), middleware.GetUserID(c), id, req.Decision)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rf)
}

func (h *RefundHandler) Deny(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rf, err := h.svc.Deny(middleware.GetUserID(c), id, req.Decision)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rf)
}

func (h *RefundHandler) MarkReviewing(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	rf, err := h.svc.MarkReviewing(middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rf)
}
