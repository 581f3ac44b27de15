package handler

import (
	"net/http"
	"time"

	"parkbay/internal/domain"
	"parkbay/internal/middleware"
	"parkbay/internal/repository"
	"parkbay/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	svc   *service.BookingService
	store *repository.Store
	log   *zap.Logger
}

func NewBookingHandler(svc *service.BookingService, store *repository.Store, log *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, store: store, log: log}
}

type BookRequest struct {
	BayID        uint      `json:"bay_id" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	CostPence    int64     `json:"cost_pence" binding:"required"`
	PaymentToken string    `json:"payment_token" binding:"required"`
}

func (h *BookingHandler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, pay, err := h.svc.BookBay(c.Request.Context(), middleware.GetUserID(c), req.BayID, req.StartTime, req.EndTime, req.CostPence, req.PaymentToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"reservation": res,
		"payment":     pay,
	})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	res, err := h.svc.Cancel(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	res, err := h.store.Reservations.GetByID(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if res.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your reservation"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	out, err := h.store.Reservations.ListByUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": out})
}

// Availability answers whether a bay is free for [start, end). Advisory only:
// booking re-checks under lock.
func (h *BookingHandler) Availability(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	start, err1 := time.Parse(time.RFC3339, c.Query("start"))
	end, err2 := time.Parse(time.RFC3339, c.Query("end"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be RFC3339 timestamps"})
		return
	}
	available, err := h.svc.IsBayAvailable(id, start, end)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bay_id": id, "available": available})
}
