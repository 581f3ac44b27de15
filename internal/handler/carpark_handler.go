package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"parkbay/internal/domain"
	"parkbay/internal/middleware"
	"parkbay/internal/models"
	"parkbay/internal/repository"
	"parkbay/pkg/cloudinary"
	"parkbay/pkg/location"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CarParkHandler struct {
	store *repository.Store
	cloud cloudinary.Client
	log   *zap.Logger
}

func NewCarParkHandler(store *repository.Store, cloud cloudinary.Client, log *zap.Logger) *CarParkHandler {
	return &CarParkHandler{store: store, cloud: cloud, log: log}
}

type BayRequest struct {
	BayNumber     int    `json:"bay_number" binding:"required"`
	VehicleSize   string `json:"vehicle_size" binding:"omitempty,oneof=small medium large van"`
	HasEVCharging bool   `json:"has_ev_charging"`
	Accessible    bool   `json:"accessible"`
	Description   string `json:"description"`
}

type CreateCarParkRequest struct {
	AddressLine1       string       `json:"address_line1" binding:"required"`
	AddressLine2       string       `json:"address_line2"`
	City               string       `json:"city" binding:"required"`
	Postcode           string       `json:"postcode" binding:"required"`
	Latitude           *float64     `json:"latitude"`
	Longitude          *float64     `json:"longitude"`
	OpenTime           string       `json:"open_time"`
	CloseTime          string       `json:"close_time"`
	AccessInstructions string       `json:"access_instructions"`
	Pricing            string       `json:"pricing"`
	Bays               []BayRequest `json:"bays" binding:"required,min=1,dive"`
}

func (h *CarParkHandler) Create(c *gin.Context) {
	var req CreateCarParkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cp := &models.CarPark{
		UserID:             middleware.GetUserID(c),
		AddressLine1:       req.AddressLine1,
		AddressLine2:       req.AddressLine2,
		City:               req.City,
		Postcode:           req.Postcode,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		OpenTime:           req.OpenTime,
		CloseTime:          req.CloseTime,
		AccessInstructions: req.AccessInstructions,
		Pricing:            req.Pricing,
	}
	err := h.store.Transaction(func(tx *repository.Store) error {
		if err := tx.CarParks.Create(cp); err != nil {
			return err
		}
		bays := make([]models.Bay, 0, len(req.Bays))
		for _, b := range req.Bays {
			size := b.VehicleSize
			if size == "" {
				size = domain.VehicleSizeMedium
			}
			bays = append(bays, models.Bay{
				CarParkID:     cp.ID,
				BayNumber:     b.BayNumber,
				VehicleSize:   size,
				HasEVCharging: b.HasEVCharging,
				Accessible:    b.Accessible,
				Description:   b.Description,
				IsAvailable:   true,
			})
		}
		return tx.Bays.CreateBatch(bays)
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out, err := h.store.CarParks.GetByID(cp.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CarParkHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	cp, err := h.store.CarParks.GetByID(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

type UpdateCarParkRequest struct {
	AddressLine1       *string  `json:"address_line1"`
	AddressLine2       *string  `json:"address_line2"`
	City               *string  `json:"city"`
	Postcode           *string  `json:"postcode"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	OpenTime           *string  `json:"open_time"`
	CloseTime          *string  `json:"close_time"`
	AccessInstructions *string  `json:"access_instructions"`
	Pricing            *string  `json:"pricing"`
}

func (h *CarParkHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	cp, err := h.ownedCarPark(c, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req UpdateCarParkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AddressLine1 != nil {
		cp.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		cp.AddressLine2 = *req.AddressLine2
	}
	if req.City != nil {
		cp.City = *req.City
	}
	if req.Postcode != nil {
		cp.Postcode = *req.Postcode
	}
	if req.Latitude != nil {
		cp.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		cp.Longitude = req.Longitude
	}
	if req.OpenTime != nil {
		cp.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		cp.CloseTime = *req.CloseTime
	}
	if req.AccessInstructions != nil {
		cp.AccessInstructions = *req.AccessInstructions
	}
	if req.Pricing != nil {
		cp.Pricing = *req.Pricing
	}
	if err := h.store.CarParks.Update(cp); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *CarParkHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	if _, err := h.ownedCarPark(c, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.store.CarParks.SoftDelete(id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "car park removed"})
}

func (h *CarParkHandler) ListMine(c *gin.Context) {
	parks, err := h.store.CarParks.ListByOwner(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car_parks": parks})
}

// Search filters by postcode or city substring via ?q=.
func (h *CarParkHandler) Search(c *gin.Context) {
	parks, err := h.store.CarParks.Search(c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"car_parks": parks})
}

type nearbyCarPark struct {
	models.CarPark
	DistanceKm float64 `json:"distance_km"`
}

// Nearby returns car parks within ?radius_km= of ?lat=,?lng=, nearest first.
func (h *CarParkHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}
	radius := 5.0
	if r := c.Query("radius_km"); r != "" {
		if v, err := strconv.ParseFloat(r, 64); err == nil && v > 0 {
			radius = v
		}
	}
	parks, err := h.store.CarParks.Search("")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]nearbyCarPark, 0)
	for _, cp := range parks {
		if cp.Latitude == nil || cp.Longitude == nil {
			continue
		}
		d := location.HaversineKm(lat, lng, *cp.Latitude, *cp.Longitude)
		if d <= radius {
			out = append(out, nearbyCarPark{CarPark: cp, DistanceKm: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	c.JSON(http.StatusOK, gin.H{"car_parks": out})
}

// UploadPhoto accepts a multipart "photo" file and stores it via Cloudinary.
func (h *CarParkHandler) UploadPhoto(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo uploads are not configured"})
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	cp, err := h.ownedCarPark(c, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer f.Close()
	publicID := fmt.Sprintf("carparks/carpark_%d", cp.ID)
	url, err := h.cloud.UploadImage(c.Request.Context(), f, "carparks", fmt.Sprintf("carpark_%d", cp.ID))
	if err != nil {
		h.log.Error("photo upload failed", zap.Uint("carpark_id", cp.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "photo upload failed"})
		return
	}
	cp.PhotoURL = url
	if err := h.store.CarParks.Update(cp); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"photo_url":     url,
		"thumbnail_url": h.cloud.ImageURL(publicID, 0),
	})
}

// BookingLog lists every reservation against the owner's car park.
func (h *CarParkHandler) BookingLog(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		return
	}
	if _, err := h.ownedCarPark(c, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	log, err := h.store.Reservations.ListByCarPark(id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": log})
}

func (h *CarParkHandler) ownedCarPark(c *gin.Context, id uint) (*models.CarPark, error) {
	cp, err := h.store.CarParks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cp.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return cp, nil
}

func parseID(c *gin.Context, param string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, err
	}
	return uint(v), nil
}
