// README: Driver-facing endpoints: availability window and matched trips.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetline/internal/modules/availability"
	"fleetline/internal/types"
)

type DriverHandler struct {
	store   *availability.Store
	matcher *availability.Service
}

func NewDriverHandler(store *availability.Store, matcher *availability.Service) *DriverHandler {
	return &DriverHandler{store: store, matcher: matcher}
}

type upsertAvailabilityRequest struct {
	Location      string    `json:"location" binding:"required"`
	AvailableFrom time.Time `json:"available_from" binding:"required"`
	AvailableTo   time.Time `json:"available_to" binding:"required"`
	CapacityClass int       `json:"capacity_class" binding:"required"`
}

func (h *DriverHandler) UpsertAvailability(c *gin.Context) {
	var req upsertAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.AvailableTo.After(req.AvailableFrom) {
		writeError(c, http.StatusBadRequest, "available_to must be after available_from")
		return
	}
	a := &availability.Availability{
		DriverID:      types.ID(c.Param("id")),
		Location:      req.Location,
		From:          req.AvailableFrom,
		To:            req.AvailableTo,
		CapacityClass: req.CapacityClass,
	}
	if err := h.store.Upsert(c.Request.Context(), a); err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

type availabilityResponse struct {
	DriverID      string    `json:"driver_id"`
	Location      string    `json:"location"`
	AvailableFrom time.Time `json:"available_from"`
	AvailableTo   time.Time `json:"available_to"`
	CapacityClass int       `json:"capacity_class"`
}

func (h *DriverHandler) GetAvailability(c *gin.Context) {
	a, err := h.store.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, availabilityResponse{
		DriverID:      string(a.DriverID),
		Location:      a.Location,
		AvailableFrom: a.From,
		AvailableTo:   a.To,
		CapacityClass: a.CapacityClass,
	})
}

func (h *DriverHandler) MatchedTrips(c *gin.Context) {
	trips, err := h.matcher.FindTripsForDriver(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	out := make([]tripResponse, 0, len(trips))
	for i := range trips {
		out = append(out, toTripResponse(&trips[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"trips": out})
}
