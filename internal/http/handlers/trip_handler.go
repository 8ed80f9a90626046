// README: Company-facing trip endpoints: CRUD, lifecycle actions, matching.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetline/internal/modules/assignment"
	"fleetline/internal/modules/availability"
	"fleetline/internal/modules/trip"
	"fleetline/internal/types"
)

type TripHandler struct {
	trips    *trip.Service
	workflow *assignment.Service
	matcher  *availability.Service
}

func NewTripHandler(trips *trip.Service, workflow *assignment.Service, matcher *availability.Service) *TripHandler {
	return &TripHandler{trips: trips, workflow: workflow, matcher: matcher}
}

type moneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createTripRequest struct {
	CompanyID     string    `json:"company_id" binding:"required"`
	Pickup        string    `json:"pickup" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	TripDate      string    `json:"trip_date" binding:"required"`
	DepartureTime string    `json:"departure_time" binding:"required"`
	Passengers    int       `json:"passengers" binding:"required"`
	CapacityClass int       `json:"capacity_class" binding:"required"`
	CompanyPrice  moneyDTO  `json:"company_price" binding:"required"`
	DriverPrice   *moneyDTO `json:"driver_price"`
	VisaNumber    *string   `json:"visa_number"`
}

type tripResponse struct {
	ID            string   `json:"id"`
	CompanyID     string   `json:"company_id"`
	DriverID      *string  `json:"driver_id,omitempty"`
	Pickup        string   `json:"pickup"`
	Destination   string   `json:"destination"`
	TripDate      string   `json:"trip_date"`
	DepartureTime string   `json:"departure_time"`
	Passengers    int      `json:"passengers"`
	CapacityClass int      `json:"capacity_class"`
	CompanyPrice  moneyDTO `json:"company_price"`
	DriverPrice   moneyDTO `json:"driver_price"`
	VisaNumber    *string  `json:"visa_number,omitempty"`
	Status        string   `json:"status"`
}

func toTripResponse(t *trip.Trip) tripResponse {
	date, tm := splitDepartsAt(t.DepartsAt)
	r := tripResponse{
		ID:            string(t.ID),
		CompanyID:     string(t.CompanyID),
		Pickup:        t.Pickup,
		Destination:   t.Destination,
		TripDate:      date,
		DepartureTime: tm,
		Passengers:    t.Passengers,
		CapacityClass: t.CapacityClass,
		CompanyPrice:  moneyDTO{Amount: t.CompanyPrice.Amount, Currency: t.CompanyPrice.Currency},
		DriverPrice:   moneyDTO{Amount: t.DriverPrice.Amount, Currency: t.DriverPrice.Currency},
		VisaNumber:    t.VisaNumber,
		Status:        string(t.Status),
	}
	if t.DriverID != nil {
		d := string(*t.DriverID)
		r.DriverID = &d
	}
	return r
}

func (h *TripHandler) Create(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	departsAt, err := parseDepartsAt(req.TripDate, req.DepartureTime)
	if err != nil {
		writeError(c, http.StatusBadRequest, "trip_date/departure_time must be YYYY-MM-DD and HH:MM")
		return
	}

	cmd := trip.CreateCommand{
		CompanyID:     types.ID(req.CompanyID),
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		DepartsAt:     departsAt,
		Passengers:    req.Passengers,
		CapacityClass: req.CapacityClass,
		CompanyPrice:  types.Money{Amount: req.CompanyPrice.Amount, Currency: req.CompanyPrice.Currency},
		VisaNumber:    req.VisaNumber,
	}
	if req.DriverPrice != nil {
		cmd.DriverPrice = &types.Money{Amount: req.DriverPrice.Amount, Currency: req.DriverPrice.Currency}
	}

	id, err := h.trips.Create(c.Request.Context(), cmd)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": string(id)})
}

func (h *TripHandler) Get(c *gin.Context) {
	t, err := h.trips.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toTripResponse(t))
}

func (h *TripHandler) Update(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	departsAt, err := parseDepartsAt(req.TripDate, req.DepartureTime)
	if err != nil {
		writeError(c, http.StatusBadRequest, "trip_date/departure_time must be YYYY-MM-DD and HH:MM")
		return
	}

	cmd := trip.UpdateCommand{
		TripID:        types.ID(c.Param("id")),
		CompanyID:     types.ID(req.CompanyID),
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		DepartsAt:     departsAt,
		Passengers:    req.Passengers,
		CapacityClass: req.CapacityClass,
		CompanyPrice:  types.Money{Amount: req.CompanyPrice.Amount, Currency: req.CompanyPrice.Currency},
		VisaNumber:    req.VisaNumber,
	}
	if req.DriverPrice != nil {
		cmd.DriverPrice = types.Money{Amount: req.DriverPrice.Amount, Currency: req.DriverPrice.Currency}
	} else {
		cmd.DriverPrice = cmd.CompanyPrice
	}

	if err := h.trips.Update(c.Request.Context(), cmd); err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

func (h *TripHandler) ListByCompany(c *gin.Context) {
	trips, err := h.trips.ListByCompany(c.Request.Context(), types.ID(c.Param("id")))
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

type companyActionRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
}

type driverActionRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

func (h *TripHandler) Cancel(c *gin.Context) {
	var req companyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.CancelTrip(c.Request.Context(), assignment.CancelTripCommand{
		TripID:    types.ID(c.Param("id")),
		CompanyID: types.ID(req.CompanyID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "cancelled"})
}

type assignDriverRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
	DriverID  string `json:"driver_id" binding:"required"`
}

func (h *TripHandler) AssignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.AssignDriverDirect(c.Request.Context(), assignment.AssignCommand{
		TripID:    types.ID(c.Param("id")),
		DriverID:  types.ID(req.DriverID),
		CompanyID: types.ID(req.CompanyID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "assigned"})
}

func (h *TripHandler) UnassignDriver(c *gin.Context) {
	var req companyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.UnassignDriver(c.Request.Context(), assignment.UnassignCommand{
		TripID:    types.ID(c.Param("id")),
		CompanyID: types.ID(req.CompanyID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "unassigned"})
}

func (h *TripHandler) Start(c *gin.Context) {
	var req driverActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.StartTrip(c.Request.Context(), assignment.StartCommand{
		TripID:   types.ID(c.Param("id")),
		DriverID: types.ID(req.DriverID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "in_progress"})
}

type completeTripRequest struct {
	DriverID      string `json:"driver_id" binding:"required"`
	Rating        *int   `json:"rating"`
	RatingComment string `json:"rating_comment"`
}

func (h *TripHandler) Complete(c *gin.Context) {
	var req completeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.CompleteTrip(c.Request.Context(), assignment.CompleteCommand{
		TripID:        types.ID(c.Param("id")),
		DriverID:      types.ID(req.DriverID),
		Rating:        req.Rating,
		RatingComment: req.RatingComment,
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "completed"})
}

type candidateResponse struct {
	DriverID      string `json:"driver_id"`
	Location      string `json:"location"`
	CapacityClass int    `json:"capacity_class"`
}

func (h *TripHandler) Candidates(c *gin.Context) {
	matched, err := h.matcher.FindDriversForTrip(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	out := make([]candidateResponse, 0, len(matched))
	for _, a := range matched {
		out = append(out, candidateResponse{
			DriverID:      string(a.DriverID),
			Location:      a.Location,
			CapacityClass: a.CapacityClass,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"drivers": out})
}

func (h *TripHandler) RequestReassignment(c *gin.Context) {
	var req companyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.workflow.RequestReassignment(c.Request.Context(), assignment.ReassignmentCommand{
		TripID:    types.ID(c.Param("id")),
		CompanyID: types.ID(req.CompanyID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"request_id": string(id)})
}
