// README: HTTP route table.
package http

import (
	"github.com/gin-gonic/gin"

	"fleetline/internal/http/handlers"
	"fleetline/internal/http/middleware"
)

type Handlers struct {
	Trips    *handlers.TripHandler
	Requests *handlers.RequestHandler
	Drivers  *handlers.DriverHandler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	trips := api.Group("/trips")
	{
		trips.POST("", h.Trips.Create)
		trips.GET("/:id", h.Trips.Get)
		trips.PUT("/:id", h.Trips.Update)
		trips.POST("/:id/cancel", h.Trips.Cancel)
		trips.POST("/:id/assign", h.Trips.AssignDriver)
		trips.POST("/:id/unassign", h.Trips.UnassignDriver)
		trips.POST("/:id/start", h.Trips.Start)
		trips.POST("/:id/complete", h.Trips.Complete)
		trips.GET("/:id/candidates", h.Trips.Candidates)
		trips.POST("/:id/reassignment", h.Trips.RequestReassignment)
	}

	requests := api.Group("/requests")
	{
		requests.POST("", h.Requests.Create)
		requests.POST("/:id/accept", h.Requests.Accept)
		requests.POST("/:id/reject", h.Requests.Reject)
		requests.POST("/:id/cancel", h.Requests.Cancel)
		requests.POST("/:id/reassignment-response", h.Requests.RespondToReassignment)
	}

	drivers := api.Group("/drivers")
	{
		drivers.PUT("/:id/availability", h.Drivers.UpsertAvailability)
		drivers.GET("/:id/availability", h.Drivers.GetAvailability)
		drivers.GET("/:id/trips", h.Drivers.MatchedTrips)
		drivers.GET("/:id/requests", h.Requests.ListPendingForDriver)
	}

	companies := api.Group("/companies")
	{
		companies.GET("/:id/trips", h.Trips.ListByCompany)
	}

	return r
}
