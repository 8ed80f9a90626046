// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetline/internal/modules/assignment"
	"fleetline/internal/modules/availability"
	"fleetline/internal/modules/rating"
	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeWorkflowError maps the workflow error taxonomy onto HTTP status codes:
// not-found 404, forbidden 403, validation 400, invalid-state and conflict
// 409, everything else 500.
func writeWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrNotFound),
		errors.Is(err, triprequest.ErrNotFound),
		errors.Is(err, availability.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, assignment.ErrForbidden),
		errors.Is(err, trip.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, assignment.ErrValidation),
		errors.Is(err, trip.ErrValidation),
		errors.Is(err, rating.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, assignment.ErrInvalidState),
		errors.Is(err, assignment.ErrConflict),
		errors.Is(err, trip.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// parseDepartsAt combines the split trip_date and departure_time DTO fields.
func parseDepartsAt(tripDate, departureTime string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", tripDate+" "+departureTime)
}

// splitDepartsAt is the inverse, for responses.
func splitDepartsAt(t time.Time) (string, string) {
	return t.Format("2006-01-02"), t.Format("15:04")
}
