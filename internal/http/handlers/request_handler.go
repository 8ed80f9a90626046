// README: Trip request endpoints: propose, accept, reject, withdraw, and the
// driver side of reassignment approvals.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetline/internal/modules/assignment"
	"fleetline/internal/modules/triprequest"
	"fleetline/internal/types"
)

type RequestHandler struct {
	workflow *assignment.Service
	requests *triprequest.Store
}

func NewRequestHandler(workflow *assignment.Service, requests *triprequest.Store) *RequestHandler {
	return &RequestHandler{workflow: workflow, requests: requests}
}

type createRequestRequest struct {
	TripID    string `json:"trip_id" binding:"required"`
	DriverID  string `json:"driver_id" binding:"required"`
	Direction string `json:"direction" binding:"required"`
	ActorID   string `json:"actor_id" binding:"required"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.workflow.CreateRequest(c.Request.Context(), assignment.CreateRequestCommand{
		TripID:    types.ID(req.TripID),
		DriverID:  types.ID(req.DriverID),
		Direction: triprequest.Direction(req.Direction),
		ActorID:   types.ID(req.ActorID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"id": string(id)})
}

type actorRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *RequestHandler) Accept(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.AcceptRequest(c.Request.Context(), assignment.AcceptCommand{
		RequestID: types.ID(c.Param("id")),
		ActorID:   types.ID(req.ActorID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "accepted"})
}

func (h *RequestHandler) Reject(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.RejectRequest(c.Request.Context(), assignment.RejectCommand{
		RequestID: types.ID(c.Param("id")),
		ActorID:   types.ID(req.ActorID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "rejected"})
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.CancelRequest(c.Request.Context(), assignment.CancelRequestCommand{
		RequestID:   types.ID(c.Param("id")),
		RequestorID: types.ID(req.ActorID),
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "cancelled"})
}

type reassignmentResponseRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
	Accept   *bool  `json:"accept" binding:"required"`
}

func (h *RequestHandler) RespondToReassignment(c *gin.Context) {
	var req reassignmentResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.workflow.RespondToReassignment(c.Request.Context(), assignment.ReassignmentResponseCommand{
		RequestID: types.ID(c.Param("id")),
		DriverID:  types.ID(req.DriverID),
		Accept:    *req.Accept,
	})
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "resolved"})
}

type requestResponse struct {
	ID         string     `json:"id"`
	TripID     string     `json:"trip_id"`
	DriverID   string     `json:"driver_id"`
	Direction  string     `json:"direction"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (h *RequestHandler) ListPendingForDriver(c *gin.Context) {
	reqs, err := h.requests.ListPendingForDriver(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	out := make([]requestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, requestResponse{
			ID:         string(r.ID),
			TripID:     string(r.TripID),
			DriverID:   string(r.DriverID),
			Direction:  string(r.Direction),
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt,
			ResolvedAt: r.ResolvedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"requests": out})
}
