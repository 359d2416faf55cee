package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/internal/dto"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/pkg/response"
)

// RequestHandler handles participation request endpoints
type RequestHandler struct {
	requestService service.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// ListOwn handles GET /users/:userId/requests
func (h *RequestHandler) ListOwn(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}

	requests, err := h.requestService.GetUserRequests(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToRequestResponses(requests))
}

// Create handles POST /users/:userId/requests?eventId=
func (h *RequestHandler) Create(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}
	eventID, err := queryID(c, "eventId")
	if err != nil {
		handleError(c, err)
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), userID, eventID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, dto.ToRequestResponse(request))
}

// Cancel handles PATCH /users/:userId/requests/:requestId/cancel
func (h *RequestHandler) Cancel(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}
	requestID, err := pathID(c, "requestId")
	if err != nil {
		handleError(c, err)
		return
	}

	request, err := h.requestService.CancelRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToRequestResponse(request))
}

// ListForEvent handles GET /users/:userId/events/:eventId/requests
func (h *RequestHandler) ListForEvent(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		handleError(c, err)
		return
	}

	requests, err := h.requestService.GetEventRequests(c.Request.Context(), userID, eventID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToRequestResponses(requests))
}

// UpdateStatuses handles PATCH /users/:userId/events/:eventId/requests
func (h *RequestHandler) UpdateStatuses(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		handleError(c, err)
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	update, err := req.ToDomain()
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.requestService.UpdateRequestStatuses(c.Request.Context(), userID, eventID, update)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToStatusUpdateResponse(result))
}
