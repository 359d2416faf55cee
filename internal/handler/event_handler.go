package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/internal/dto"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/pkg/response"
)

// EventHandler handles the initiator's event endpoints under /users/:userId/events
type EventHandler struct {
	eventService service.EventService
	queryService service.EventQueryService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService, queryService service.EventQueryService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		queryService: queryService,
	}
}

// Create handles POST /users/:userId/events
func (h *EventHandler) Create(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}

	var req dto.NewEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), userID, req.ToDomain())
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, dto.ToEventFullResponse(event))
}

// List handles GET /users/:userId/events
func (h *EventHandler) List(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		handleError(c, err)
		return
	}

	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}
	page, err := query.ToDomain()
	if err != nil {
		handleError(c, err)
		return
	}

	events, err := h.queryService.GetUserEvents(c.Request.Context(), userID, page)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventShortResponses(events))
}

// Get handles GET /users/:userId/events/:eventId
func (h *EventHandler) Get(c *gin.Context) {
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

	event, err := h.queryService.GetUserEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventFullResponse(event))
}

// Update handles PATCH /users/:userId/events/:eventId
func (h *EventHandler) Update(c *gin.Context) {
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

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		handleError(c, err)
		return
	}

	event, err := h.eventService.UpdateEventByUser(c.Request.Context(), userID, eventID, patch)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventFullResponse(event))
}
