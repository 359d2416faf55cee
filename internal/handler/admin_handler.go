package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/internal/dto"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/pkg/response"
)

// AdminHandler handles moderation endpoints under /admin/events
type AdminHandler struct {
	eventService service.EventService
	queryService service.EventQueryService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(eventService service.EventService, queryService service.EventQueryService) *AdminHandler {
	return &AdminHandler{
		eventService: eventService,
		queryService: queryService,
	}
}

// Search handles GET /admin/events
func (h *AdminHandler) Search(c *gin.Context) {
	var query dto.AdminSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}
	filter, page, err := query.ToDomain()
	if err != nil {
		handleError(c, err)
		return
	}

	events, err := h.queryService.SearchAdmin(c.Request.Context(), filter, page)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventFullResponses(events))
}

// Update handles PATCH /admin/events/:eventId
func (h *AdminHandler) Update(c *gin.Context) {
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

	event, err := h.eventService.UpdateEventByAdmin(c.Request.Context(), eventID, patch)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventFullResponse(event))
}
