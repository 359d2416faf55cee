package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/internal/dto"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/pkg/response"
)

// PublicHandler handles the anonymous catalog endpoints under /events
type PublicHandler struct {
	queryService service.EventQueryService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(queryService service.EventQueryService) *PublicHandler {
	return &PublicHandler{queryService: queryService}
}

func visitOf(c *gin.Context) service.Visit {
	return service.Visit{URI: c.Request.URL.Path, IP: c.ClientIP()}
}

// Search handles GET /events
func (h *PublicHandler) Search(c *gin.Context) {
	var query dto.PublicSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleBindError(c, err)
		return
	}
	filter, page, err := query.ToDomain()
	if err != nil {
		handleError(c, err)
		return
	}

	events, err := h.queryService.SearchPublic(c.Request.Context(), filter, page, visitOf(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventShortResponses(events))
}

// Get handles GET /events/:id
func (h *PublicHandler) Get(c *gin.Context) {
	eventID, err := pathID(c, "id")
	if err != nil {
		handleError(c, err)
		return
	}

	event, err := h.queryService.GetPublicEvent(c.Request.Context(), eventID, visitOf(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, dto.ToEventFullResponse(event))
}
