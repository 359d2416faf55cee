package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/explore-events/internal/domain"
	"github.com/prohmpiriya/explore-events/internal/dto"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/pkg/response"
)

// RatingHandler handles votes under /users/:userId/events/:eventId/rating
type RatingHandler struct {
	ratingService service.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func voteParams(c *gin.Context) (userID, eventID int64, value domain.VoteValue, err error) {
	if userID, err = pathID(c, "userId"); err != nil {
		return
	}
	if eventID, err = pathID(c, "eventId"); err != nil {
		return
	}
	value, err = domain.ParseVote(c.Query("value"))
	return
}

// Add handles POST /users/:userId/events/:eventId/rating?value=
func (h *RatingHandler) Add(c *gin.Context) {
	userID, eventID, value, err := voteParams(c)
	if err != nil {
		handleError(c, err)
		return
	}

	rating, err := h.ratingService.AddRating(c.Request.Context(), userID, eventID, value)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, dto.RatingResponse{EventID: eventID, Rating: rating})
}

// Delete handles DELETE /users/:userId/events/:eventId/rating?value=
func (h *RatingHandler) Delete(c *gin.Context) {
	userID, eventID, value, err := voteParams(c)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), userID, eventID, value); err != nil {
		handleError(c, err)
		return
	}

	response.NoContent(c)
}
