package server

import (
	"recipehub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RatePost handles PUT /api/posts/:id/ratings
// @Summary Rate post
// @Description Set one sub-score (difficulty 0-3, price 0-3, overall 0-5) and return the recomputed aggregate
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body rateRequest true "Rating"
// @Success 200 {object} service.RatingResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/ratings [put]
func (s *Server) RatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req rateRequest
	if err := parseBody(c, &req); err != nil {
		return respond(c, err)
	}

	result, err := s.ratingService.Rate(c.UserContext(), currentUserID(c), id, models.RatingKind(req.Kind), *req.Score)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// ClearRating handles DELETE /api/posts/:id/ratings/:kind
// @Summary Clear rating
// @Description Clear the caller's sub-score of one kind
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param kind path string true "Rating kind (difficulty, price, overall)"
// @Success 200 {object} service.RatingResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/ratings/{kind} [delete]
func (s *Server) ClearRating(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.ratingService.ClearRating(c.UserContext(), currentUserID(c), id, models.RatingKind(c.Params("kind")))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// GetRatings handles GET /api/posts/:id/ratings
// @Summary List ratings
// @Description List every rating row of a recipe
// @Tags ratings
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Rating
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/ratings [get]
func (s *Server) GetRatings(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	ratings, err := s.ratingService.ListRatings(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(ratings)
}
