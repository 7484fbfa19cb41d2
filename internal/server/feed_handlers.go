package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?tags=a,b
// @Summary Following feed
// @Description Recipes by followed users, oldest first, filtered by tags
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param tags query string false "Comma-separated tags; a post must carry all of them"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	ctx := c.UserContext()
	posts, err := s.feedService.FollowingFeed(ctx, currentUserID(c), parseTagsQuery(c))
	if err != nil {
		return respond(c, err)
	}
	if err := s.postService.AttachImages(ctx, posts); err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// Discover handles GET /api/discover?tags=a,b&limit=n
// @Summary Discover popular posts
// @Description Recipes ranked by popularity, filtered by tags
// @Tags feed
// @Produce json
// @Param tags query string false "Comma-separated tags; a post must carry all of them"
// @Param limit query int false "Maximum number of results"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /discover [get]
func (s *Server) Discover(c *fiber.Ctx) error {
	ctx := c.UserContext()
	posts, err := s.discoveryService.Popular(ctx, parseTagsQuery(c), c.QueryInt("limit", 0))
	if err != nil {
		return respond(c, err)
	}
	if err := s.postService.AttachImages(ctx, posts); err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}
