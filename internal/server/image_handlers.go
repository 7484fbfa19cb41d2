package server

import (
	"recipehub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images
// @Summary Upload image
// @Description Attach a base64 data URL image to the caller or to one of their posts
// @Tags images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body imageRequest true "Image"
// @Success 201 {object} models.Image
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	var req imageRequest
	if err := parseBody(c, &req); err != nil {
		return respond(c, err)
	}
	ownerType, err := models.ParseImageOwnerType(req.OwnerType)
	if err != nil {
		return respond(c, err)
	}

	img, err := s.imageService.Upload(c.UserContext(), currentUserID(c), ownerType, req.OwnerID, req.ImageData)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

// GetImage handles GET /api/images/:id
// @Summary Get image
// @Description Get image metadata and its public URL
// @Tags images
// @Produce json
// @Param id path int true "Image ID"
// @Success 200 {object} models.Image
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /images/{id} [get]
func (s *Server) GetImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	img, err := s.imageService.Get(c.UserContext(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(img)
}

// DeleteImage handles DELETE /api/images/:id
// @Summary Delete image
// @Description Delete an image uploaded by the caller
// @Tags images
// @Produce json
// @Security BearerAuth
// @Param id path int true "Image ID"
// @Success 204 "No Content"
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /images/{id} [delete]
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.imageService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
