package controllers

import (
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/imagefeedbacks"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
)

type ImageFeedbackController struct {
	images *imagefeedbacks.Service
}

func NewImageFeedbackController(svc *imagefeedbacks.Service) *ImageFeedbackController {
	return &ImageFeedbackController{images: svc}
}

// UploadImageFeedback godoc
// @Summary      Create image feedback
// @Tags         image-feedbacks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData  string  true  "Title"
// @Param        description  formData  string  true  "Description"
// @Param        images       formData  file    true  "Images (repeat the field for several)"
// @Success      201  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /image-feedbacks/upload [post]
func (h *ImageFeedbackController) UploadImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	req := models.CreateImageFeedbackRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	uploads, err := uploadedImages(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fb, err := h.images.Create(ctx, identity, req, uploads)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fb, "Image feedback created successfully")
}

// EditImageFeedback godoc
// @Summary      Edit image feedback
// @Description  Optional new images replace the current ones
// @Tags         image-feedbacks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true   "Image feedback ID"
// @Param        title        formData  string  false  "Title"
// @Param        description  formData  string  false  "Description"
// @Param        images       formData  file    false  "Replacement images"
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /image-feedbacks/edit/{id} [patch]
func (h *ImageFeedbackController) EditImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.EditImageFeedbackRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return utils.HandleError(c, err)
		}
	}
	uploads, err := uploadedImages(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fb, err := h.images.Edit(ctx, identity, c.Params("id"), req, uploads)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, fb, "Image feedback updated successfully")
}

// DeleteSingleImage godoc
// @Summary      Remove one image
// @Tags         image-feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path   string  true  "Image feedback ID"
// @Param        url  query  string  true  "Image URL to remove"
// @Success      200  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /image-feedbacks/delete-single-image/{id} [delete]
func (h *ImageFeedbackController) DeleteSingleImage(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fb, err := h.images.DeleteImage(ctx, identity, c.Params("id"), c.Query("url"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, fb, "Image removed successfully")
}

// DeleteImageFeedback godoc
// @Summary      Delete image feedback and its images
// @Tags         image-feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Image feedback ID"
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /image-feedbacks/delete/{id} [delete]
func (h *ImageFeedbackController) DeleteImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.images.Delete(ctx, identity, c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, nil, "Image feedback deleted successfully")
}

// GetImageFeedback godoc
// @Summary      Get image feedback
// @Tags         image-feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Image feedback ID"
// @Success      200  {object}  models.ApiResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /image-feedbacks/{id} [get]
func (h *ImageFeedbackController) GetImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fb, err := h.images.Get(ctx, identity, c.Params("id"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, fb, "Image feedback fetched successfully")
}

// GetMyImageFeedback godoc
// @Summary      Image feedback created by the caller
// @Tags         image-feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number" default(1)
// @Param        limit  query  int  false  "Number of items per page" default(10)
// @Success      200  {object}  models.ApiResponse
// @Router       /image-feedbacks/user/image-responses [get]
func (h *ImageFeedbackController) GetMyImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.images.ListMine(ctx, identity, pagination(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, page, "Image feedback fetched successfully")
}

// GetAllImageFeedback godoc
// @Summary      All image feedback (admin)
// @Tags         image-feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        status query  string  false  "pending, approved or rejected"
// @Param        page   query  int  false  "Page number" default(1)
// @Param        limit  query  int  false  "Number of items per page" default(10)
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /image-feedbacks/all/image-responses [get]
func (h *ImageFeedbackController) GetAllImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.images.ListAll(ctx, identity, models.ModerationStatus(c.Query("status")), pagination(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, page, "Image feedback fetched successfully")
}

// ModerateImageFeedback godoc
// @Summary      Set the moderation status
// @Tags         image-feedbacks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Image feedback ID"
// @Param        body body models.ModerateImageFeedbackRequest true "Status"
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /image-feedbacks/moderate/{id} [patch]
func (h *ImageFeedbackController) ModerateImageFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.ModerateImageFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fb, err := h.images.Moderate(ctx, identity, c.Params("id"), req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, fb, "Image feedback moderated successfully")
}
