package controllers

import (
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/feedbacks"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
)

type FeedbackController struct {
	feedbacks *feedbacks.Service
}

func NewFeedbackController(svc *feedbacks.Service) *FeedbackController {
	return &FeedbackController{feedbacks: svc}
}

// SubmitFeedback godoc
// @Summary      Submit responses to a form
// @Description  One response set per student and form
// @Tags         feedbacks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Param        body body models.SubmitFeedbackRequest true "Responses"
// @Success      201  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /feedbacks/response/{formId} [post]
func (h *FeedbackController) SubmitFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.SubmitFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	fb, err := h.feedbacks.Submit(ctx, identity, c.Params("formId"), req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, fb, "Feedback submitted successfully")
}

// HasSubmitted godoc
// @Summary      Whether the caller already answered a form
// @Tags         feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Success      200  {object}  models.ApiResponse
// @Router       /feedbacks/exists/{formId} [get]
func (h *FeedbackController) HasSubmitted(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	state, err := h.feedbacks.HasSubmitted(ctx, identity, c.Params("formId"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, state, "Submission state fetched successfully")
}

// GetAggregatedResponses godoc
// @Summary      Option counts and free text per question
// @Tags         feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Param        page   query  int  false  "Page of questions; omit for all"
// @Param        limit  query  int  false  "Questions per page; omit for all"
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /feedbacks/all/response/{formId} [get]
func (h *FeedbackController) GetAggregatedResponses(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var page models.PaginationParams
	if c.Query("limit") != "" {
		page = pagination(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.feedbacks.Aggregate(ctx, identity, c.Params("formId"), page)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, result, "Responses aggregated successfully")
}

// GetAllFeedback godoc
// @Summary      Raw response sets of a form
// @Tags         feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Param        page   query  int  false  "Page number" default(1)
// @Param        limit  query  int  false  "Number of items per page" default(10)
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /feedbacks/all/feedback/{formId} [get]
func (h *FeedbackController) GetAllFeedback(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.feedbacks.ListResponses(ctx, identity, c.Params("formId"), pagination(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, page, "Feedback fetched successfully")
}
