package controllers

import (
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/qrcode"
	"Backend-Feedback/src/services/forms"
	"Backend-Feedback/src/services/questions"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
)

type FormController struct {
	forms       *forms.Service
	questions   *questions.Service
	frontendURL string
}

func NewFormController(formSvc *forms.Service, questionSvc *questions.Service, frontendURL string) *FormController {
	return &FormController{forms: formSvc, questions: questionSvc, frontendURL: frontendURL}
}

// CreateForm godoc
// @Summary      Create a feedback form
// @Description  Create a form together with its ordered questions
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.CreateFormRequest true "Form and questions"
// @Success      201  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /forms [post]
func (h *FormController) CreateForm(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.CreateFormRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	form, err := h.forms.CreateForm(ctx, identity, req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, form, "Form created successfully")
}

// GetFormsByDepartment godoc
// @Summary      Published forms for the student's department and year
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number" default(1)
// @Param        limit  query  int  false  "Number of items per page" default(10)
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /forms/department [get]
func (h *FormController) GetFormsByDepartment(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.forms.ListPublishedForScope(ctx, identity, pagination(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, page, "Forms fetched successfully")
}

// GetFormsByUser godoc
// @Summary      Forms created by the caller
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number" default(1)
// @Param        limit  query  int  false  "Number of items per page" default(10)
// @Success      200  {object}  models.ApiResponse
// @Router       /forms/user [get]
func (h *FormController) GetFormsByUser(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.forms.ListByCreator(ctx, identity, pagination(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, page, "Forms fetched successfully")
}

// GetAllForms godoc
// @Summary      All forms (admin)
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page number" default(1)
// @Param        limit  query  int  false  "Number of items per page" default(10)
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /forms/admin [get]
func (h *FormController) GetAllForms(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.forms.ListAll(ctx, identity, pagination(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, page, "Forms fetched successfully")
}

// TogglePublish godoc
// @Summary      Publish or unpublish a form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.TogglePublishRequest true "Form to toggle"
// @Success      200  {object}  models.ApiResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /forms/publish [patch]
func (h *FormController) TogglePublish(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.TogglePublishRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	form, err := h.forms.TogglePublish(ctx, identity, req.FormID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	msg := "Form unpublished successfully"
	if form.IsPublished {
		msg = "Form published successfully"
	}
	return utils.Respond(c, fiber.StatusOK, form, msg)
}

// GetFormByID godoc
// @Summary      Get a form with its questions
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Success      200  {object}  models.ApiResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{formId} [get]
func (h *FormController) GetFormByID(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	form, err := h.forms.GetForm(ctx, identity, c.Params("formId"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, form, "Form fetched successfully")
}

// UpdateForm godoc
// @Summary      Update a form's title or description
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Param        body body models.UpdateFormRequest true "Fields to change"
// @Success      200  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /forms/{formId} [patch]
func (h *FormController) UpdateForm(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.UpdateFormRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	form, err := h.forms.UpdateForm(ctx, identity, c.Params("formId"), req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, form, "Form updated successfully")
}

// DeleteForm godoc
// @Summary      Delete a form with its questions and responses
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /forms/{formId} [delete]
func (h *FormController) DeleteForm(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.forms.DeleteForm(ctx, identity, c.Params("formId")); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, nil, "Form deleted successfully")
}

// AddQuestion godoc
// @Summary      Append a question to a form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        formId   path  string  true  "Form ID"
// @Param        body body models.QuestionRequest true "Question"
// @Success      201  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /forms/{formId}/questions [post]
func (h *FormController) AddQuestion(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.QuestionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	q, err := h.forms.AddQuestion(ctx, identity, c.Params("formId"), req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, q, "Question added successfully")
}

// UpdateQuestion godoc
// @Summary      Update a question
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        questionId   path  string  true  "Question ID"
// @Param        body body models.UpdateQuestionRequest true "Fields to change"
// @Success      200  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /forms/question/{questionId} [patch]
func (h *FormController) UpdateQuestion(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.UpdateQuestionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	q, err := h.questions.Update(ctx, identity, c.Params("questionId"), req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, q, "Question updated successfully")
}

// DeleteQuestion godoc
// @Summary      Delete an unanswered question
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        questionId   path  string  true  "Question ID"
// @Success      200  {object}  models.ApiResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /forms/question/{questionId} [delete]
func (h *FormController) DeleteQuestion(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.questions.Delete(ctx, identity, c.Params("questionId")); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, nil, "Question deleted successfully")
}

// GetFormQRCode godoc
// @Summary      QR code of the form's share link
// @Description  PNG that opens the form on the frontend
// @Tags         forms
// @Produce      png
// @Security     BearerAuth
// @Param        formId   path   string  true   "Form ID"
// @Param        size     query  int     false  "Width in pixels" default(256)
// @Success      200  {file}    binary
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{formId}/qrcode [get]
func (h *FormController) GetFormQRCode(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	form, err := h.forms.GetForm(ctx, identity, c.Params("formId"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	png, err := qrcode.GenerateQRCode(qrcode.FormLink(h.frontendURL, form.ID.Hex()), c.QueryInt("size", qrcode.DefaultSize))
	if err != nil {
		return utils.HandleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
