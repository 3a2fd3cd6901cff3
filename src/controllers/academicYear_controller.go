package controllers

import (
	"Backend-Feedback/src/models"
	"Backend-Feedback/src/services/academicyears"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
)

type AcademicYearController struct {
	years *academicyears.Service
}

func NewAcademicYearController(svc *academicyears.Service) *AcademicYearController {
	return &AcademicYearController{years: svc}
}

// AddAcademicYear godoc
// @Summary      Add an academic year
// @Tags         academic-years
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.AddAcademicYearRequest true "Academic year"
// @Success      201  {object}  models.ApiResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /academic-years [post]
func (h *AcademicYearController) AddAcademicYear(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	var req models.AddAcademicYearRequest
	if err := parseBody(c, &req); err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	year, err := h.years.Add(ctx, identity, req)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, year, "Academic year added successfully")
}

// GetAcademicYears godoc
// @Summary      List academic years
// @Tags         academic-years
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.ApiResponse
// @Router       /academic-years [get]
func (h *AcademicYearController) GetAcademicYears(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	years, err := h.years.List(ctx)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, years, "Academic years fetched successfully")
}

// DeleteAcademicYear godoc
// @Summary      Delete an academic year
// @Tags         academic-years
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Academic year ID"
// @Success      200  {object}  models.ApiResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /academic-years/{id} [delete]
func (h *AcademicYearController) DeleteAcademicYear(c *fiber.Ctx) error {
	identity, err := identityOf(c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.years.Delete(ctx, identity, c.Params("id")); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Respond(c, fiber.StatusOK, nil, "Academic year deleted successfully")
}
