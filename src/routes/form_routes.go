package routes

import (
	"Backend-Feedback/src/controllers"
	"Backend-Feedback/src/middleware"
	"Backend-Feedback/src/models"

	"github.com/gofiber/fiber/v2"
)

// formRoutes กำหนด route สำหรับ form management
func formRoutes(router fiber.Router, deps Dependencies) {
	h := controllers.NewFormController(deps.Forms, deps.Questions, deps.FrontendURL)
	auth := middleware.AuthJWT(deps.Tokens, deps.Sessions)

	forms := router.Group("/forms", auth)

	// static paths first so they are not taken as a formId
	forms.Post("/", middleware.RequireRoles(models.RoleInstructor), h.CreateForm)
	forms.Get("/department", middleware.RequireRoles(models.RoleStudent), h.GetFormsByDepartment)
	forms.Get("/user", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), h.GetFormsByUser)
	forms.Get("/admin", middleware.RequireRoles(models.RoleAdmin), h.GetAllForms)
	forms.Patch("/publish", h.TogglePublish)
	forms.Patch("/question/:questionId", h.UpdateQuestion)
	forms.Delete("/question/:questionId", h.DeleteQuestion)

	forms.Get("/:formId/qrcode", h.GetFormQRCode)
	forms.Get("/:formId", h.GetFormByID)
	forms.Patch("/:formId", h.UpdateForm)
	forms.Delete("/:formId", h.DeleteForm)
	forms.Post("/:formId/questions", h.AddQuestion)
}

func feedbackRoutes(router fiber.Router, deps Dependencies) {
	h := controllers.NewFeedbackController(deps.Feedbacks)
	auth := middleware.AuthJWT(deps.Tokens, deps.Sessions)

	feedbacks := router.Group("/feedbacks", auth)
	feedbacks.Post("/response/:formId", middleware.RequireRoles(models.RoleStudent), middleware.SubmitRateLimiter(), h.SubmitFeedback)
	feedbacks.Get("/exists/:formId", middleware.RequireRoles(models.RoleStudent), h.HasSubmitted)
	feedbacks.Get("/all/response/:formId", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), h.GetAggregatedResponses)
	feedbacks.Get("/all/feedback/:formId", middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin), h.GetAllFeedback)
}
