package routes

import (
	"Backend-Feedback/src/controllers"
	"Backend-Feedback/src/middleware"
	"Backend-Feedback/src/models"

	"github.com/gofiber/fiber/v2"
)

func imageFeedbackRoutes(router fiber.Router, deps Dependencies) {
	h := controllers.NewImageFeedbackController(deps.ImageFeedbacks)
	auth := middleware.AuthJWT(deps.Tokens, deps.Sessions)
	admin := middleware.RequireRoles(models.RoleAdmin)

	images := router.Group("/image-feedbacks", auth)
	images.Post("/upload", h.UploadImageFeedback)
	images.Patch("/edit/:id", h.EditImageFeedback)
	images.Delete("/delete-single-image/:id", h.DeleteSingleImage)
	images.Delete("/delete/:id", h.DeleteImageFeedback)
	images.Get("/user/image-responses", h.GetMyImageFeedback)
	images.Get("/all/image-responses", admin, h.GetAllImageFeedback)
	images.Patch("/moderate/:id", admin, h.ModerateImageFeedback)
	images.Get("/:id", h.GetImageFeedback)
}
