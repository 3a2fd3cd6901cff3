package routes

import (
	"Backend-Feedback/src/controllers"
	"Backend-Feedback/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// userRoutes กำหนดเส้นทางสำหรับ register/login/logout
func userRoutes(router fiber.Router, deps Dependencies) {
	h := controllers.NewUserController(deps.Users)
	auth := middleware.AuthJWT(deps.Tokens, deps.Sessions)

	users := router.Group("/users")
	users.Post("/register", middleware.RegisterRateLimiter(), h.Register)
	users.Post("/login", h.Login) // 🔐 login
	users.Post("/refresh-token", h.RefreshToken)
	users.Post("/logout", auth, h.Logout)
	users.Get("/current-user", auth, h.CurrentUser)
}

func academicYearRoutes(router fiber.Router, deps Dependencies) {
	h := controllers.NewAcademicYearController(deps.AcademicYears)
	auth := middleware.AuthJWT(deps.Tokens, deps.Sessions)

	years := router.Group("/academic-years", auth)
	years.Post("/", h.AddAcademicYear)
	years.Get("/", h.GetAcademicYears)
	years.Delete("/:id", h.DeleteAcademicYear)
}
