package routes

import (
	"Backend-Feedback/src/services/academicyears"
	"Backend-Feedback/src/services/feedbacks"
	"Backend-Feedback/src/services/forms"
	"Backend-Feedback/src/services/imagefeedbacks"
	"Backend-Feedback/src/services/questions"
	"Backend-Feedback/src/services/users"
	"Backend-Feedback/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// Dependencies is everything the HTTP layer needs, built once in main.
type Dependencies struct {
	Tokens   *utils.TokenManager
	Sessions *utils.SessionStore

	Users          *users.Service
	AcademicYears  *academicyears.Service
	Forms          *forms.Service
	Questions      *questions.Service
	Feedbacks      *feedbacks.Service
	ImageFeedbacks *imagefeedbacks.Service

	AllowedOrigins string
	// FrontendURL is the base of the share links encoded in form QR codes.
	FrontendURL string
	// UploadsDir is served at /uploads when the local blob driver is used.
	UploadsDir string
	// AccessLog turns on the request logger.
	AccessLog bool
}

func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.FiberErrorHandler,
		BodyLimit:    32 * 1024 * 1024,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New())
	}

	// ✅ เปิดใช้งาน CORS Middleware
	origins := deps.AllowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*", // ❌ ต้องเป็น false ถ้าใช้ "*"
	}))

	// เปิดใช้งาน Swagger ที่ URL /swagger
	app.Get("/swagger/*", swagger.HandlerDefault)
	if deps.UploadsDir != "" {
		app.Static("/uploads", deps.UploadsDir)
	}

	InitRoutes(app, deps)
	return app
}

func InitRoutes(app *fiber.App, deps Dependencies) {
	api := app.Group("/api/v1")

	userRoutes(api, deps)
	academicYearRoutes(api, deps)
	formRoutes(api, deps)
	feedbackRoutes(api, deps)
	imageFeedbackRoutes(api, deps)

	// Route เช็คว่า API ทำงานอยู่
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}
