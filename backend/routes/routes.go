package routes

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stepwise/backend/config"
	"stepwise/backend/controllers"
	"stepwise/backend/middleware"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

// NewApp builds the fiber application with its middleware chain and routes.
func NewApp(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: middleware.HeaderRequestID,
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(recover.New())

	SetupRoutes(app, db, cfg, logger)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
		return utils.NotFound(c, "Route not found")
	}
	return utils.FromError(c, err)
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	progress := services.NewProgressService(db, cfg, logger)
	sessions := services.NewTestSessionService(db, cfg, logger, progress)
	gatekeeper := services.NewGatekeeper(db, cfg, logger, progress)
	catalog := services.NewCatalogService(db, cfg, logger)
	accounts := services.NewAccountService(db, cfg, logger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// Account routes
	authController := controllers.NewAuthController(cfg, accounts)
	userController := controllers.NewUserController(cfg, accounts)
	account := app.Group("/api/account")
	account.Post("/register", authController.Register)
	account.Post("/login", authController.Login)
	account.Get("/profile", authMiddleware, userController.GetProfile)

	// Catalog routes
	catalogController := controllers.NewCatalogController(cfg, catalog)
	subject := app.Group("/api/subject")
	subject.Get("/categories", catalogController.ListCategories)
	subject.Get("/category/:id", catalogController.ViewCategory)
	subject.Get("/subjects", catalogController.ListSubjects)
	subject.Get("/subjects/:id", catalogController.GetSubject)

	// Progress routes
	progressController := controllers.NewProgressController(cfg, progress)
	subject.Post("/start-subject/:id", authMiddleware, progressController.StartSubject)
	subject.Get("/progress", authMiddleware, progressController.GetProgress)

	// Step and test routes
	stepsController := controllers.NewStepsController(cfg, gatekeeper)
	testsController := controllers.NewTestsController(cfg, sessions)
	subject.Post("/steps/start-test", authMiddleware, testsController.StartTest)
	subject.Get("/steps/:id", authMiddleware, stepsController.GetStep)
	subject.Post("/finish-step-test", authMiddleware, testsController.FinishTest)
	subject.Post("/step-test/submit", authMiddleware, testsController.SubmitTest)
	subject.Get("/results/:id", authMiddleware, testsController.GetTestResult)
}
