package routes

import (
	"lablink-inventory/internal/adapters/http/handlers"
	"lablink-inventory/internal/adapters/http/middleware"
	"lablink-inventory/internal/adapters/persistence/repositories"
	"lablink-inventory/internal/config"
	"lablink-inventory/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and returns the
// scheduler so main can start and stop it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) *services.SchedulerService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	itemRepo := repositories.NewItemRepository(db)
	borrowRepo := repositories.NewBorrowRepository(db)
	returnRepo := repositories.NewReturnRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)
	ruleRepo := repositories.NewMaintenanceRuleRepository(db)
	scheduleRepo := repositories.NewMaintenanceScheduleRepository(db)
	damageRepo := repositories.NewDamageReportRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	// Initialize services
	activityService := services.NewActivityService(activityRepo)
	notifyService := services.NewNotificationService()
	authService := services.NewAuthService(userRepo, refreshTokenRepo, activityRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo, activityService)
	itemService := services.NewItemService(itemRepo, categoryRepo, borrowRepo, activityService)
	borrowService := services.NewBorrowService(borrowRepo, returnRepo, itemRepo, userRepo, damageRepo, activityService, notifyService)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, itemRepo, userRepo, activityService)
	predictiveService := services.NewPredictiveService(ruleRepo, scheduleRepo, maintenanceRepo, itemRepo, borrowRepo, damageRepo, userRepo, activityService, notifyService)
	damageService := services.NewDamageService(damageRepo, itemRepo, maintenanceRepo, activityService)
	dashboardService := services.NewDashboardService(db)
	reportService := services.NewReportService(borrowRepo, maintenanceRepo, damageRepo, userRepo, activityService)
	schedulerService := services.NewSchedulerService(predictiveService, borrowService, notifyService, refreshTokenRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	itemHandler := handlers.NewItemHandler(itemService)
	borrowHandler := handlers.NewBorrowHandler(borrowService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService, predictiveService)
	damageHandler := handlers.NewDamageHandler(damageService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	activityHandler := handlers.NewActivityHandler(activityService, reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, itemHandler,
		borrowHandler, maintenanceHandler, damageHandler, dashboardHandler,
		activityHandler, cfg)

	return schedulerService
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	itemHandler *handlers.ItemHandler,
	borrowHandler *handlers.BorrowHandler,
	maintenanceHandler *handlers.MaintenanceHandler,
	damageHandler *handlers.DamageHandler,
	dashboardHandler *handlers.DashboardHandler,
	activityHandler *handlers.ActivityHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only, self-service profile aside)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Catalog routes
	itemRoutes := router.Group("/items")
	itemRoutes.Use(middleware.AuthMiddleware(cfg))
	setupItemRoutes(itemRoutes, itemHandler)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Use(middleware.AuthMiddleware(cfg))
	setupCategoryRoutes(categoryRoutes, itemHandler)

	// Borrow workflow routes
	borrowRoutes := router.Group("/borrows")
	borrowRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBorrowRoutes(borrowRoutes, borrowHandler)

	returnRoutes := router.Group("/returns")
	returnRoutes.Use(middleware.AuthMiddleware(cfg))
	setupReturnRoutes(returnRoutes, borrowHandler)

	// Maintenance routes
	maintenanceRoutes := router.Group("/maintenance")
	maintenanceRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMaintenanceRoutes(maintenanceRoutes, maintenanceHandler)

	// Predictive rule routes
	ruleRoutes := router.Group("/rules")
	ruleRoutes.Use(middleware.AuthMiddleware(cfg))
	setupRuleRoutes(ruleRoutes, maintenanceHandler)

	scheduleRoutes := router.Group("/schedules")
	scheduleRoutes.Use(middleware.AuthMiddleware(cfg))
	scheduleRoutes.Get("/", middleware.MaintenanceRoles(), maintenanceHandler.ListSchedules)

	// Damage report routes
	damageRoutes := router.Group("/damage")
	damageRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDamageRoutes(damageRoutes, damageHandler)

	// Dashboard routes
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDashboardRoutes(dashboardRoutes, dashboardHandler)

	// Audit & report routes (Admin / Staff)
	activityRoutes := router.Group("/activities")
	activityRoutes.Use(middleware.AuthMiddleware(cfg))
	activityRoutes.Get("/", middleware.AdminOnly(), activityHandler.ListActivities)

	reportRoutes := router.Group("/reports")
	reportRoutes.Use(middleware.AuthMiddleware(cfg))
	reportRoutes.Get("/:type", middleware.StaffOrAdmin(), activityHandler.ExportReport)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	// Self-service
	router.Put("/me", handler.UpdateProfile)
	router.Put("/me/password", middleware.StrictRateLimiter(), handler.ChangePassword)

	// Admin only
	router.Get("/", middleware.AdminOnly(), handler.ListUsers)
	router.Post("/", middleware.AdminOnly(), handler.CreateUser)
	router.Get("/:id", middleware.AdminOnly(), handler.GetUser)
	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteUser)
	router.Put("/:id/role", middleware.AdminOnly(), handler.ChangeRole)
	router.Put("/:id/active", middleware.AdminOnly(), handler.SetActive)
}

// setupItemRoutes configures catalog routes
func setupItemRoutes(router fiber.Router, handler *handlers.ItemHandler) {
	// Read for everyone authenticated
	router.Get("/", handler.ListItems)
	router.Get("/:id", handler.GetItem)

	// Mutations for staff/admin
	router.Post("/", middleware.StaffOrAdmin(), handler.CreateItem)
	router.Put("/:id", middleware.StaffOrAdmin(), handler.UpdateItem)
	router.Put("/:id/quantity", middleware.StaffOrAdmin(), handler.AdjustQuantity)
	router.Put("/:id/archive", middleware.StaffOrAdmin(), handler.ArchiveItem)
}

// setupCategoryRoutes configures category routes
func setupCategoryRoutes(router fiber.Router, handler *handlers.ItemHandler) {
	router.Get("/", middleware.MasterDataCache(), handler.ListCategories)
	router.Post("/", middleware.StaffOrAdmin(), handler.CreateCategory)
	router.Put("/:id", middleware.StaffOrAdmin(), handler.UpdateCategory)
	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteCategory)
}

// setupBorrowRoutes configures borrow workflow routes
func setupBorrowRoutes(router fiber.Router, handler *handlers.BorrowHandler) {
	router.Post("/", handler.CreateBorrow)
	router.Get("/", handler.ListBorrows)
	router.Get("/overdue", middleware.StaffOrAdmin(), handler.ListOverdue)
	router.Get("/:id", handler.GetBorrow)
	router.Put("/:id/approve", middleware.StaffOrAdmin(), handler.ApproveBorrow)
	router.Put("/:id/reject", middleware.StaffOrAdmin(), handler.RejectBorrow)
}

// setupReturnRoutes configures return workflow routes
func setupReturnRoutes(router fiber.Router, handler *handlers.BorrowHandler) {
	router.Post("/", handler.SubmitReturn)
	router.Get("/", handler.ListReturns)
	router.Put("/:id/accept", middleware.StaffOrAdmin(), handler.AcceptReturn)
	router.Put("/:id/reject", middleware.StaffOrAdmin(), handler.RejectReturn)
}

// setupMaintenanceRoutes configures maintenance ticket routes
func setupMaintenanceRoutes(router fiber.Router, handler *handlers.MaintenanceHandler) {
	router.Get("/", middleware.MaintenanceRoles(), handler.ListTickets)
	router.Post("/", middleware.MaintenanceRoles(), handler.CreateTicket)
	router.Get("/:id", middleware.MaintenanceRoles(), handler.GetTicket)
	router.Put("/:id", middleware.MaintenanceRoles(), handler.UpdateTicket)
	router.Put("/:id/status", middleware.TechnicianOrAdmin(), handler.Transition)
	router.Put("/:id/assign", middleware.StaffOrAdmin(), handler.AssignTechnician)
}

// setupRuleRoutes configures predictive rule routes
func setupRuleRoutes(router fiber.Router, handler *handlers.MaintenanceHandler) {
	router.Get("/", middleware.StaffOrAdmin(), handler.ListRules)
	router.Post("/", middleware.AdminOnly(), handler.CreateRule)
	router.Put("/:id", middleware.AdminOnly(), handler.UpdateRule)
	router.Delete("/:id", middleware.AdminOnly(), handler.DeleteRule)
	router.Post("/evaluate", middleware.StaffOrAdmin(), handler.EvaluateRules)
}

// setupDamageRoutes configures damage report routes
func setupDamageRoutes(router fiber.Router, handler *handlers.DamageHandler) {
	router.Post("/", handler.ReportDamage)
	router.Get("/", handler.ListReports)
	router.Get("/:id", handler.GetReport)
	router.Put("/:id/review", middleware.MaintenanceRoles(), handler.StartReview)
	router.Put("/:id/resolve", middleware.MaintenanceRoles(), handler.Resolve)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
	router.Get("/me", handler.GetStudentDashboard)
	router.Get("/technician", middleware.TechnicianOrAdmin(), handler.GetTechnicianDashboard)
}
