package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/scribehub/writing-marketplace/docs"
	"github.com/scribehub/writing-marketplace/internal/api/handler"
	"github.com/scribehub/writing-marketplace/internal/api/middleware"
	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
	"github.com/scribehub/writing-marketplace/internal/core/service"
	mongodb "github.com/scribehub/writing-marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/scribehub/writing-marketplace/internal/infrastructure/db/redis"
	"github.com/scribehub/writing-marketplace/internal/infrastructure/notify"
	"github.com/scribehub/writing-marketplace/internal/pkg/config"
)

// Dependencies carries everything NewRouter cannot build itself: external
// clients with their own configuration and lifecycle, plus the already
// started notification dispatcher.
type Dependencies struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	Config    *config.Config
	Gateway   ports.PaymentGateway
	Estimator ports.PriceEstimator
	Notifier  ports.Notifier
	Telegram  notify.TelegramSender
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Repositories ---
	assignmentRepo := mongodb.NewAssignmentRepository(deps.Mongo)
	userRepo := mongodb.NewUserRepository(deps.Mongo)
	extensionRepo := mongodb.NewExtensionRepository(deps.Mongo)
	paymentRepo := mongodb.NewPaymentRepository(deps.Mongo)
	transactionRepo := mongodb.NewTransactionRepository(deps.Mongo)
	orderRepo := mongodb.NewOrderRepository(deps.Mongo)
	notificationRepo := mongodb.NewNotificationRepository(deps.Mongo)
	subscriptionRepo := mongodb.NewSubscriptionRepository(deps.Mongo)
	messageRepo := mongodb.NewMessageRepository(deps.Mongo)
	fileRepo := mongodb.NewFileRepository(deps.Mongo)
	reportRepo := mongodb.NewReportRepository(deps.Mongo)
	dedup := redisdb.NewWebhookDedup(deps.Redis)

	// --- Services ---
	authService := service.NewAuthService(userRepo, deps.Config.JWTSecret, deps.Config.TokenTTL)
	writerService := service.NewWriterService(userRepo, deps.Log)
	assignmentService := service.NewAssignmentService(assignmentRepo, extensionRepo, userRepo, deps.Notifier, deps.Log)
	pricingService := service.NewPricingService(deps.Estimator, deps.Log)
	orderService := service.NewOrderService(orderRepo, pricingService, userRepo, deps.Notifier, deps.Log)
	paymentService := service.NewPaymentService(paymentRepo, transactionRepo, orderService, assignmentRepo, deps.Gateway, dedup, deps.Notifier, deps.Log)
	notificationService := service.NewNotificationService(notificationRepo, subscriptionRepo)
	messageService := service.NewMessageService(messageRepo, assignmentRepo, deps.Notifier)
	fileService := service.NewFileService(fileRepo, assignmentRepo)
	reportService := service.NewReportService(reportRepo)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, writerService)
	writerHandler := handler.NewWriterHandler(writerService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(paymentService, userRepo, deps.Telegram, deps.Log)
	orderHandler := handler.NewOrderHandler(orderService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	messageHandler := handler.NewMessageHandler(messageService)
	fileHandler := handler.NewFileHandler(fileService, deps.Config.UploadDir)
	reportHandler := handler.NewReportHandler(reportService)

	auth := middleware.Auth(authService)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	writerOnly := middleware.RBAC(domain.RoleWriter)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleWriter)

	v1 := e.Group("/v1")

	// --- Public routes ---
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/pricing/quote", pricingHandler.Quote)
	v1.POST("/orders", orderHandler.Create)
	v1.GET("/orders/:reference", orderHandler.Get)
	v1.POST("/paystack/initialize", paymentHandler.Initialize)
	v1.GET("/paystack/verify/:reference", paymentHandler.Verify)
	v1.POST("/paystack/webhook", webhookHandler.Paystack)
	v1.POST("/telegram/webhook", webhookHandler.Telegram)

	// --- Writer accounts ---
	// Accounts are created by admins only; there is no self-service signup.
	v1.POST("/auth/register", authHandler.Register, auth, adminOnly)
	v1.POST("/writers", writerHandler.Create, auth, adminOnly)
	v1.GET("/writers", writerHandler.List, auth, adminOnly)
	v1.GET("/writers/me", writerHandler.Me, auth, anyRole)
	v1.PUT("/writers/me/password", writerHandler.ChangePassword, auth, anyRole)
	v1.POST("/writers/me/ping", writerHandler.Ping, auth, anyRole)
	v1.GET("/writers/:id", writerHandler.Get, auth, adminOnly)
	v1.PUT("/writers/:id", writerHandler.Update, auth, anyRole)
	v1.DELETE("/writers/:id", writerHandler.Deactivate, auth, adminOnly)

	// --- Assignment lifecycle ---
	v1.POST("/assignments", assignmentHandler.Create, auth, adminOnly)
	v1.GET("/assignments", assignmentHandler.List, auth, anyRole)
	v1.GET("/assignments/board", assignmentHandler.Board, auth, writerOnly)
	v1.POST("/assignments/sweep-overdue", assignmentHandler.Sweep, auth, adminOnly)
	v1.GET("/assignments/:id", assignmentHandler.Get, auth, anyRole)
	v1.POST("/assignments/:id/pick", assignmentHandler.Pick, auth, writerOnly)
	v1.PATCH("/assignments/:id", assignmentHandler.WriterUpdate, auth, writerOnly)
	v1.PUT("/assignments/:id", assignmentHandler.AdminUpdate, auth, adminOnly)
	v1.DELETE("/assignments/:id", assignmentHandler.Delete, auth, adminOnly)
	v1.PUT("/assignments/:id/writer-deadline", assignmentHandler.OverrideDeadline, auth, adminOnly)

	// --- Extensions ---
	v1.POST("/assignments/:id/extension", assignmentHandler.RequestExtension, auth, writerOnly)
	v1.GET("/extensions", assignmentHandler.ListExtensions, auth, adminOnly)
	v1.PUT("/extensions/:id", assignmentHandler.RespondExtension, auth, adminOnly)

	// --- Messages and files ---
	v1.POST("/assignments/:id/messages", messageHandler.Post, auth, anyRole)
	v1.GET("/assignments/:id/messages", messageHandler.List, auth, anyRole)
	v1.POST("/assignments/:id/files", fileHandler.Upload, auth, anyRole)
	v1.GET("/assignments/:id/files", fileHandler.List, auth, anyRole)
	v1.GET("/files/:id", fileHandler.Download, auth, anyRole)

	// --- Payments ---
	v1.POST("/payments", paymentHandler.Record, auth, adminOnly)
	v1.GET("/payments", paymentHandler.List, auth, anyRole)

	// --- Orders (admin) ---
	v1.GET("/orders", orderHandler.List, auth, adminOnly)

	// --- Notifications ---
	v1.GET("/notifications", notificationHandler.List, auth, anyRole)
	v1.GET("/notifications/unread", notificationHandler.UnreadCount, auth, anyRole)
	v1.PUT("/notifications/read-all", notificationHandler.MarkAllRead, auth, anyRole)
	v1.PUT("/notifications/:id/read", notificationHandler.MarkRead, auth, anyRole)
	v1.POST("/push/subscribe", notificationHandler.Subscribe, auth, anyRole)
	v1.DELETE("/push/subscribe", notificationHandler.Unsubscribe, auth, anyRole)

	// --- Reports (admin) ---
	v1.GET("/reports/earnings", reportHandler.WriterEarnings, auth, adminOnly)
	v1.GET("/reports/status", reportHandler.StatusCounts, auth, adminOnly)
	v1.GET("/reports/revenue", reportHandler.MonthlyRevenue, auth, adminOnly)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
