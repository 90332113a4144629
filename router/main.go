package router

import (
	"github.com/edemy/lms-server/config"
	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/handlers"
	courseHandlers "github.com/edemy/lms-server/handlers/course"
	educatorHandlers "github.com/edemy/lms-server/handlers/educator"
	userHandlers "github.com/edemy/lms-server/handlers/user"
	webhookHandlers "github.com/edemy/lms-server/handlers/webhook"
	"github.com/edemy/lms-server/services"
	"github.com/edemy/lms-server/services/clerk"
	"github.com/edemy/lms-server/services/stripe"
	"github.com/edemy/lms-server/utils/cache"
	"github.com/edemy/lms-server/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup wires clients, services and handlers onto the app.
func Setup(app *fiber.App, store *database.GORMStore, redis *cache.RedisCache, cfg *config.Config) {
	db := store.GetDB().(*gorm.DB)

	stripeClient := stripe.NewClient(stripe.Config{SecretKey: cfg.STRIPE_SECRET_KEY})
	clerkClient := clerk.NewClient(clerk.Config{SecretKey: cfg.CLERK_SECRET_KEY})

	enrollments := services.NewEnrollmentService(store)
	checkout := services.NewCheckoutService(store, enrollments, stripeClient, services.CheckoutConfig{
		Currency:    cfg.CURRENCY,
		FrontendURL: cfg.FRONTEND_URL,
	})
	webhooks := services.NewWebhookService(store, enrollments, stripeClient)

	middleware.Setup(app, middleware.SecurityConfig{AllowedOrigins: cfg.ALLOWED_ORIGINS})

	// Webhook ingress stays outside /api: raw body, signature-verified, no
	// session auth.
	app.Post("/stripe", webhookHandlers.HandleStripeWebhook(webhooks, redis, cfg.STRIPE_WEBHOOK_SECRET))
	app.Post("/clerk", webhookHandlers.HandleClerkWebhook(store, cfg.CLERK_WEBHOOK_SECRET))

	app.Get("/ping", handlers.HandleCheckHealth(store))

	api := app.Group("/api")

	course := api.Group("/course")
	course.Get("/all", courseHandlers.HandleListCourses(db, redis))
	course.Get("/:id", courseHandlers.HandleGetCourse(db))

	auth := middleware.AuthConfig{JWTSecret: cfg.SESSION_JWT_SECRET}

	user := api.Group("/user", middleware.RequireAuth(auth))
	user.Get("/data", userHandlers.HandleGetUserData(store))
	user.Get("/enrolled-courses", userHandlers.HandleEnrolledCourses(db))
	user.Post("/purchase", userHandlers.HandlePurchaseCourse(checkout))
	user.Post("/add-rating", userHandlers.HandleAddRating(db, store))

	educator := api.Group("/educator", middleware.RequireAuth(auth))
	educator.Post("/update-role", educatorHandlers.HandleUpdateRole(clerkClient))
	educator.Use(middleware.RequireEducator(clerkClient))
	educator.Post("/add-course", educatorHandlers.HandleAddCourse(db))
	educator.Get("/courses", educatorHandlers.HandleMyCourses(db))
	educator.Get("/dashboard", educatorHandlers.HandleDashboard(db))
	educator.Get("/enrolled-students", educatorHandlers.HandleEnrolledStudents(db))
}
