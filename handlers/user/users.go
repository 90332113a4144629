package user

import (
	"errors"
	"log"

	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services"
	"github.com/edemy/lms-server/utils/middleware"
	"github.com/edemy/lms-server/utils/response"
	"github.com/edemy/lms-server/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HandleGetUserData returns the authenticated user's profile, creating the
// local row on first contact.
// GET /api/user/data
func HandleGetUserData(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		user, err := store.EnsureUser(c.Context(), userID)
		if err != nil {
			log.Printf("failed to load user %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load user")
		}

		return response.Success(c, user)
	}
}

// HandleEnrolledCourses returns the courses the user is enrolled in.
// GET /api/user/enrolled-courses
func HandleEnrolledCourses(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var courses []model.Course
		err := db.
			Joins("JOIN user_courses ON user_courses.course_id = courses.id").
			Where("user_courses.user_id = ?", userID).
			Order("user_courses.enrolled_at DESC").
			Find(&courses).Error
		if err != nil {
			log.Printf("failed to load enrollments for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load enrolled courses")
		}

		return response.Success(c, courses)
	}
}

// PurchaseRequest is the checkout request body.
type PurchaseRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// HandlePurchaseCourse starts a checkout for the authenticated user.
// POST /api/user/purchase
func HandlePurchaseCourse(checkout *services.CheckoutService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req PurchaseRequest
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		if err := validation.ValidateStruct(req); err != nil {
			return response.ValidationError(c, err)
		}

		result, err := checkout.PurchaseCourse(c.Context(), userID, req.CourseID)
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, "Already enrolled in this course")
		case errors.Is(err, services.ErrDuplicatePurchase):
			return response.Conflict(c, "A purchase for this course already exists")
		case errors.Is(err, services.ErrGatewayUnavailable):
			log.Printf("checkout gateway failure for user %s: %v", userID, err)
			return response.BadGateway(c, "Payment provider unavailable, please retry")
		case err != nil:
			log.Printf("checkout failed for user %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to start checkout")
		}

		if result.Enrolled {
			return response.SuccessWithMessage(c, "Enrolled successfully", fiber.Map{
				"purchase_id": result.PurchaseID,
				"enrolled":    true,
			})
		}
		return response.Success(c, fiber.Map{
			"purchase_id": result.PurchaseID,
			"session_url": result.SessionURL,
		})
	}
}

// RatingRequest is the course rating request body.
type RatingRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// HandleAddRating upserts the user's rating for an enrolled course. A
// repeat rating overwrites the previous value.
// POST /api/user/add-rating
func HandleAddRating(db *gorm.DB, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req RatingRequest
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		if err := validation.ValidateStruct(req); err != nil {
			return response.ValidationError(c, err)
		}

		enrolled, err := store.IsEnrolled(c.Context(), userID, req.CourseID)
		if err != nil {
			log.Printf("failed to check enrollment for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to submit rating")
		}
		if !enrolled {
			return response.Forbidden(c, "Only enrolled students can rate a course")
		}

		rating := model.CourseRating{
			CourseID: req.CourseID,
			UserID:   userID,
			Rating:   req.Rating,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating"}),
		}).Create(&rating).Error
		if err != nil {
			log.Printf("failed to save rating for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to submit rating")
		}

		return response.SuccessWithMessage(c, "Rating saved", rating)
	}
}
