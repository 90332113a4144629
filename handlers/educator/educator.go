package educator

import (
	"log"

	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/services/clerk"
	"github.com/edemy/lms-server/utils/middleware"
	"github.com/edemy/lms-server/utils/response"
	"github.com/edemy/lms-server/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HandleUpdateRole promotes the authenticated user to educator in the
// identity provider's metadata.
// POST /api/educator/update-role
func HandleUpdateRole(clerkClient *clerk.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		if err := clerkClient.SetUserRole(c.Context(), userID, clerk.RoleEducator); err != nil {
			log.Printf("failed to set educator role for %s: %v", userID, err)
			return response.ServiceUnavailable(c, "Failed to update role")
		}

		return response.SuccessWithMessage(c, "You can publish courses now", nil)
	}
}

// AddCourseRequest is the course creation request body.
type AddCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"required"`
	Thumbnail   string  `json:"thumbnail" validate:"omitempty,url"`
	Price       float64 `json:"price" validate:"gte=0"`
	Discount    float64 `json:"discount" validate:"gte=0,lte=100"`
	IsPublished bool    `json:"is_published"`
}

// HandleAddCourse creates a course owned by the authenticated educator.
// POST /api/educator/add-course
func HandleAddCourse(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var req AddCourseRequest
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
		if err := validation.ValidateStruct(req); err != nil {
			return response.ValidationError(c, err)
		}

		course := model.Course{
			ID:          uuid.NewString(),
			EducatorID:  userID,
			Title:       req.Title,
			Description: req.Description,
			Thumbnail:   req.Thumbnail,
			Price:       req.Price,
			Discount:    req.Discount,
			IsPublished: req.IsPublished,
		}
		if err := db.Create(&course).Error; err != nil {
			log.Printf("failed to create course for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to create course")
		}

		return response.Created(c, course)
	}
}

// HandleMyCourses lists the educator's own courses, published or not.
// GET /api/educator/courses
func HandleMyCourses(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var courses []model.Course
		err := db.Where("educator_id = ?", userID).
			Preload("Ratings").
			Preload("Enrollments").
			Order("created_at DESC").
			Find(&courses).Error
		if err != nil {
			log.Printf("failed to list courses for educator %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load courses")
		}

		return response.Success(c, courses)
	}
}

// DashboardData aggregates the educator's earnings and enrollments.
type DashboardData struct {
	TotalEarnings     float64            `json:"total_earnings"`
	TotalEnrollments  int64              `json:"total_enrollments"`
	TotalCourses      int64              `json:"total_courses"`
	LatestEnrollments []LatestEnrollment `json:"latest_enrollments"`
}

// LatestEnrollment is one row of the dashboard's recent-enrollments feed.
type LatestEnrollment struct {
	UserName    string `json:"user_name"`
	UserImage   string `json:"user_image"`
	CourseTitle string `json:"course_title"`
	EnrolledAt  int64  `json:"enrolled_at"`
}

// HandleDashboard returns the educator's earnings and enrollment summary.
// Earnings only count purchases that reached success.
// GET /api/educator/dashboard
func HandleDashboard(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var data DashboardData

		if err := db.Model(&model.Course{}).
			Where("educator_id = ?", userID).
			Count(&data.TotalCourses).Error; err != nil {
			log.Printf("failed to count courses for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load dashboard")
		}

		err := db.Model(&model.Purchase{}).
			Joins("JOIN courses ON courses.id = purchases.course_id").
			Where("courses.educator_id = ? AND purchases.status = ?", userID, model.PurchaseStatusSuccess).
			Select("COALESCE(SUM(purchases.amount), 0)").
			Scan(&data.TotalEarnings).Error
		if err != nil {
			log.Printf("failed to sum earnings for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load dashboard")
		}

		err = db.Model(&model.UserCourse{}).
			Joins("JOIN courses ON courses.id = user_courses.course_id").
			Where("courses.educator_id = ?", userID).
			Count(&data.TotalEnrollments).Error
		if err != nil {
			log.Printf("failed to count enrollments for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load dashboard")
		}

		err = db.Model(&model.UserCourse{}).
			Joins("JOIN courses ON courses.id = user_courses.course_id").
			Joins("JOIN users ON users.id = user_courses.user_id").
			Where("courses.educator_id = ?", userID).
			Select("users.name AS user_name, users.image_url AS user_image, courses.title AS course_title, user_courses.enrolled_at AS enrolled_at").
			Order("user_courses.enrolled_at DESC").
			Limit(10).
			Scan(&data.LatestEnrollments).Error
		if err != nil {
			log.Printf("failed to load latest enrollments for %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load dashboard")
		}

		return response.Success(c, data)
	}
}

// EnrolledStudent is one student row on the educator's roster.
type EnrolledStudent struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	UserImage   string `json:"user_image"`
	CourseTitle string `json:"course_title"`
	EnrolledAt  int64  `json:"enrolled_at"`
}

// HandleEnrolledStudents lists students enrolled across the educator's
// courses.
// GET /api/educator/enrolled-students
func HandleEnrolledStudents(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := middleware.GetUserID(c)

		var students []EnrolledStudent
		err := db.Model(&model.UserCourse{}).
			Joins("JOIN courses ON courses.id = user_courses.course_id").
			Joins("JOIN users ON users.id = user_courses.user_id").
			Where("courses.educator_id = ?", userID).
			Select("users.id AS user_id, users.name AS user_name, users.image_url AS user_image, courses.title AS course_title, user_courses.enrolled_at AS enrolled_at").
			Order("user_courses.enrolled_at DESC").
			Scan(&students).Error
		if err != nil {
			log.Printf("failed to load students for educator %s: %v", userID, err)
			return response.InternalServerError(c, "Failed to load enrolled students")
		}

		return response.Success(c, students)
	}
}
