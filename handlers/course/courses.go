package course

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/edemy/lms-server/model"
	"github.com/edemy/lms-server/utils/cache"
	"github.com/edemy/lms-server/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const courseListCacheTTL = 5 * time.Minute

// CourseSummary is the public catalog shape: no internal fields, ratings
// reduced to an average and a count.
type CourseSummary struct {
	ID            string  `json:"id"`
	EducatorID    string  `json:"educator_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Thumbnail     string  `json:"thumbnail"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
	EnrolledCount int     `json:"enrolled_count"`
}

func toSummary(course model.Course) CourseSummary {
	summary := CourseSummary{
		ID:            course.ID,
		EducatorID:    course.EducatorID,
		Title:         course.Title,
		Description:   course.Description,
		Thumbnail:     course.Thumbnail,
		Price:         course.Price,
		Discount:      course.Discount,
		RatingCount:   len(course.Ratings),
		EnrolledCount: len(course.Enrollments),
	}
	if len(course.Ratings) > 0 {
		var sum int
		for _, r := range course.Ratings {
			sum += r.Rating
		}
		summary.AverageRating = float64(sum) / float64(len(course.Ratings))
	}
	return summary
}

// HandleListCourses returns the published course catalog, paginated.
// GET /api/course/all?page=1&limit=10
func HandleListCourses(db *gorm.DB, cache *cache.RedisCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 10)
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 10
		}

		cacheKey := fmt.Sprintf("courses:published:%d:%d", page, limit)
		var cached response.PaginatedResponse
		if cache.Get(c.Context(), cacheKey, &cached) {
			return c.Status(fiber.StatusOK).JSON(cached)
		}

		var total int64
		if err := db.Model(&model.Course{}).Where("is_published = ?", true).Count(&total).Error; err != nil {
			log.Printf("failed to count courses: %v", err)
			return response.InternalServerError(c, "Failed to load courses")
		}

		var courses []model.Course
		err := db.Where("is_published = ?", true).
			Preload("Ratings").
			Preload("Enrollments").
			Order("created_at DESC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&courses).Error
		if err != nil {
			log.Printf("failed to list courses: %v", err)
			return response.InternalServerError(c, "Failed to load courses")
		}

		summaries := make([]CourseSummary, 0, len(courses))
		for _, course := range courses {
			summaries = append(summaries, toSummary(course))
		}

		pagination := response.CalculatePagination(page, limit, total)
		cache.Set(c.Context(), cacheKey, response.PaginatedResponse{
			Success:    true,
			Data:       summaries,
			Pagination: pagination,
		}, courseListCacheTTL)

		return response.Paginated(c, summaries, pagination)
	}
}

// HandleGetCourse returns one published course by id.
// GET /api/course/:id
func HandleGetCourse(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID := c.Params("id")
		if courseID == "" {
			return response.BadRequest(c, "Course id is required")
		}

		var course model.Course
		err := db.Where("id = ? AND is_published = ?", courseID, true).
			Preload("Ratings").
			Preload("Enrollments").
			First(&course).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		if err != nil {
			log.Printf("failed to load course %s: %v", courseID, err)
			return response.InternalServerError(c, "Failed to load course")
		}

		return response.Success(c, toSummary(course))
	}
}
