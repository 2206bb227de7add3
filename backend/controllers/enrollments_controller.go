package controllers

import (
	"errors"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentsController(db *gorm.DB, cfg *config.Config) *EnrollmentsController {
	return &EnrollmentsController{DB: db, Cfg: cfg}
}

// ListEnrollments returns all enrollments for admins, own enrollments for
// students.
func (ec *EnrollmentsController) ListEnrollments(c *fiber.Ctx) error {
	user := currentUser(c)

	query := ec.DB.Model(&models.Enrollment{})
	if !user.IsAdmin() {
		query = query.Where("user_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if course := c.Query("course"); course != "" {
		query = query.Where("course_id = ?", course)
	}

	var enrollments []models.Enrollment
	if err := query.Order("created_at DESC").Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(enrollments)
}

// Enroll lets a student enroll themselves in a published course. Enrolling
// twice is a no-op.
func (ec *EnrollmentsController) Enroll(c *fiber.Ctx) error {
	user := currentUser(c)

	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := ec.DB.Where("id = ? AND status = ?", courseID, models.CoursePublished).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.Enrollment
	err = ec.DB.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{
			"message":    "Already enrolled in this course",
			"enrollment": existing,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	enrollment := models.Enrollment{
		UserID:   user.ID,
		CourseID: courseID,
		Status:   models.EnrollmentActive,
	}
	if err := ec.DB.Create(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create enrollment")
	}
	return utils.Created(c, enrollment)
}

// BulkEnroll assigns a set of students to a course (admin only). Unknown
// user ids are skipped, existing enrollments are reported but not duplicated.
func (ec *EnrollmentsController) BulkEnroll(c *fiber.Ctx) error {
	admin := currentUser(c)

	var input struct {
		CourseID  uint       `json:"course_id" validate:"required"`
		UserIDs   []uint     `json:"user_ids" validate:"required,min=1"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var course models.Course
	if err := ec.DB.First(&course, input.CourseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	adminID := admin.ID
	var created []models.Enrollment
	existing := 0

	for _, userID := range input.UserIDs {
		var user models.User
		if err := ec.DB.First(&user, userID).Error; err != nil {
			continue
		}

		var enrollment models.Enrollment
		err := ec.DB.Where("user_id = ? AND course_id = ?", userID, input.CourseID).
			First(&enrollment).Error
		if err == nil {
			existing++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.InternalServerError(c, "Could not query database")
		}

		enrollment = models.Enrollment{
			UserID:       userID,
			CourseID:     input.CourseID,
			Status:       models.EnrollmentActive,
			AssignedByID: &adminID,
			ExpiresAt:    input.ExpiresAt,
		}
		if err := ec.DB.Create(&enrollment).Error; err != nil {
			return utils.InternalServerError(c, "Could not create enrollment")
		}
		created = append(created, enrollment)
	}

	return c.JSON(fiber.Map{
		"created":     len(created),
		"existing":    existing,
		"enrollments": created,
	})
}

// MarkComplete force-completes an enrollment (admin only).
func (ec *EnrollmentsController) MarkComplete(c *fiber.Ctx) error {
	enrollmentID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid enrollment ID")
	}

	var enrollment models.Enrollment
	if err := ec.DB.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Enrollment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	now := time.Now()
	enrollment.Status = models.EnrollmentCompleted
	enrollment.CompletedAt = &now
	if err := ec.DB.Save(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update enrollment")
	}
	return c.JSON(enrollment)
}

// UpdateEnrollment lets an admin change enrollment status or expiry.
func (ec *EnrollmentsController) UpdateEnrollment(c *fiber.Ctx) error {
	enrollmentID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid enrollment ID")
	}

	var enrollment models.Enrollment
	if err := ec.DB.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Enrollment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Status    string     `json:"status" validate:"omitempty,oneof=active completed dropped expired"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.Status != "" {
		enrollment.Status = input.Status
		if input.Status == models.EnrollmentCompleted && enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	}
	if input.ExpiresAt != nil {
		enrollment.ExpiresAt = input.ExpiresAt
	}

	if err := ec.DB.Save(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not update enrollment")
	}
	return c.JSON(enrollment)
}

// MyCourses lists the courses the current user is enrolled in, with their
// progress snapshot.
func (ec *EnrollmentsController) MyCourses(c *fiber.Ctx) error {
	user := currentUser(c)

	var enrollments []models.Enrollment
	if err := ec.DB.Where("user_id = ?", user.ID).Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(enrollments))
	for _, enrollment := range enrollments {
		var course models.Course
		if err := ec.DB.First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}

		var progress models.CourseProgress
		ec.DB.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&progress)

		result = append(result, fiber.Map{
			"enrollment_id": enrollment.ID,
			"status":        enrollment.Status,
			"enrolled_at":   enrollment.CreatedAt,
			"completed_at":  enrollment.CompletedAt,
			"course": fiber.Map{
				"id":          course.ID,
				"title":       course.Title,
				"slug":        course.Slug,
				"thumbnail":   course.Thumbnail,
				"level":       course.Level,
				"description": course.ShortDescription,
			},
			"progress": fiber.Map{
				"videos_completed":    progress.VideosCompleted,
				"total_videos":        progress.TotalVideos,
				"progress_percentage": progress.ProgressPercentage(),
				"is_completed":        progress.IsCompleted(),
			},
		})
	}

	return c.JSON(result)
}
