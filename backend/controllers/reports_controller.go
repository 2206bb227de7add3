package controllers

import (
	"errors"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportsController serves admin-only aggregate views.
type ReportsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewReportsController(db *gorm.DB, cfg *config.Config) *ReportsController {
	return &ReportsController{DB: db, Cfg: cfg}
}

// StudentProgressReport summarizes every student: enrollments, completions,
// average quiz score and certificates earned.
func (rc *ReportsController) StudentProgressReport(c *fiber.Ctx) error {
	var students []models.User
	if err := rc.DB.Where("role = ?", models.RoleStudent).
		Order("created_at").Find(&students).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	report := make([]fiber.Map, 0, len(students))
	for _, student := range students {
		var enrolled, completed, certificates int64
		rc.DB.Model(&models.Enrollment{}).
			Where("user_id = ?", student.ID).Count(&enrolled)
		rc.DB.Model(&models.Enrollment{}).
			Where("user_id = ? AND status = ?", student.ID, models.EnrollmentCompleted).
			Count(&completed)
		rc.DB.Model(&models.Certificate{}).
			Where("user_id = ?", student.ID).Count(&certificates)

		var avgScore *float64
		rc.DB.Model(&models.QuizAttempt{}).
			Where("user_id = ? AND status = ?", student.ID, models.AttemptCompleted).
			Select("AVG(score)").Scan(&avgScore)

		entry := fiber.Map{
			"user_id":           student.ID,
			"name":              student.FullName(),
			"email":             student.Email,
			"enrolled_courses":  enrolled,
			"completed_courses": completed,
			"certificates":      certificates,
		}
		if avgScore != nil {
			entry["average_quiz_score"] = *avgScore
		}
		report = append(report, entry)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"students": report,
		"total":    len(report),
	})
}

// CourseProgressReport breaks one course down per enrolled student.
func (rc *ReportsController) CourseProgressReport(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := rc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var enrollments []models.Enrollment
	if err := rc.DB.Preload("User").Where("course_id = ?", courseID).
		Order("created_at").Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	rows := make([]fiber.Map, 0, len(enrollments))
	var completedCount int
	for _, enrollment := range enrollments {
		var progress models.CourseProgress
		entry := fiber.Map{
			"user_id":     enrollment.UserID,
			"name":        enrollment.User.FullName(),
			"email":       enrollment.User.Email,
			"status":      enrollment.Status,
			"enrolled_at": enrollment.CreatedAt,
		}
		err := rc.DB.Where("user_id = ? AND course_id = ?", enrollment.UserID, courseID).
			First(&progress).Error
		if err == nil {
			entry["videos_completed"] = progress.VideosCompleted
			entry["total_videos"] = progress.TotalVideos
			entry["quizzes_passed"] = progress.QuizzesPassed
			entry["total_quizzes"] = progress.TotalQuizzes
			entry["progress_percentage"] = progress.ProgressPercentage()
			entry["completed_at"] = progress.CompletedAt
		}
		if enrollment.Status == models.EnrollmentCompleted {
			completedCount++
		}
		rows = append(rows, entry)
	}

	completionRate := 0.0
	if len(enrollments) > 0 {
		completionRate = float64(completedCount) / float64(len(enrollments)) * 100
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"course": fiber.Map{
			"id":    course.ID,
			"title": course.Title,
			"slug":  course.Slug,
		},
		"enrolled_count":  len(enrollments),
		"completed_count": completedCount,
		"completion_rate": completionRate,
		"students":        rows,
	})
}
