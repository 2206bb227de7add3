package controllers

import (
	"errors"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/services"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Progress: progress}
}

// RecordVideoProgress upserts the caller's progress on one video and may
// trigger course completion.
func (pc *ProgressController) RecordVideoProgress(c *fiber.Ctx) error {
	user := currentUser(c)

	videoID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid video ID")
	}

	var input services.VideoProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	progress, err := pc.Progress.RecordVideoProgress(user.ID, videoID, input)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"progress":            progress,
		"progress_percentage": progress.ProgressPercentage(),
	})
}

// MyVideoProgress lists the caller's video progress inside one course.
func (pc *ProgressController) MyVideoProgress(c *fiber.Ctx) error {
	user := currentUser(c)

	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var progress []models.VideoProgress
	err = pc.DB.
		Joins("JOIN videos ON videos.id = video_progresses.video_id").
		Joins("JOIN modules ON modules.id = videos.module_id").
		Where("video_progresses.user_id = ? AND modules.course_id = ?", user.ID, courseID).
		Find(&progress).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(progress)
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	user := currentUser(c)

	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	progress, err := pc.Progress.GetCourseProgress(user.ID, courseID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"progress":            progress,
		"progress_percentage": progress.ProgressPercentage(),
		"is_completed":        progress.IsCompleted(),
	})
}

// MyProgress lists course progress rows for every course the caller touched.
func (pc *ProgressController) MyProgress(c *fiber.Ctx) error {
	user := currentUser(c)

	var rows []models.CourseProgress
	if err := pc.DB.Where("user_id = ?", user.ID).
		Order("updated_at DESC").Find(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		result = append(result, fiber.Map{
			"progress":            row,
			"progress_percentage": row.ProgressPercentage(),
			"is_completed":        row.IsCompleted(),
		})
	}
	return c.JSON(result)
}

// Certificates

func (pc *ProgressController) IssueCertificate(c *fiber.Ctx) error {
	user := currentUser(c)

	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	cert, created, err := pc.Progress.IssueCertificate(user.ID, courseID)
	if err != nil {
		return utils.ServiceError(c, err)
	}

	message := "Certificate already issued"
	if created {
		message = "Certificate issued"
	}
	return c.JSON(fiber.Map{
		"message":     message,
		"certificate": cert,
	})
}

func (pc *ProgressController) MyCertificates(c *fiber.Ctx) error {
	user := currentUser(c)

	var certs []models.Certificate
	if err := pc.DB.Preload("Course").Where("user_id = ?", user.ID).
		Order("issued_at DESC").Find(&certs).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(certs)
}

// VerifyCertificate is public: anyone holding a certificate number can
// confirm it is genuine.
func (pc *ProgressController) VerifyCertificate(c *fiber.Ctx) error {
	number := c.Params("number")
	if number == "" {
		return utils.BadRequest(c, "Certificate number is required")
	}

	var cert models.Certificate
	if err := pc.DB.Preload("User").Preload("Course").
		Where("certificate_number = ?", number).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Certificate not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"valid":              true,
		"certificate_number": cert.CertificateNumber,
		"student":            cert.User.FullName(),
		"course":             cert.Course.Title,
		"issued_at":          cert.IssuedAt,
	})
}
