package controllers

import (
	"errors"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ContentController manages modules, videos and downloadable resources
// within a course.
type ContentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewContentController(db *gorm.DB, cfg *config.Config) *ContentController {
	return &ContentController{DB: db, Cfg: cfg}
}

// Modules

func (cn *ContentController) ListModules(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var modules []models.Module
	if err := cn.DB.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("videos.\"order\"")
	}).Where("course_id = ?", courseID).
		Order("\"order\"").
		Find(&modules).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(modules)
}

func (cn *ContentController) AddModule(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cn.DB.First(&course, courseID).Error; err != nil {
		return utils.NotFound(c, "Course not found")
	}

	var input struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Order       int    `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	order := input.Order
	if order == 0 {
		var count int64
		cn.DB.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&count)
		order = int(count) + 1
	}

	module := models.Module{
		CourseID:    courseID,
		Title:       input.Title,
		Description: input.Description,
		Order:       order,
		IsPublished: true,
	}
	if err := cn.DB.Create(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not create module")
	}
	return utils.Created(c, module)
}

func (cn *ContentController) UpdateModule(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "moduleId")
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var module models.Module
	if err := cn.DB.First(&module, moduleID).Error; err != nil {
		return utils.NotFound(c, "Module not found")
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Order       *int   `json:"order"`
		IsPublished *bool  `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != "" {
		module.Title = input.Title
	}
	if input.Description != "" {
		module.Description = input.Description
	}
	if input.Order != nil {
		module.Order = *input.Order
	}
	if input.IsPublished != nil {
		module.IsPublished = *input.IsPublished
	}

	if err := cn.DB.Save(&module).Error; err != nil {
		return utils.InternalServerError(c, "Could not update module")
	}
	return c.JSON(module)
}

func (cn *ContentController) DeleteModule(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "moduleId")
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}
	if err := cn.DB.Delete(&models.Module{}, moduleID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete module")
	}
	return utils.NoContent(c)
}

// Videos

func (cn *ContentController) AddVideo(c *fiber.Ctx) error {
	moduleID, err := paramID(c, "moduleId")
	if err != nil {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var module models.Module
	if err := cn.DB.First(&module, moduleID).Error; err != nil {
		return utils.NotFound(c, "Module not found")
	}

	var input struct {
		Title           string `json:"title" validate:"required"`
		Description     string `json:"description"`
		DriveFileID     string `json:"drive_file_id" validate:"required"`
		DriveURL        string `json:"drive_url"`
		ThumbnailURL    string `json:"thumbnail_url"`
		DurationMinutes int    `json:"duration_minutes" validate:"min=0"`
		Order           int    `json:"order"`
		IsPreview       bool   `json:"is_preview"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	order := input.Order
	if order == 0 {
		var count int64
		cn.DB.Model(&models.Video{}).Where("module_id = ?", moduleID).Count(&count)
		order = int(count) + 1
	}

	video := models.Video{
		ModuleID:        moduleID,
		Title:           input.Title,
		Description:     input.Description,
		DriveFileID:     input.DriveFileID,
		DriveURL:        input.DriveURL,
		ThumbnailURL:    input.ThumbnailURL,
		DurationMinutes: input.DurationMinutes,
		Order:           order,
		IsPreview:       input.IsPreview,
		IsPublished:     true,
	}
	if err := cn.DB.Create(&video).Error; err != nil {
		return utils.InternalServerError(c, "Could not create video")
	}
	return utils.Created(c, video)
}

func (cn *ContentController) UpdateVideo(c *fiber.Ctx) error {
	videoID, err := paramID(c, "videoId")
	if err != nil {
		return utils.BadRequest(c, "Invalid video ID")
	}

	var video models.Video
	if err := cn.DB.First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Video not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		DriveFileID     string `json:"drive_file_id"`
		DriveURL        string `json:"drive_url"`
		ThumbnailURL    string `json:"thumbnail_url"`
		DurationMinutes *int   `json:"duration_minutes"`
		Order           *int   `json:"order"`
		IsPreview       *bool  `json:"is_preview"`
		IsPublished     *bool  `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != "" {
		video.Title = input.Title
	}
	if input.Description != "" {
		video.Description = input.Description
	}
	if input.DriveFileID != "" {
		video.DriveFileID = input.DriveFileID
	}
	if input.DriveURL != "" {
		video.DriveURL = input.DriveURL
	}
	if input.ThumbnailURL != "" {
		video.ThumbnailURL = input.ThumbnailURL
	}
	if input.DurationMinutes != nil {
		video.DurationMinutes = *input.DurationMinutes
	}
	if input.Order != nil {
		video.Order = *input.Order
	}
	if input.IsPreview != nil {
		video.IsPreview = *input.IsPreview
	}
	if input.IsPublished != nil {
		video.IsPublished = *input.IsPublished
	}

	if err := cn.DB.Save(&video).Error; err != nil {
		return utils.InternalServerError(c, "Could not update video")
	}
	return c.JSON(video)
}

func (cn *ContentController) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := paramID(c, "videoId")
	if err != nil {
		return utils.BadRequest(c, "Invalid video ID")
	}
	if err := cn.DB.Delete(&models.Video{}, videoID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete video")
	}
	return utils.NoContent(c)
}

// Resources

func (cn *ContentController) ListResources(c *fiber.Ctx) error {
	courseID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var moduleIDs []uint
	cn.DB.Model(&models.Module{}).Where("course_id = ?", courseID).Pluck("id", &moduleIDs)

	query := cn.DB.Where("course_id = ?", courseID)
	if len(moduleIDs) > 0 {
		query = query.Or("module_id IN ?", moduleIDs)
	}

	var resources []models.Resource
	if err := cn.DB.Where(query).Order("\"order\"").Find(&resources).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(resources)
}

func (cn *ContentController) AddResource(c *fiber.Ctx) error {
	var input struct {
		CourseID      *uint  `json:"course_id"`
		ModuleID      *uint  `json:"module_id"`
		Title         string `json:"title" validate:"required"`
		Description   string `json:"description"`
		Type          string `json:"type" validate:"omitempty,oneof=pdf doc spreadsheet presentation code other"`
		DriveFileID   string `json:"drive_file_id" validate:"required"`
		DriveURL      string `json:"drive_url"`
		FileSizeBytes int64  `json:"file_size_bytes"`
		Order         int    `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if input.CourseID == nil && input.ModuleID == nil {
		return utils.BadRequest(c, "Resource must belong to a course or a module")
	}

	resourceType := input.Type
	if resourceType == "" {
		resourceType = models.ResourceOther
	}

	resource := models.Resource{
		CourseID:      input.CourseID,
		ModuleID:      input.ModuleID,
		Title:         input.Title,
		Description:   input.Description,
		Type:          resourceType,
		DriveFileID:   input.DriveFileID,
		DriveURL:      input.DriveURL,
		FileSizeBytes: input.FileSizeBytes,
		Order:         input.Order,
		IsPublished:   true,
	}
	if err := cn.DB.Create(&resource).Error; err != nil {
		return utils.InternalServerError(c, "Could not create resource")
	}
	return utils.Created(c, resource)
}

func (cn *ContentController) DeleteResource(c *fiber.Ctx) error {
	resourceID, err := paramID(c, "resourceId")
	if err != nil {
		return utils.BadRequest(c, "Invalid resource ID")
	}
	if err := cn.DB.Delete(&models.Resource{}, resourceID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete resource")
	}
	return utils.NoContent(c)
}
