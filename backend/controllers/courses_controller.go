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

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

// Category endpoints

func (cc *CoursesController) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := cc.DB.Where("is_active = ? AND parent_id IS NULL", true).
		Order("\"order\", name").
		Find(&categories).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(categories)
}

func (cc *CoursesController) CreateCategory(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		ParentID    *uint  `json:"parent_id"`
		Order       int    `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	category := models.Category{
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name),
		Description: input.Description,
		Icon:        input.Icon,
		ParentID:    input.ParentID,
		Order:       input.Order,
		IsActive:    true,
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		return utils.InternalServerError(c, "Could not create category")
	}
	return utils.Created(c, category)
}

func (cc *CoursesController) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	var category models.Category
	if err := cc.DB.First(&category, id).Error; err != nil {
		return utils.NotFound(c, "Category not found")
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
		Order       *int   `json:"order"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Name != "" {
		category.Name = input.Name
		category.Slug = utils.Slugify(input.Name)
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.Icon != "" {
		category.Icon = input.Icon
	}
	if input.Order != nil {
		category.Order = *input.Order
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := cc.DB.Save(&category).Error; err != nil {
		return utils.InternalServerError(c, "Could not update category")
	}
	return c.JSON(category)
}

func (cc *CoursesController) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}
	if err := cc.DB.Delete(&models.Category{}, id).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete category")
	}
	return utils.NoContent(c)
}

// Course endpoints

func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	user := currentUser(c)

	query := cc.DB.Model(&models.Course{})
	// Students only see published courses.
	if user == nil || !user.IsAdmin() {
		query = query.Where("status = ?", models.CoursePublished)
	}

	if category := c.Query("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if level := c.Query("level"); level != "" {
		query = query.Where("level = ?", level)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR short_description LIKE ?", like, like, like)
	}

	var courses []models.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(courses)
}

func (cc *CoursesController) FeaturedCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := cc.DB.Where("status = ? AND is_featured = ?", models.CoursePublished, true).
		Order("created_at DESC").
		Limit(6).
		Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(courses)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	user := currentUser(c)

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Modules.Videos").Preload("Resources").First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if course.Status != models.CoursePublished && (user == nil || !user.IsAdmin()) {
		return utils.NotFound(c, "Course not found")
	}

	var enrolled int64
	cc.DB.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrolled)

	return c.JSON(fiber.Map{
		"course":            course,
		"enrolled_students": enrolled,
	})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	user := currentUser(c)

	var input struct {
		Title            string `json:"title" validate:"required,min=3"`
		Description      string `json:"description"`
		ShortDescription string `json:"short_description"`
		Thumbnail        string `json:"thumbnail"`
		CategoryID       *uint  `json:"category_id"`
		Level            string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
		DurationHours    int    `json:"duration_hours"`
		Prerequisites    string `json:"prerequisites"`
		LearningGoals    string `json:"learning_goals"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	level := input.Level
	if level == "" {
		level = models.LevelBeginner
	}

	instructorID := user.ID
	course := models.Course{
		Title:            input.Title,
		Slug:             utils.Slugify(input.Title),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Thumbnail:        input.Thumbnail,
		CategoryID:       input.CategoryID,
		InstructorID:     &instructorID,
		Level:            level,
		Status:           models.CourseDraft,
		DurationHours:    input.DurationHours,
		Prerequisites:    input.Prerequisites,
		LearningGoals:    input.LearningGoals,
	}
	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title            string `json:"title"`
		Description      string `json:"description"`
		ShortDescription string `json:"short_description"`
		Thumbnail        string `json:"thumbnail"`
		CategoryID       *uint  `json:"category_id"`
		Level            string `json:"level"`
		Status           string `json:"status"`
		DurationHours    *int   `json:"duration_hours"`
		IsFeatured       *bool  `json:"is_featured"`
		Prerequisites    string `json:"prerequisites"`
		LearningGoals    string `json:"learning_goals"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title != "" {
		course.Title = input.Title
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.ShortDescription != "" {
		course.ShortDescription = input.ShortDescription
	}
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}
	if input.CategoryID != nil {
		course.CategoryID = input.CategoryID
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.Status != "" {
		if course.Status != models.CoursePublished && input.Status == models.CoursePublished {
			now := time.Now()
			course.PublishedAt = &now
		}
		course.Status = input.Status
	}
	if input.DurationHours != nil {
		course.DurationHours = *input.DurationHours
	}
	if input.IsFeatured != nil {
		course.IsFeatured = *input.IsFeatured
	}
	if input.Prerequisites != "" {
		course.Prerequisites = input.Prerequisites
	}
	if input.LearningGoals != "" {
		course.LearningGoals = input.LearningGoals
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not update course")
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	if err := cc.DB.Delete(&models.Course{}, id).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}
	return utils.NoContent(c)
}
