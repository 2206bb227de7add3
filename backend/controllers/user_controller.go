package controllers

import (
	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user := currentUser(c)

	var activeEnrollments []models.Enrollment
	uc.DB.Where("user_id = ? AND status = ?", user.ID, models.EnrollmentActive).
		Order("updated_at DESC").
		Limit(3).
		Find(&activeEnrollments)

	var certificates int64
	uc.DB.Model(&models.Certificate{}).Where("user_id = ?", user.ID).Count(&certificates)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":                 user.ID,
		"email":              user.Email,
		"name":               user.FullName(),
		"role":               user.Role,
		"profile_picture":    user.ProfilePic,
		"bio":                user.Bio,
		"phone_number":       user.PhoneNumber,
		"created_at":         user.CreatedAt,
		"active_enrollments": activeEnrollments,
		"certificates":       certificates,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates authenticated user's profile data
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	user := currentUser(c)

	var input struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Bio         string `json:"bio"`
		PhoneNumber string `json:"phone_number"`
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password" validate:"omitempty,min=8"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}

	if input.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
			return utils.Unauthorized(c, "Old password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashed)
	}

	if err := uc.DB.Save(user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":           user.ID,
		"email":        user.Email,
		"name":         user.FullName(),
		"bio":          user.Bio,
		"phone_number": user.PhoneNumber,
	})
}

// ListStudents returns all student accounts (admin only).
func (uc *UserController) ListStudents(c *fiber.Ctx) error {
	var students []models.User
	if err := uc.DB.Where("role = ?", models.RoleStudent).Find(&students).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(students))
	for _, s := range students {
		result = append(result, fiber.Map{
			"id":         s.ID,
			"email":      s.Email,
			"name":       s.FullName(),
			"created_at": s.CreatedAt,
		})
	}
	return c.JSON(result)
}
