package controllers

import (
	"errors"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/drive"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Drive *drive.Client
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Drive: drive.NewClient(cfg)}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new student account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User registration data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         models.RoleStudent,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.FullName(),
			"role":  user.Role,
		},
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.DB.Create(&models.LoginHistory{UserID: user.ID, LoginTime: time.Now()})

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.FullName(),
			"role":  user.Role,
		},
	})
}

// GoogleLogin exchanges an OAuth authorization code, provisions the account
// on first sign-in and stores the Drive tokens for later file listings.
func (ac *AuthController) GoogleLogin(c *fiber.Ctx) error {
	var input struct {
		Code        string `json:"code" validate:"required"`
		RedirectURI string `json:"redirect_uri" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	tokens, err := ac.Drive.ExchangeCode(input.Code, input.RedirectURI)
	if err != nil {
		return utils.Unauthorized(c, "Could not exchange authorization code")
	}

	info, err := ac.Drive.UserInfo(tokens.AccessToken)
	if err != nil || info.Email == "" {
		return utils.Unauthorized(c, "Could not fetch Google profile")
	}

	var user models.User
	err = ac.DB.Where("email = ?", info.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:      info.Email,
			FirstName:  info.Name,
			Role:       models.RoleStudent,
			ProfilePic: info.Picture,
		}
		if err := ac.DB.Create(&user).Error; err != nil {
			return utils.InternalServerError(c, "Could not create user")
		}
	} else if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	expiry := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	user.GoogleAccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		user.GoogleRefreshToken = tokens.RefreshToken
	}
	user.GoogleTokenExpiry = &expiry
	if info.Picture != "" && user.ProfilePic != info.Picture {
		user.ProfilePic = info.Picture
	}
	if err := ac.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not save user")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.DB.Create(&models.LoginHistory{UserID: user.ID, LoginTime: time.Now()})

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.FullName(),
			"role":  user.Role,
		},
	})
}
