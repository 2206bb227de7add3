package controllers

import (
	"strconv"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/drive"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DriveController proxies Google Drive listings for admins picking course
// content. It refreshes the stored access token when it is about to expire.
type DriveController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Drive *drive.Client
}

func NewDriveController(db *gorm.DB, cfg *config.Config, client *drive.Client) *DriveController {
	return &DriveController{DB: db, Cfg: cfg, Drive: client}
}

func (dc *DriveController) ListFiles(c *fiber.Ctx) error {
	user := currentUser(c)

	token, err := dc.accessToken(user)
	if err != nil {
		return utils.Unauthorized(c, "Google account not linked or token expired")
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	opts := drive.ListOptions{
		FolderID:  c.Query("folder"),
		FileType:  c.Query("type"),
		PageSize:  pageSize,
		PageToken: c.Query("page_token"),
	}

	list, err := dc.Drive.ListFiles(token, opts)
	if err != nil {
		return utils.InternalServerError(c, "Could not list Drive files")
	}
	return c.JSON(list)
}

// accessToken returns a usable access token for the user, refreshing it when
// it expires within the next minute.
func (dc *DriveController) accessToken(user *models.User) (string, error) {
	if user.GoogleTokenExpiry != nil && time.Until(*user.GoogleTokenExpiry) > time.Minute {
		return user.GoogleAccessToken, nil
	}
	if user.GoogleRefreshToken == "" {
		if user.GoogleAccessToken != "" {
			return user.GoogleAccessToken, nil
		}
		return "", fiber.ErrUnauthorized
	}

	token, err := dc.Drive.RefreshToken(user.GoogleRefreshToken)
	if err != nil {
		return "", err
	}

	expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	user.GoogleAccessToken = token.AccessToken
	user.GoogleTokenExpiry = &expiry
	if token.RefreshToken != "" {
		user.GoogleRefreshToken = token.RefreshToken
	}
	if err := dc.DB.Save(user).Error; err != nil {
		return "", err
	}
	return token.AccessToken, nil
}
