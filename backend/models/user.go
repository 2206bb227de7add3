package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null"`
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string `gorm:"default:student"` // student, admin
	ProfilePic   string
	Bio          string
	PhoneNumber  string

	// Google OAuth tokens for Drive access
	GoogleAccessToken  string
	GoogleRefreshToken string
	GoogleTokenExpiry  *time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
