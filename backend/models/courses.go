package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CourseDraft     = "draft"
	CoursePublished = "published"
	CourseArchived  = "archived"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Category struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Slug        string `gorm:"unique;not null"`
	Description string
	Icon        string
	ParentID    *uint
	Order       int
	IsActive    bool `gorm:"default:true"`
}

type Course struct {
	gorm.Model
	Title            string `gorm:"not null"`
	Slug             string `gorm:"unique;not null"`
	Description      string
	ShortDescription string
	Thumbnail        string
	CategoryID       *uint
	InstructorID     *uint
	Level            string `gorm:"default:beginner"` // beginner, intermediate, advanced
	Status           string `gorm:"default:draft"`    // draft, published, archived
	DurationHours    int
	IsFeatured       bool
	Prerequisites    string
	LearningGoals    string
	PublishedAt      *time.Time

	Modules   []Module
	Resources []Resource
}

type Module struct {
	gorm.Model
	CourseID    uint `gorm:"not null"`
	Title       string
	Description string
	Order       int
	IsPublished bool `gorm:"default:true"`

	Videos []Video
}

type Video struct {
	gorm.Model
	ModuleID    uint `gorm:"not null"`
	Title       string
	Description string

	// External file-storage references
	DriveFileID  string
	DriveURL     string
	ThumbnailURL string

	DurationMinutes int
	Order           int
	IsPreview       bool
	IsPublished     bool `gorm:"default:true"`
}

const (
	ResourcePDF          = "pdf"
	ResourceDoc          = "doc"
	ResourceSpreadsheet  = "spreadsheet"
	ResourcePresentation = "presentation"
	ResourceCode         = "code"
	ResourceOther        = "other"
)

type Resource struct {
	gorm.Model
	CourseID    *uint
	ModuleID    *uint
	Title       string
	Description string
	Type        string `gorm:"default:other"`

	DriveFileID   string
	DriveURL      string
	FileSizeBytes int64

	Order       int
	IsPublished bool `gorm:"default:true"`
}

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
	EnrollmentExpired   = "expired"
)

type Enrollment struct {
	gorm.Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_user_course_enrollment"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_user_course_enrollment"`
	Status   string `gorm:"default:active"` // active, completed, dropped, expired

	CompletedAt  *time.Time
	ExpiresAt    *time.Time
	AssignedByID *uint

	User   User
	Course Course
}
