package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type VideoProgress struct {
	gorm.Model
	UserID  uint `gorm:"not null;uniqueIndex:idx_user_video_progress"`
	VideoID uint `gorm:"not null;uniqueIndex:idx_user_video_progress"`

	WatchedSeconds int
	TotalSeconds   int
	IsCompleted    bool
	CompletedAt    *time.Time

	LastPositionSeconds int
	WatchCount          int
}

// ProgressPercentage is capped at 100 even when watched exceeds total (rewatch).
func (vp *VideoProgress) ProgressPercentage() float64 {
	if vp.TotalSeconds == 0 {
		return 0
	}
	pct := round2(float64(vp.WatchedSeconds) / float64(vp.TotalSeconds) * 100)
	return math.Min(pct, 100)
}

type CourseProgress struct {
	gorm.Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_user_course_progress"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_user_course_progress"`

	VideosCompleted  int
	TotalVideos      int
	QuizzesCompleted int
	QuizzesPassed    int
	TotalQuizzes     int

	CompletedAt *time.Time
}

func (cp *CourseProgress) ProgressPercentage() float64 {
	if cp.TotalVideos == 0 {
		return 0
	}
	return round2(float64(cp.VideosCompleted) / float64(cp.TotalVideos) * 100)
}

func (cp *CourseProgress) IsCompleted() bool {
	return cp.VideosCompleted >= cp.TotalVideos && cp.CompletedAt != nil
}

type Certificate struct {
	gorm.Model
	UserID   uint `gorm:"not null;uniqueIndex:idx_user_course_certificate"`
	CourseID uint `gorm:"not null;uniqueIndex:idx_user_course_certificate"`

	CertificateNumber string `gorm:"unique;not null"`
	IssuedAt          time.Time

	VerificationURL string
	PDFURL          string

	User   User
	Course Course
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
