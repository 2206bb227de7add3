package services

import (
	"errors"
	"strings"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueCertificate creates the certificate for a completed course. Issuing
// twice for the same (user, course) returns the existing certificate; the
// returned flag reports whether a new one was created. The cascade never
// calls this - issuance is an explicit user or admin action.
func (s *ProgressService) IssueCertificate(userID, courseID uint) (*models.Certificate, bool, error) {
	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound("Course not found")
		}
		return nil, false, err
	}

	var progress models.CourseProgress
	if err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrInvalidState("No progress found for this course")
		}
		return nil, false, err
	}
	if !progress.IsCompleted() {
		return nil, false, ErrInvalidState("Course not yet completed")
	}

	var existing models.Certificate
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	certificate := models.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		CertificateNumber: newCertificateNumber(),
		IssuedAt:          time.Now(),
	}
	if err := s.db.Create(&certificate).Error; err != nil {
		return nil, false, err
	}
	return &certificate, true, nil
}

func newCertificateNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "CERT-" + strings.ToUpper(hex[:8])
}
