package services

import (
	"errors"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"gorm.io/gorm"
)

// VideoProgressInput is one watch-time report from the player.
type VideoProgressInput struct {
	WatchedSeconds      int  `json:"watched_seconds"`
	TotalSeconds        int  `json:"total_seconds"`
	LastPositionSeconds int  `json:"last_position_seconds"`
	IsCompleted         bool `json:"is_completed"`
}

// ProgressService accumulates watch-time into per-video completion state and
// runs the completion cascade that promotes it to course and enrollment
// level.
type ProgressService struct {
	db *gorm.DB

	// countEverySession makes WatchCount grow on every report. Historically
	// it only grew when the record was first created.
	countEverySession bool
}

func NewProgressService(db *gorm.DB, countEverySession bool) *ProgressService {
	return &ProgressService{db: db, countEverySession: countEverySession}
}

// RecordVideoProgress upserts the per-(user, video) record. Watched seconds
// never go backwards, completion is sticky, and crossing 90% (or an explicit
// completed flag) fires the completion cascade exactly once.
func (s *ProgressService) RecordVideoProgress(userID, videoID uint, in VideoProgressInput) (*models.VideoProgress, error) {
	if in.WatchedSeconds < 0 || in.TotalSeconds < 0 || in.LastPositionSeconds < 0 {
		return nil, ErrValidation("Watch times must not be negative")
	}

	var progress models.VideoProgress
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var video models.Video
		if err := tx.First(&video, videoID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("Video not found")
			}
			return err
		}

		err := tx.Where("user_id = ? AND video_id = ?", userID, videoID).First(&progress).Error
		created := false
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			progress = models.VideoProgress{
				UserID:       userID,
				VideoID:      videoID,
				TotalSeconds: video.DurationMinutes * 60,
			}
		} else if err != nil {
			return err
		}

		if created || s.countEverySession {
			progress.WatchCount++
		}

		if in.WatchedSeconds > progress.WatchedSeconds {
			progress.WatchedSeconds = in.WatchedSeconds
		}
		if in.TotalSeconds > 0 {
			progress.TotalSeconds = in.TotalSeconds
		}
		progress.LastPositionSeconds = in.LastPositionSeconds

		justCompleted := false
		if (in.IsCompleted || progress.ProgressPercentage() >= 90) && !progress.IsCompleted {
			now := time.Now()
			progress.IsCompleted = true
			progress.CompletedAt = &now
			justCompleted = true
		}

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}

		if justCompleted {
			return s.HandleVideoCompleted(tx, VideoCompleted{UserID: userID, VideoID: videoID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// HandleVideoCompleted resolves the video's course and re-evaluates course
// completion for the user.
func (s *ProgressService) HandleVideoCompleted(tx *gorm.DB, ev VideoCompleted) error {
	var video models.Video
	if err := tx.First(&video, ev.VideoID).Error; err != nil {
		return err
	}
	var module models.Module
	if err := tx.First(&module, video.ModuleID).Error; err != nil {
		return err
	}
	return s.syncCourseProgress(tx, ev.UserID, module.CourseID)
}

// HandleQuizPassed resolves the course a quiz is attached to, directly or
// through its module or video, and re-evaluates course completion. Standalone
// quizzes have no course and are ignored.
func (s *ProgressService) HandleQuizPassed(tx *gorm.DB, ev QuizPassed) error {
	var quiz models.Quiz
	if err := tx.First(&quiz, ev.QuizID).Error; err != nil {
		return err
	}

	courseID, err := quizCourseID(tx, &quiz)
	if err != nil {
		return err
	}
	if courseID == 0 {
		return nil
	}
	return s.syncCourseProgress(tx, ev.UserID, courseID)
}

func quizCourseID(tx *gorm.DB, quiz *models.Quiz) (uint, error) {
	if quiz.CourseID != nil {
		return *quiz.CourseID, nil
	}
	if quiz.ModuleID != nil {
		var module models.Module
		if err := tx.First(&module, *quiz.ModuleID).Error; err != nil {
			return 0, err
		}
		return module.CourseID, nil
	}
	if quiz.VideoID != nil {
		var video models.Video
		if err := tx.First(&video, *quiz.VideoID).Error; err != nil {
			return 0, err
		}
		var module models.Module
		if err := tx.First(&module, video.ModuleID).Error; err != nil {
			return 0, err
		}
		return module.CourseID, nil
	}
	return 0, nil
}

// syncCourseProgress is the completion cascade. Totals are always recomputed
// from current course content, never cached. A course with no videos never
// auto-completes; required quizzes are vacuously satisfied when there are
// none. Course completion, its timestamp and the enrollment transition all
// happen in the caller's transaction.
func (s *ProgressService) syncCourseProgress(tx *gorm.DB, userID, courseID uint) error {
	var cp models.CourseProgress
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cp = models.CourseProgress{UserID: userID, CourseID: courseID}
	} else if err != nil {
		return err
	}

	var totalVideos int64
	if err := tx.Model(&models.Video{}).
		Joins("JOIN modules ON modules.id = videos.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&totalVideos).Error; err != nil {
		return err
	}

	var videosCompleted int64
	if err := tx.Model(&models.VideoProgress{}).
		Joins("JOIN videos ON videos.id = video_progresses.video_id").
		Joins("JOIN modules ON modules.id = videos.module_id").
		Where("video_progresses.user_id = ? AND modules.course_id = ? AND video_progresses.is_completed = ?",
			userID, courseID, true).
		Count(&videosCompleted).Error; err != nil {
		return err
	}

	requiredQuizIDs, err := requiredQuizIDs(tx, courseID)
	if err != nil {
		return err
	}

	var quizzesPassed, quizzesCompleted int64
	if len(requiredQuizIDs) > 0 {
		if err := tx.Model(&models.QuizAttempt{}).
			Where("user_id = ? AND quiz_id IN ? AND passed = ?", userID, requiredQuizIDs, true).
			Distinct("quiz_id").
			Count(&quizzesPassed).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.QuizAttempt{}).
			Where("user_id = ? AND quiz_id IN ? AND status = ?", userID, requiredQuizIDs, models.AttemptCompleted).
			Distinct("quiz_id").
			Count(&quizzesCompleted).Error; err != nil {
			return err
		}
	}

	cp.TotalVideos = int(totalVideos)
	cp.VideosCompleted = int(videosCompleted)
	cp.TotalQuizzes = len(requiredQuizIDs)
	cp.QuizzesPassed = int(quizzesPassed)
	cp.QuizzesCompleted = int(quizzesCompleted)

	if cp.TotalVideos > 0 &&
		cp.VideosCompleted >= cp.TotalVideos &&
		cp.QuizzesPassed >= cp.TotalQuizzes {

		if cp.CompletedAt == nil {
			now := time.Now()
			cp.CompletedAt = &now
		}

		var enrollment models.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
		if err == nil && enrollment.Status != models.EnrollmentCompleted {
			now := time.Now()
			enrollment.Status = models.EnrollmentCompleted
			enrollment.CompletedAt = &now
			if err := tx.Save(&enrollment).Error; err != nil {
				return err
			}
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return tx.Save(&cp).Error
}

// requiredQuizIDs collects quizzes flagged required that hang off the course
// directly, off one of its modules, or off a video of one of its modules.
func requiredQuizIDs(tx *gorm.DB, courseID uint) ([]uint, error) {
	var moduleIDs []uint
	if err := tx.Model(&models.Module{}).
		Where("course_id = ?", courseID).
		Pluck("id", &moduleIDs).Error; err != nil {
		return nil, err
	}

	var videoIDs []uint
	if len(moduleIDs) > 0 {
		if err := tx.Model(&models.Video{}).
			Where("module_id IN ?", moduleIDs).
			Pluck("id", &videoIDs).Error; err != nil {
			return nil, err
		}
	}

	query := tx.Model(&models.Quiz{}).Where("is_required = ?", true)
	scope := tx.Where("course_id = ?", courseID)
	if len(moduleIDs) > 0 {
		scope = scope.Or("module_id IN ?", moduleIDs)
	}
	if len(videoIDs) > 0 {
		scope = scope.Or("video_id IN ?", videoIDs)
	}

	var quizIDs []uint
	if err := query.Where(scope).Pluck("id", &quizIDs).Error; err != nil {
		return nil, err
	}
	return quizIDs, nil
}

// GetCourseProgress returns the user's progress for a course, creating the
// record and refreshing its totals on the way.
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*models.CourseProgress, error) {
	var course models.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Course not found")
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.syncCourseProgress(tx, userID, courseID)
	})
	if err != nil {
		return nil, err
	}

	var cp models.CourseProgress
	if err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&cp).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}
