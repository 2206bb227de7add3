package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func withID(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Category{},
		&models.Course{},
		&models.Module{},
		&models.Video{},
		&models.Resource{},
		&models.Enrollment{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.QuizAttempt{},
		&models.QuizResponse{},
		&models.VideoProgress{},
		&models.CourseProgress{},
		&models.Certificate{},
	))
	return db
}

// seedCourse creates a published course with one module and the given number
// of videos, each ten minutes long.
func seedCourse(t *testing.T, db *gorm.DB, videoCount int) (models.Course, []models.Video) {
	t.Helper()

	course := models.Course{
		Title:  "Go from scratch",
		Slug:   fmt.Sprintf("go-from-scratch-%s", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))),
		Status: models.CoursePublished,
	}
	require.NoError(t, db.Create(&course).Error)

	module := models.Module{CourseID: course.ID, Title: "Basics", Order: 1}
	require.NoError(t, db.Create(&module).Error)

	videos := make([]models.Video, 0, videoCount)
	for i := 0; i < videoCount; i++ {
		video := models.Video{
			ModuleID:        module.ID,
			Title:           fmt.Sprintf("Lesson %d", i+1),
			DurationMinutes: 10,
			Order:           i + 1,
		}
		require.NoError(t, db.Create(&video).Error)
		videos = append(videos, video)
	}
	return course, videos
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()

	user := models.User{
		Email:     fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "."))),
		FirstName: "Test",
		LastName:  "Student",
		Role:      models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedQuiz attaches a quiz with one multiple-choice question to a course.
func seedQuiz(t *testing.T, db *gorm.DB, courseID uint, required bool) (models.Quiz, models.Question) {
	t.Helper()

	quiz := models.Quiz{
		Title:        "Checkpoint",
		CourseID:     &courseID,
		PassingScore: 70,
		IsRequired:   required,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&quiz).Error)

	question := models.Question{
		QuizID:       quiz.ID,
		QuestionText: "Which keyword declares a variable?",
		Type:         models.QuestionMultipleChoice,
		Points:       1,
		Answers: []models.Answer{
			{AnswerText: "var", IsCorrect: true, Order: 1},
			{AnswerText: "let", Order: 2},
		},
	}
	require.NoError(t, db.Create(&question).Error)
	return quiz, question
}

func correctAnswerID(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()

	var answer models.Answer
	require.NoError(t, db.Where("question_id = ? AND is_correct = ?", questionID, true).
		First(&answer).Error)
	return answer.ID
}
