package services

import (
	"errors"
	"testing"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuizService(db *gorm.DB) *QuizService {
	return NewQuizService(db, NewProgressService(db, false))
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected a service error, got %v", err)
	assert.Equal(t, code, svcErr.Code)
}

func TestStartAttemptUnknownQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)

	_, err := svc.StartAttempt(user.ID, 9999, false)
	assertCode(t, err, CodeNotFound)
}

func TestStartAttemptUnpublishedQuiz(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)

	quiz := models.Quiz{Title: "Draft quiz", PassingScore: 70, IsPublished: false}
	require.NoError(t, db.Create(&quiz).Error)
	// sqlite keeps the column default otherwise
	require.NoError(t, db.Model(&quiz).Update("is_published", false).Error)

	_, err := svc.StartAttempt(user.ID, quiz.ID, false)
	assertCode(t, err, CodeNotFound)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptInProgress, attempt.Status)
}

func TestStartAttemptReturnsExistingInProgress(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, _ := seedQuiz(t, db, course.ID, false)

	first, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	second, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.QuizAttempt{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartAttemptMaxAttempts(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, question := seedQuiz(t, db, course.ID, false)
	require.NoError(t, db.Model(&quiz).Update("max_attempts", 1).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: question.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, question.ID)}},
	})
	require.NoError(t, err)

	_, err = svc.StartAttempt(user.ID, quiz.ID, false)
	assertCode(t, err, CodeAttemptLimitExceeded)
}

func TestStartAttemptTimedOutDoesNotCountAgainstCap(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, _ := seedQuiz(t, db, course.ID, false)
	require.NoError(t, db.Model(&quiz).Update("max_attempts", 1).Error)

	timedOut := models.QuizAttempt{
		UserID:    user.ID,
		QuizID:    quiz.ID,
		Status:    models.AttemptTimedOut,
		StartedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&timedOut).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptInProgress, attempt.Status)
}

func TestSubmitAttemptOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	owner := seedUser(t, db)
	other := models.User{Email: "other@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&other).Error)

	course, _ := seedCourse(t, db, 1)
	quiz, _ := seedQuiz(t, db, course.ID, false)

	attempt, err := svc.StartAttempt(owner.ID, quiz.ID, false)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(attempt.ID, other.ID, nil)
	assertCode(t, err, CodeForbidden)
}

func TestSubmitAttemptAlreadyCompleted(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, question := seedQuiz(t, db, course.ID, false)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: question.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, question.ID)}},
	})
	require.NoError(t, err)

	_, err = svc.SubmitAttempt(attempt.ID, user.ID, nil)
	assertCode(t, err, CodeInvalidState)
}

func TestSubmitAttemptScoring(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, mcQuestion := seedQuiz(t, db, course.ID, false)

	saQuestion := models.Question{
		QuizID:       quiz.ID,
		QuestionText: "Name the package initializer function",
		Type:         models.QuestionShortAnswer,
		Points:       1,
		Answers: []models.Answer{
			{AnswerText: "init", IsCorrect: true},
		},
	}
	require.NoError(t, db.Create(&saQuestion).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	result, err := svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: mcQuestion.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, mcQuestion.ID)}},
		{QuestionID: saQuestion.ID, TextResponse: "  INIT "},
	})
	require.NoError(t, err)

	assert.Equal(t, models.AttemptCompleted, result.Status)
	assert.Equal(t, float64(100), result.Score)
	assert.True(t, result.Passed)
	require.NotNil(t, result.CompletedAt)
}

func TestSubmitAttemptUnansweredQuestionsCountInDenominator(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, answered := seedQuiz(t, db, course.ID, false)

	unanswered := models.Question{
		QuizID:       quiz.ID,
		QuestionText: "Left blank",
		Type:         models.QuestionMultipleChoice,
		Points:       1,
		Answers: []models.Answer{
			{AnswerText: "yes", IsCorrect: true},
			{AnswerText: "no"},
		},
	}
	require.NoError(t, db.Create(&unanswered).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	result, err := svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: answered.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, answered.ID)}},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(50), result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitAttemptForeignAnswersIgnored(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, question := seedQuiz(t, db, course.ID, false)
	otherQuiz, otherQuestion := seedQuiz(t, db, course.ID, false)
	_ = otherQuiz

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	// Selecting another question's correct answer must not score.
	result, err := svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: question.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, otherQuestion.ID)}},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(0), result.Score)
	assert.False(t, result.Passed)
}

func TestSubmitAttemptQuizWithoutQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)

	quiz := models.Quiz{Title: "Empty", PassingScore: 0, IsPublished: true}
	require.NoError(t, db.Create(&quiz).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)

	result, err := svc.SubmitAttempt(attempt.ID, user.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, float64(0), result.Score)
	assert.False(t, result.Passed, "a quiz worth zero points never passes")
}

func TestSubmitAttemptTimeLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, question := seedQuiz(t, db, course.ID, false)
	require.NoError(t, db.Model(&quiz).Update("time_limit_minutes", 10).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.QuizAttempt{}).
		Where("id = ?", attempt.ID).
		Update("started_at", time.Now().Add(-601*time.Second)).Error)

	_, err = svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: question.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, question.ID)}},
	})
	assertCode(t, err, CodeTimeLimitExceeded)

	var saved models.QuizAttempt
	require.NoError(t, db.First(&saved, attempt.ID).Error)
	assert.Equal(t, models.AttemptTimedOut, saved.Status)
	assert.Equal(t, float64(0), saved.Score)
	assert.False(t, saved.Passed)
	require.NotNil(t, saved.CompletedAt)

	// Terminal: submitting again is rejected.
	_, err = svc.SubmitAttempt(attempt.ID, user.ID, nil)
	assertCode(t, err, CodeInvalidState)
}

func TestSubmitAttemptWithinTimeLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	user := seedUser(t, db)
	course, _ := seedCourse(t, db, 1)
	quiz, question := seedQuiz(t, db, course.ID, false)
	require.NoError(t, db.Model(&quiz).Update("time_limit_minutes", 10).Error)

	attempt, err := svc.StartAttempt(user.ID, quiz.ID, false)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.QuizAttempt{}).
		Where("id = ?", attempt.ID).
		Update("started_at", time.Now().Add(-599*time.Second)).Error)

	result, err := svc.SubmitAttempt(attempt.ID, user.ID, []ResponseInput{
		{QuestionID: question.ID, SelectedAnswerIDs: []uint{correctAnswerID(t, db, question.ID)}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttemptCompleted, result.Status)
	assert.True(t, result.Passed)
	assert.GreaterOrEqual(t, result.TimeTakenSeconds, 599)
}

func TestQuizStatistics(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	course, _ := seedCourse(t, db, 1)
	quiz, _ := seedQuiz(t, db, course.ID, false)

	now := time.Now()
	attempts := []models.QuizAttempt{
		{UserID: 1, QuizID: quiz.ID, Status: models.AttemptCompleted, Score: 100, Passed: true, TimeTakenSeconds: 120, StartedAt: now, CompletedAt: &now},
		{UserID: 2, QuizID: quiz.ID, Status: models.AttemptCompleted, Score: 50, Passed: false, TimeTakenSeconds: 60, StartedAt: now, CompletedAt: &now},
		{UserID: 3, QuizID: quiz.ID, Status: models.AttemptInProgress, StartedAt: now},
	}
	for i := range attempts {
		require.NoError(t, db.Create(&attempts[i]).Error)
	}

	stats, err := svc.Statistics(quiz.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalAttempts)
	assert.Equal(t, float64(75), stats.AverageScore)
	assert.Equal(t, float64(50), stats.PassRate)
	assert.Equal(t, float64(90), stats.AverageTimeSeconds)
}

func TestQuizStatisticsNoAttempts(t *testing.T) {
	db := newTestDB(t)
	svc := newQuizService(db)
	course, _ := seedCourse(t, db, 1)
	quiz, _ := seedQuiz(t, db, course.ID, false)

	stats, err := svc.Statistics(quiz.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalAttempts)
	assert.Zero(t, stats.AverageScore)
}
