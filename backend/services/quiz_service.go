package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"gorm.io/gorm"
)

// ResponseInput is one submitted answer within a quiz submission.
type ResponseInput struct {
	QuestionID        uint   `json:"question_id"`
	SelectedAnswerIDs []uint `json:"selected_answer_ids"`
	TextResponse      string `json:"text_response"`
}

// QuizService owns the attempt lifecycle: start, submit, timeout and
// scoring. Attempts are immutable once completed or timed out.
type QuizService struct {
	db       *gorm.DB
	progress *ProgressService
}

func NewQuizService(db *gorm.DB, progress *ProgressService) *QuizService {
	return &QuizService{db: db, progress: progress}
}

// StartAttempt opens a new in-progress attempt for the user. An existing
// in-progress attempt is returned as is instead of creating a duplicate.
// Only completed attempts count against the quiz attempt cap.
func (s *QuizService) StartAttempt(userID, quizID uint, isAdmin bool) (*models.QuizAttempt, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Quiz not found")
		}
		return nil, err
	}
	if !quiz.IsPublished && !isAdmin {
		return nil, ErrNotFound("Quiz not found")
	}

	var existing models.QuizAttempt
	err := s.db.Where("user_id = ? AND quiz_id = ? AND status = ?",
		userID, quizID, models.AttemptInProgress).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if quiz.MaxAttempts > 0 {
		var completed int64
		if err := s.db.Model(&models.QuizAttempt{}).
			Where("user_id = ? AND quiz_id = ? AND status = ?",
				userID, quizID, models.AttemptCompleted).
			Count(&completed).Error; err != nil {
			return nil, err
		}
		if completed >= int64(quiz.MaxAttempts) {
			return nil, ErrAttemptLimitExceeded(
				fmt.Sprintf("Maximum attempts (%d) reached", quiz.MaxAttempts))
		}
	}

	attempt := models.QuizAttempt{
		UserID:    userID,
		QuizID:    quizID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now(),
	}
	if err := s.db.Create(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// SubmitAttempt evaluates the submitted responses, completes the attempt
// and stores its score. A submission past the quiz time limit force-completes
// the attempt as timed out without scoring it. Responses referencing a
// question outside this quiz are skipped.
func (s *QuizService) SubmitAttempt(attemptID, userID uint, inputs []ResponseInput) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := s.db.First(&attempt, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Quiz attempt not found")
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrForbidden("Quiz attempt belongs to another user")
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrInvalidState("Quiz attempt is already " + attempt.Status)
	}

	var quiz models.Quiz
	if err := s.db.First(&quiz, attempt.QuizID).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	elapsed := now.Sub(attempt.StartedAt)

	// The time limit is enforced by wall clock at submission, not a timer.
	if quiz.TimeLimitMinutes > 0 && elapsed > time.Duration(quiz.TimeLimitMinutes)*time.Minute {
		attempt.Status = models.AttemptTimedOut
		attempt.CompletedAt = &now
		attempt.TimeTakenSeconds = int(elapsed.Seconds())
		if err := s.db.Save(&attempt).Error; err != nil {
			return nil, err
		}
		return nil, ErrTimeLimitExceeded("Quiz time limit exceeded")
	}

	var questions []models.Question
	if err := s.db.Preload("Answers").Where("quiz_id = ?", quiz.ID).Find(&questions).Error; err != nil {
		return nil, err
	}
	questionsByID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		questionsByID[q.ID] = q
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, input := range inputs {
			question, ok := questionsByID[input.QuestionID]
			if !ok {
				continue
			}

			// Keep only selections that are answers of this question.
			var selected []models.Answer
			var selectedIDs []uint
			for _, id := range input.SelectedAnswerIDs {
				for _, a := range question.Answers {
					if a.ID == id {
						selected = append(selected, a)
						selectedIDs = append(selectedIDs, id)
						break
					}
				}
			}

			var response models.QuizResponse
			err := tx.Where("attempt_id = ? AND question_id = ?", attempt.ID, question.ID).
				First(&response).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response = models.QuizResponse{AttemptID: attempt.ID, QuestionID: question.ID}
			} else if err != nil {
				return err
			}

			if input.TextResponse != "" {
				response.TextResponse = input.TextResponse
			}
			response.IsCorrect, response.PointsEarned =
				EvaluateResponse(question, selectedIDs, input.TextResponse)

			if err := tx.Save(&response).Error; err != nil {
				return err
			}
			if err := tx.Model(&response).Association("SelectedAnswers").Replace(&selected); err != nil {
				return err
			}
		}

		attempt.Status = models.AttemptCompleted
		attempt.CompletedAt = &now
		attempt.TimeTakenSeconds = int(now.Sub(attempt.StartedAt).Seconds())

		var earnedPoints int
		if err := tx.Model(&models.QuizResponse{}).
			Where("attempt_id = ? AND is_correct = ?", attempt.ID, true).
			Select("COALESCE(SUM(points_earned), 0)").
			Scan(&earnedPoints).Error; err != nil {
			return err
		}

		totalPoints := 0
		for _, q := range questions {
			totalPoints += q.Points
		}
		attempt.Score, attempt.Passed = scoreAttempt(totalPoints, earnedPoints, quiz.PassingScore)

		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}

		if attempt.Passed {
			return s.progress.HandleQuizPassed(tx, QuizPassed{UserID: userID, QuizID: quiz.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// scoreAttempt turns earned points into a percentage and a pass verdict.
// Unanswered questions earn nothing but still count in the denominator.
// A quiz worth zero points always scores zero and never passes.
func scoreAttempt(totalPoints, earnedPoints, passingScore int) (float64, bool) {
	if totalPoints == 0 {
		return 0, false
	}
	score := math.Round(float64(earnedPoints)/float64(totalPoints)*100*100) / 100
	return score, score >= float64(passingScore)
}

// Statistics aggregates completed attempts for a quiz.
type QuizStatistics struct {
	QuizID             uint    `json:"quiz_id"`
	QuizTitle          string  `json:"quiz_title"`
	TotalAttempts      int64   `json:"total_attempts"`
	AverageScore       float64 `json:"average_score"`
	PassRate           float64 `json:"pass_rate"`
	AverageTimeSeconds float64 `json:"average_time_seconds"`
}

func (s *QuizService) Statistics(quizID uint) (*QuizStatistics, error) {
	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("Quiz not found")
		}
		return nil, err
	}

	stats := QuizStatistics{QuizID: quiz.ID, QuizTitle: quiz.Title}

	completed := s.db.Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptCompleted)

	if err := completed.Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if stats.TotalAttempts == 0 {
		return &stats, nil
	}

	row := struct {
		AvgScore float64
		AvgTime  float64
		Passed   int64
	}{}
	if err := s.db.Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND status = ?", quizID, models.AttemptCompleted).
		Select("AVG(score) AS avg_score, AVG(time_taken_seconds) AS avg_time, SUM(CASE WHEN passed THEN 1 ELSE 0 END) AS passed").
		Scan(&row).Error; err != nil {
		return nil, err
	}

	stats.AverageScore = math.Round(row.AvgScore*100) / 100
	stats.AverageTimeSeconds = row.AvgTime
	stats.PassRate = math.Round(float64(row.Passed)/float64(stats.TotalAttempts)*100*100) / 100
	return &stats, nil
}
