package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionMultipleSelect = "multiple_select"
	QuestionShortAnswer    = "short_answer"
)

const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptTimedOut   = "timed_out"
)

// Quiz can be attached to a course, a module or a video, or stand alone.
type Quiz struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Description string

	CourseID *uint
	ModuleID *uint
	VideoID  *uint

	PassingScore     int `gorm:"default:70"` // minimum score to pass (%)
	TimeLimitMinutes int `gorm:"default:0"`  // 0 for no limit
	MaxAttempts      int `gorm:"default:0"`  // 0 for unlimited

	ShuffleQuestions   bool
	ShowCorrectAnswers bool `gorm:"default:true"`

	IsRequired  bool // required for course completion
	IsPublished bool `gorm:"default:true"`
	Order       int

	Questions []Question
}

type Question struct {
	gorm.Model
	QuizID       uint   `gorm:"not null"`
	QuestionText string `gorm:"not null"`
	Type         string `gorm:"default:multiple_choice"`
	Explanation  string
	Points       int `gorm:"default:1"`
	Order        int

	Answers []Answer
}

type Answer struct {
	gorm.Model
	QuestionID uint   `gorm:"not null"`
	AnswerText string `gorm:"not null"`
	IsCorrect  bool
	Order      int
}

type QuizAttempt struct {
	gorm.Model
	UserID uint `gorm:"not null;index"`
	QuizID uint `gorm:"not null;index"`
	Status string `gorm:"default:in_progress"` // in_progress, completed, timed_out

	Score            float64 // percentage, 2 decimal places
	Passed           bool
	TimeTakenSeconds int

	StartedAt   time.Time
	CompletedAt *time.Time

	Responses []QuizResponse `gorm:"foreignKey:AttemptID"`
}

// QuizResponse holds one answer per question per attempt.
type QuizResponse struct {
	gorm.Model
	AttemptID  uint `gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `gorm:"not null;uniqueIndex:idx_attempt_question"`

	SelectedAnswers []Answer `gorm:"many2many:quiz_response_answers"`
	TextResponse    string

	// Derived by the evaluator, never set by the caller.
	IsCorrect    bool
	PointsEarned int
}
