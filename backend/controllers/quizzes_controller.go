package controllers

import (
	"errors"

	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/models"
	"github.com/coder7564-glitch/Learning-Hub/backend/services"
	"github.com/coder7564-glitch/Learning-Hub/backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Quizzes *services.QuizService
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config, quizzes *services.QuizService) *QuizzesController {
	return &QuizzesController{DB: db, Cfg: cfg, Quizzes: quizzes}
}

// Quiz catalog

func (qc *QuizzesController) ListQuizzes(c *fiber.Ctx) error {
	user := currentUser(c)

	query := qc.DB.Model(&models.Quiz{})
	if !user.IsAdmin() {
		query = query.Where("is_published = ?", true)
	}
	if course := c.Query("course"); course != "" {
		query = query.Where("course_id = ?", course)
	}
	if module := c.Query("module"); module != "" {
		query = query.Where("module_id = ?", module)
	}
	if video := c.Query("video"); video != "" {
		query = query.Where("video_id = ?", video)
	}

	var quizzes []models.Quiz
	if err := query.Order("\"order\", created_at").Find(&quizzes).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(quizzes)
}

func (qc *QuizzesController) GetQuizDetails(c *fiber.Ctx) error {
	user := currentUser(c)

	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.\"order\"")
	}).Preload("Questions.Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("answers.\"order\"")
	}).First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if !quiz.IsPublished && !user.IsAdmin() {
		return utils.NotFound(c, "Quiz not found")
	}

	// Students never see which answers are correct.
	questions := make([]fiber.Map, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answers := make([]fiber.Map, 0, len(q.Answers))
		for _, a := range q.Answers {
			answer := fiber.Map{
				"id":    a.ID,
				"text":  a.AnswerText,
				"order": a.Order,
			}
			if user.IsAdmin() {
				answer["is_correct"] = a.IsCorrect
			}
			answers = append(answers, answer)
		}
		questions = append(questions, fiber.Map{
			"id":       q.ID,
			"text":     q.QuestionText,
			"type":     q.Type,
			"points":   q.Points,
			"order":    q.Order,
			"answers":  answers,
		})
	}

	return c.JSON(fiber.Map{
		"quiz": fiber.Map{
			"id":                 quiz.ID,
			"title":              quiz.Title,
			"description":        quiz.Description,
			"course_id":          quiz.CourseID,
			"module_id":          quiz.ModuleID,
			"video_id":           quiz.VideoID,
			"passing_score":      quiz.PassingScore,
			"time_limit_minutes": quiz.TimeLimitMinutes,
			"max_attempts":       quiz.MaxAttempts,
			"is_required":        quiz.IsRequired,
			"is_published":       quiz.IsPublished,
			"questions":          questions,
		},
	})
}

func (qc *QuizzesController) CreateQuiz(c *fiber.Ctx) error {
	var input struct {
		Title            string `json:"title" validate:"required,min=3"`
		Description      string `json:"description"`
		CourseID         *uint  `json:"course_id"`
		ModuleID         *uint  `json:"module_id"`
		VideoID          *uint  `json:"video_id"`
		PassingScore     *int   `json:"passing_score" validate:"omitempty,min=0,max=100"`
		TimeLimitMinutes int    `json:"time_limit_minutes" validate:"min=0"`
		MaxAttempts      int    `json:"max_attempts" validate:"min=0"`
		IsRequired       bool   `json:"is_required"`
		IsPublished      *bool  `json:"is_published"`
		Order            int    `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	passingScore := 70
	if input.PassingScore != nil {
		passingScore = *input.PassingScore
	}
	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	quiz := models.Quiz{
		Title:              input.Title,
		Description:        input.Description,
		CourseID:           input.CourseID,
		ModuleID:           input.ModuleID,
		VideoID:            input.VideoID,
		PassingScore:       passingScore,
		TimeLimitMinutes:   input.TimeLimitMinutes,
		MaxAttempts:        input.MaxAttempts,
		ShowCorrectAnswers: true,
		IsRequired:         input.IsRequired,
		IsPublished:        published,
		Order:              input.Order,
	}
	if err := qc.DB.Create(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not create quiz")
	}

	return c.JSON(fiber.Map{
		"message": "Quiz created",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) UpdateQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		Title            string `json:"title"`
		Description      string `json:"description"`
		PassingScore     *int   `json:"passing_score" validate:"omitempty,min=0,max=100"`
		TimeLimitMinutes *int   `json:"time_limit_minutes"`
		MaxAttempts      *int   `json:"max_attempts"`
		IsRequired       *bool  `json:"is_required"`
		IsPublished      *bool  `json:"is_published"`
		Order            *int   `json:"order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.Title != "" {
		quiz.Title = input.Title
	}
	if input.Description != "" {
		quiz.Description = input.Description
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}
	if input.TimeLimitMinutes != nil {
		quiz.TimeLimitMinutes = *input.TimeLimitMinutes
	}
	if input.MaxAttempts != nil {
		quiz.MaxAttempts = *input.MaxAttempts
	}
	if input.IsRequired != nil {
		quiz.IsRequired = *input.IsRequired
	}
	if input.IsPublished != nil {
		quiz.IsPublished = *input.IsPublished
	}
	if input.Order != nil {
		quiz.Order = *input.Order
	}

	if err := qc.DB.Save(&quiz).Error; err != nil {
		return utils.InternalServerError(c, "Could not update quiz")
	}

	return c.JSON(fiber.Map{
		"message": "Quiz updated",
		"quiz":    quiz,
	})
}

func (qc *QuizzesController) DeleteQuiz(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}
	if err := qc.DB.Delete(&models.Quiz{}, quizID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete quiz")
	}
	return utils.NoContent(c)
}

// Questions

func (qc *QuizzesController) AddQuestion(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	var quiz models.Quiz
	if err := qc.DB.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Quiz not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		QuestionText string `json:"question_text" validate:"required"`
		Type         string `json:"type" validate:"required,oneof=multiple_choice true_false multiple_select short_answer"`
		Explanation  string `json:"explanation"`
		Points       *int   `json:"points" validate:"omitempty,min=1"`
		Order        int    `json:"order"`
		Answers      []struct {
			Text      string `json:"text"`
			IsCorrect bool   `json:"is_correct"`
			Order     int    `json:"order"`
		} `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	points := 1
	if input.Points != nil {
		points = *input.Points
	}

	order := input.Order
	if order == 0 {
		var count int64
		qc.DB.Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count)
		order = int(count) + 1
	}

	question := models.Question{
		QuizID:       quizID,
		QuestionText: input.QuestionText,
		Type:         input.Type,
		Explanation:  input.Explanation,
		Points:       points,
		Order:        order,
	}
	for i, a := range input.Answers {
		answerOrder := a.Order
		if answerOrder == 0 {
			answerOrder = i + 1
		}
		question.Answers = append(question.Answers, models.Answer{
			AnswerText: a.Text,
			IsCorrect:  a.IsCorrect,
			Order:      answerOrder,
		})
	}

	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return c.JSON(fiber.Map{
		"message":  "Question added",
		"question": question,
	})
}

func (qc *QuizzesController) UpdateQuestion(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}
	questionID, err := paramID(c, "questionId")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := qc.DB.Where("id = ? AND quiz_id = ?", questionID, quizID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input struct {
		QuestionText string `json:"question_text"`
		Explanation  string `json:"explanation"`
		Points       *int   `json:"points" validate:"omitempty,min=1"`
		Order        *int   `json:"order"`
		Answers      []struct {
			Text      string `json:"text"`
			IsCorrect bool   `json:"is_correct"`
			Order     int    `json:"order"`
		} `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.QuestionText != "" {
		question.QuestionText = input.QuestionText
	}
	if input.Explanation != "" {
		question.Explanation = input.Explanation
	}
	if input.Points != nil {
		question.Points = *input.Points
	}
	if input.Order != nil {
		question.Order = *input.Order
	}

	err = qc.DB.Transaction(func(tx *gorm.DB) error {
		if input.Answers != nil {
			// Replacing the answer set invalidates old selections, which is
			// acceptable for editing an unused question.
			if err := tx.Where("question_id = ?", question.ID).
				Delete(&models.Answer{}).Error; err != nil {
				return err
			}
			for i, a := range input.Answers {
				answerOrder := a.Order
				if answerOrder == 0 {
					answerOrder = i + 1
				}
				answer := models.Answer{
					QuestionID: question.ID,
					AnswerText: a.Text,
					IsCorrect:  a.IsCorrect,
					Order:      answerOrder,
				}
				if err := tx.Create(&answer).Error; err != nil {
					return err
				}
			}
		}
		return tx.Save(&question).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}

	return c.JSON(fiber.Map{
		"message":  "Question updated",
		"question": question,
	})
}

func (qc *QuizzesController) DeleteQuestion(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}
	questionID, err := paramID(c, "questionId")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}
	if err := qc.DB.Where("quiz_id = ?", quizID).
		Delete(&models.Question{}, questionID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}
	return utils.NoContent(c)
}

// Attempts

func (qc *QuizzesController) StartAttempt(c *fiber.Ctx) error {
	user := currentUser(c)

	var input struct {
		QuizID uint `json:"quiz_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	attempt, err := qc.Quizzes.StartAttempt(user.ID, input.QuizID, user.IsAdmin())
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(attempt)
}

func (qc *QuizzesController) SubmitAttempt(c *fiber.Ctx) error {
	user := currentUser(c)

	attemptID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	var input struct {
		Responses []services.ResponseInput `json:"responses"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	attempt, err := qc.Quizzes.SubmitAttempt(attemptID, user.ID, input.Responses)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(attempt)
}

func (qc *QuizzesController) MyAttempts(c *fiber.Ctx) error {
	user := currentUser(c)

	query := qc.DB.Where("user_id = ?", user.ID)
	if quiz := c.Query("quiz"); quiz != "" {
		query = query.Where("quiz_id = ?", quiz)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var attempts []models.QuizAttempt
	if err := query.Order("started_at DESC").Find(&attempts).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(attempts)
}

func (qc *QuizzesController) GetAttemptDetails(c *fiber.Ctx) error {
	user := currentUser(c)

	attemptID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid attempt ID")
	}

	var attempt models.QuizAttempt
	if err := qc.DB.Preload("Responses.SelectedAnswers").First(&attempt, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Attempt not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if attempt.UserID != user.ID && !user.IsAdmin() {
		return utils.Forbidden(c, "You don't have access to this attempt")
	}
	return c.JSON(attempt)
}

// AllAttempts lists every attempt in the system (admin only).
func (qc *QuizzesController) AllAttempts(c *fiber.Ctx) error {
	query := qc.DB.Model(&models.QuizAttempt{})
	if quiz := c.Query("quiz"); quiz != "" {
		query = query.Where("quiz_id = ?", quiz)
	}
	if userFilter := c.Query("user"); userFilter != "" {
		query = query.Where("user_id = ?", userFilter)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var attempts []models.QuizAttempt
	if err := query.Order("started_at DESC").Find(&attempts).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(attempts)
}

// GetQuizStatistics returns aggregate attempt statistics (admin only).
func (qc *QuizzesController) GetQuizStatistics(c *fiber.Ctx) error {
	quizID, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid quiz ID")
	}

	stats, err := qc.Quizzes.Statistics(quizID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return c.JSON(stats)
}
