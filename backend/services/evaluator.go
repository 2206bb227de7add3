package services

import (
	"strings"

	"github.com/coder7564-glitch/Learning-Hub/backend/models"
)

// EvaluateResponse decides whether a submitted response answers the question
// correctly and how many points it earns. The question must carry its
// Answers. Selected answer ids referencing another question's answers are
// expected to be filtered out by the caller before evaluation.
//
// Rules per question type:
//   - multiple_choice / true_false: the first selected answer must be the
//     single answer flagged correct; no correct answer or no selection means
//     incorrect.
//   - multiple_select: the selected id set must equal the correct id set,
//     no partial credit.
//   - short_answer: trimmed, case-folded text must equal the first answer
//     flagged correct. No fuzzy matching.
//
// Unknown question types never score.
func EvaluateResponse(question models.Question, selectedAnswerIDs []uint, textResponse string) (bool, int) {
	correct := false

	switch question.Type {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse:
		correctAnswer := firstCorrectAnswer(question.Answers)
		if correctAnswer != nil && len(selectedAnswerIDs) > 0 {
			correct = selectedAnswerIDs[0] == correctAnswer.ID
		}

	case models.QuestionMultipleSelect:
		correctIDs := make(map[uint]bool)
		for _, a := range question.Answers {
			if a.IsCorrect {
				correctIDs[a.ID] = true
			}
		}
		selectedIDs := make(map[uint]bool)
		for _, id := range selectedAnswerIDs {
			selectedIDs[id] = true
		}
		correct = len(correctIDs) == len(selectedIDs)
		for id := range correctIDs {
			if !selectedIDs[id] {
				correct = false
				break
			}
		}

	case models.QuestionShortAnswer:
		correctAnswer := firstCorrectAnswer(question.Answers)
		if correctAnswer != nil {
			submitted := strings.TrimSpace(textResponse)
			expected := strings.TrimSpace(correctAnswer.AnswerText)
			correct = submitted != "" && strings.EqualFold(submitted, expected)
		}
	}

	if !correct {
		return false, 0
	}
	return true, question.Points
}

func firstCorrectAnswer(answers []models.Answer) *models.Answer {
	for i := range answers {
		if answers[i].IsCorrect {
			return &answers[i]
		}
	}
	return nil
}
