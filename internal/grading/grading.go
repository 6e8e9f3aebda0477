// Package grading computes assessment scores.
//
// It is deliberately pure: no database access, no I/O. The orchestrator in
// handlers feeds it the question set and the raw answer map and persists
// whatever comes back.
package grading

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/s/eduPlatform/internal/models"
)

// PassThreshold - фиксированный порог сдачи (в процентах), не настраивается.
const PassThreshold = 70

// ErrNoQuestions is returned for an empty question set. Grading an empty
// assessment is a precondition violation, not a 0% score.
var ErrNoQuestions = errors.New("grading: assessment has no questions")

type Result struct {
	Score    int  `json:"score"` // 0-100
	IsPassed bool `json:"is_passed"`
}

// Grade scores a submission against the authoritative question set.
//
// A missing key in answers counts as an incorrect answer, never as an error.
// Comparison trims surrounding whitespace on both sides and is otherwise
// exact: option text is authored verbatim, so case stays significant.
func Grade(questions []models.Question, answers map[uint]string) (Result, error) {
	total := len(questions)
	if total == 0 {
		return Result{}, ErrNoQuestions
	}

	correct := 0
	for _, q := range questions {
		given, ok := answers[q.ID]
		if !ok {
			continue
		}
		if strings.TrimSpace(given) == strings.TrimSpace(q.CorrectAnswer) {
			correct++
		}
	}

	score := int(math.Round(100 * float64(correct) / float64(total)))
	return Result{
		Score:    score,
		IsPassed: score >= PassThreshold,
	}, nil
}

// DecodeOptions unpacks the JSON options column of a question.
func DecodeOptions(q models.Question) ([]string, error) {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// ValidateQuestion checks the authoring invariants: at least two options and
// a correct answer that is one of them. Used by the admin assessment editor
// before anything is written.
func ValidateQuestion(text string, options []string, correctAnswer string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("question text is required")
	}
	if len(options) < 2 {
		return errors.New("question needs at least 2 options")
	}
	for _, opt := range options {
		if strings.TrimSpace(opt) == strings.TrimSpace(correctAnswer) {
			return nil
		}
	}
	return errors.New("correct answer must be one of the options")
}
