package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/s/eduPlatform/internal/models"
)

func q(id uint, correct string) models.Question {
	return models.Question{
		ID:            id,
		Text:          "Вопрос",
		Options:       datatypes.JSON([]byte(`["a","b","c","d"]`)),
		CorrectAnswer: correct,
	}
}

func TestGradeScoreFormula(t *testing.T) {
	tests := []struct {
		name      string
		questions []models.Question
		answers   map[uint]string
		wantScore int
		wantPass  bool
	}{
		{
			name:      "4 вопроса, 3 верных = 75%, сдано",
			questions: []models.Question{q(1, "a"), q(2, "b"), q(3, "c"), q(4, "d")},
			answers:   map[uint]string{1: "a", 2: "b", 3: "c", 4: "a"},
			wantScore: 75,
			wantPass:  true,
		},
		{
			name:      "4 вопроса, 2 верных = 50%, не сдано",
			questions: []models.Question{q(1, "a"), q(2, "b"), q(3, "c"), q(4, "d")},
			answers:   map[uint]string{1: "a", 2: "b", 3: "x", 4: "x"},
			wantScore: 50,
			wantPass:  false,
		},
		{
			name:      "1 вопрос, верный ответ = 100%",
			questions: []models.Question{q(1, "a")},
			answers:   map[uint]string{1: "a"},
			wantScore: 100,
			wantPass:  true,
		},
		{
			name:      "все мимо = 0%",
			questions: []models.Question{q(1, "a"), q(2, "b")},
			answers:   map[uint]string{1: "x", 2: "y"},
			wantScore: 0,
			wantPass:  false,
		},
		{
			name:      "округление: 2 из 3 = 67%",
			questions: []models.Question{q(1, "a"), q(2, "b"), q(3, "c")},
			answers:   map[uint]string{1: "a", 2: "b"},
			wantScore: 67,
			wantPass:  false,
		},
		{
			name:      "округление вверх: 5 из 6 = 83%",
			questions: []models.Question{q(1, "a"), q(2, "a"), q(3, "a"), q(4, "a"), q(5, "a"), q(6, "a")},
			answers:   map[uint]string{1: "a", 2: "a", 3: "a", 4: "a", 5: "a", 6: "x"},
			wantScore: 83,
			wantPass:  true,
		},
		{
			name:      "ровно на пороге 70%",
			questions: []models.Question{q(1, "a"), q(2, "a"), q(3, "a"), q(4, "a"), q(5, "a"), q(6, "a"), q(7, "a"), q(8, "a"), q(9, "a"), q(10, "a")},
			answers:   map[uint]string{1: "a", 2: "a", 3: "a", 4: "a", 5: "a", 6: "a", 7: "a", 8: "x", 9: "x", 10: "x"},
			wantScore: 70,
			wantPass:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Grade(tt.questions, tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantPass, res.IsPassed)
		})
	}
}

func TestGradeEmptyQuestionSet(t *testing.T) {
	// Пустой тест — нарушение предусловия, а не 0%
	_, err := Grade(nil, map[uint]string{})
	require.ErrorIs(t, err, ErrNoQuestions)

	_, err = Grade([]models.Question{}, map[uint]string{1: "a"})
	require.ErrorIs(t, err, ErrNoQuestions)
}

func TestGradeMissingAnswersCountAsWrong(t *testing.T) {
	// Пропущенный вопрос — неверный ответ, но не ошибка
	questions := []models.Question{q(1, "a"), q(2, "b")}

	res, err := Grade(questions, map[uint]string{1: "a"})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Score)

	res, err = Grade(questions, map[uint]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.IsPassed)
}

func TestGradeAnswerNormalization(t *testing.T) {
	questions := []models.Question{q(1, "Paris")}

	// Точное совпадение
	res, err := Grade(questions, map[uint]string{1: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)

	// Лишние пробелы по краям не должны валить студента
	res, err = Grade(questions, map[uint]string{1: "  Paris \n"})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)

	// Регистр значим: текст вариантов авторский
	res, err = Grade(questions, map[uint]string{1: "paris"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
}

func TestGradePure(t *testing.T) {
	// Grade не должна трогать входные данные
	questions := []models.Question{q(1, "a"), q(2, "b")}
	answers := map[uint]string{1: "a"}

	_, err := Grade(questions, answers)
	require.NoError(t, err)

	assert.Len(t, answers, 1)
	assert.Equal(t, "a", questions[0].CorrectAnswer)
}

func TestValidateQuestion(t *testing.T) {
	opts := []string{"a", "b", "c", "d"}

	assert.NoError(t, ValidateQuestion("Вопрос?", opts, "a"))
	assert.NoError(t, ValidateQuestion("Вопрос?", opts, " a "))

	// Правильный ответ обязан быть среди вариантов
	assert.Error(t, ValidateQuestion("Вопрос?", opts, "z"))
	// Минимум два варианта
	assert.Error(t, ValidateQuestion("Вопрос?", []string{"a"}, "a"))
	// Текст обязателен
	assert.Error(t, ValidateQuestion("  ", opts, "a"))
}

func TestDecodeOptions(t *testing.T) {
	opts, err := DecodeOptions(q(1, "a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, opts)

	_, err = DecodeOptions(models.Question{Options: datatypes.JSON([]byte(`not json`))})
	assert.Error(t, err)
}
