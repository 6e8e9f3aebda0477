package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Assessment (Тест главы). Одна глава — максимум один тест.
type Assessment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ChapterID uint   `gorm:"uniqueIndex" json:"chapter_id"`
	Title     string `json:"title"`

	Questions []Question `json:"questions" gorm:"constraint:OnDelete:CASCADE;"`
}

// Question (Вопрос теста)
// Options — JSON-массив строк (минимум 2 варианта).
// CorrectAnswer обязан быть одним из Options — проверяется при сохранении в админке.
type Question struct {
	ID           uint `gorm:"primarykey" json:"id"`
	AssessmentID uint `json:"assessment_id"`

	Text          string         `json:"text"`
	Options       datatypes.JSON `json:"options"`
	CorrectAnswer string         `json:"correct_answer"`
}

// AssessmentResult (Попытка сдачи теста)
// Храним каждую попытку отдельной строкой — история не перезаписывается,
// лучший результат считается запросом (MAX(score)).
type AssessmentResult struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID       uint `gorm:"index" json:"user_id"`
	AssessmentID uint `gorm:"index" json:"assessment_id"`
	ChapterID    uint `json:"chapter_id"`
	CourseID     uint `json:"course_id"`

	Score    int  `json:"score"` // 0-100
	IsPassed bool `json:"is_passed"`
}
