package models

import (
	"time"
)

// UserLog хранит историю действий пользователя
type UserLog struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"index"`
	Action    string    `json:"action"`  // "login", "enrollment", "assessment_submit", "paper_submit"
	Details   string    `json:"details"` // Например: "Глава 5, 75%"
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID"`
}

const (
	ActionLogin            = "login"
	ActionEnrollment       = "enrollment"
	ActionAssessmentSubmit = "assessment_submit"
	ActionPaperSubmit      = "paper_submit"
)
