package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment (Заявка на курс / Подписка)
type Enrollment struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_user_course" json:"user_id"`
	CourseID uint   `gorm:"uniqueIndex:idx_user_course" json:"course_id"`
	Status   string `json:"status"` // pending, approved, rejected

	// Завершение курса: все опубликованные главы пройдены
	// (и, если курс этого требует, сдана исследовательская работа).
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`

	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)
