package models

import (
	"time"

	"gorm.io/gorm"
)

// ResearchPaper (Исследовательская работа)
// Черновик создается автоматически при завершении последней главы,
// если у курса requires_research_paper = true.
type ResearchPaper struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID   uint `gorm:"uniqueIndex:idx_paper_user_course" json:"user_id"`
	CourseID uint `gorm:"uniqueIndex:idx_paper_user_course" json:"course_id"`

	RefCode  string `gorm:"size:36;index" json:"ref_code"` // uuid, показываем студенту как номер работы
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	FileURL  string `json:"file_url"` // загрузка файла — во внешнем сервисе

	Status     string `json:"status"` // draft, submitted, approved, rejected
	ReviewNote string `json:"review_note"`

	User   User   `json:"user" gorm:"foreignKey:UserID"`
	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

const (
	PaperDraft     = "draft"
	PaperSubmitted = "submitted"
	PaperApproved  = "approved"
	PaperRejected  = "rejected"
)
