package models

import (
	"time"

	"gorm.io/gorm"
)

// Course (Курс)
type Course struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ImageURL  string         `json:"image_url"`
	Language  string         `json:"language"`

	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
	// Если true — для завершения курса нужна исследовательская работа
	RequiresResearchPaper bool `json:"requires_research_paper"`
	AuthorID              uint `json:"author_id"`

	Author   User      `json:"author" gorm:"foreignKey:AuthorID"`
	Chapters []Chapter `json:"chapters" gorm:"constraint:OnDelete:CASCADE;"`
}

// Chapter (Глава курса)
// Видео и вложения лежат во внешнем хранилище, здесь только URL.
type Chapter struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CourseID    uint   `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"` // порядок внутри курса
	IsPublished bool   `json:"is_published"`

	VideoURL      string `json:"video_url"`
	AttachmentURL string `json:"attachment_url"`

	Assessment *Assessment `json:"assessment,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
}
