package models

import "time"

// ChapterProgress (Прогресс по главе)
// Уникальный индекс (user_id, chapter_id) — единственный механизм защиты
// от параллельных сабмитов: две одновременные сдачи схлопываются в одну строку.
type ChapterProgress struct {
	ID        uint `gorm:"primarykey" json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_user_chapter" json:"user_id"`
	ChapterID uint `gorm:"uniqueIndex:idx_user_chapter" json:"chapter_id"`
	CourseID  uint `gorm:"index" json:"course_id"`

	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at"`
}
