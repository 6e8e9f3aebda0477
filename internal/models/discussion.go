package models

import (
	"time"

	"gorm.io/gorm"
)

// Discussion - Обсуждение внутри курса (опционально привязано к главе)
type Discussion struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CourseID  uint  `gorm:"index" json:"course_id"`
	ChapterID *uint `json:"chapter_id,omitempty"`
	UserID    uint  `json:"user_id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	User    User    `json:"user" gorm:"foreignKey:UserID"`
	Replies []Reply `json:"replies" gorm:"constraint:OnDelete:CASCADE;"`

	// Заполняется запросом, в БД не хранится
	LikeCount int64 `gorm:"-" json:"like_count"`
}

// Reply - Ответ в обсуждении
type Reply struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	DiscussionID uint   `json:"discussion_id"`
	UserID       uint   `json:"user_id"`
	Content      string `json:"content"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

// DiscussionLike - Лайк обсуждения, по одному на пользователя
type DiscussionLike struct {
	ID           uint `gorm:"primarykey" json:"id"`
	DiscussionID uint `gorm:"uniqueIndex:idx_discussion_user" json:"discussion_id"`
	UserID       uint `gorm:"uniqueIndex:idx_discussion_user" json:"user_id"`
}
