package database

import (
	"github.com/s/eduPlatform/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Course{},
		&models.Chapter{},
		&models.Assessment{},
		&models.Question{},
		&models.AssessmentResult{},
		&models.ChapterProgress{},
		&models.Enrollment{},
		&models.Discussion{},
		&models.Reply{},
		&models.DiscussionLike{},
		&models.ResearchPaper{},
		&models.UserLog{},
	)
}
