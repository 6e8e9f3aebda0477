package database

import (
	"github.com/s/eduPlatform/internal/models"
	"gorm.io/gorm"
)

func Seed(db *gorm.DB) error {
	db.FirstOrCreate(&models.Role{}, models.Role{ID: 1, Name: "User"})
	db.FirstOrCreate(&models.Role{}, models.Role{ID: 2, Name: "Admin"})
	db.FirstOrCreate(&models.Role{}, models.Role{ID: 3, Name: "Manager"})
	return nil
}
