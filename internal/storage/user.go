package storage

import (
	"errors"

	"github.com/s/eduPlatform/internal/models"
	"gorm.io/gorm"
)

// SaveUser finds a user by Google ID; if found, it updates, otherwise, it creates.
func SaveUser(db *gorm.DB, userInfo models.User) (uint, error) {
	var existingUser models.User

	result := db.Where("google_id = ?", userInfo.GoogleID).First(&existingUser)

	if result.Error == nil {
		// --- CASE 1: USER FOUND (UPDATE) ---
		// User exists, update their details (name, picture, etc.)
		updates := map[string]interface{}{
			"email":   userInfo.Email,
			"name":    userInfo.Name,
			"picture": userInfo.Picture,
			// DO NOT update RoleID here, as that is managed by an admin
		}

		db.Model(&existingUser).Updates(updates)
		return existingUser.ID, nil

	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		// --- CASE 2: USER NOT FOUND (CREATE) ---
		// User is new. Set their default role ID
		userInfo.RoleID = models.RoleUser

		if err := db.Create(&userInfo).Error; err != nil {
			return 0, err
		}
		return userInfo.ID, nil

	} else {
		// --- CASE 3: DATABASE ERROR ---
		return 0, result.Error
	}
}
