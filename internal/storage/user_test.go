package storage

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/s/eduPlatform/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}))
	return db
}

func TestSaveUserCreatesWithDefaultRole(t *testing.T) {
	db := newTestDB(t)

	id, err := SaveUser(db, models.User{
		GoogleID: "g-123",
		Email:    "new@example.com",
		Name:     "Новый",
	})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	assert.Equal(t, models.RoleUser, user.RoleID)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestSaveUserUpdatesExistingWithoutTouchingRole(t *testing.T) {
	db := newTestDB(t)

	admin := models.User{GoogleID: "g-123", Email: "old@example.com", Name: "Старое имя", RoleID: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	id, err := SaveUser(db, models.User{
		GoogleID: "g-123",
		Email:    "new@example.com",
		Name:     "Новое имя",
		Picture:  "pic.png",
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id)

	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	assert.Equal(t, "Новое имя", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
	// Роль выдается админом и при повторном входе не сбрасывается
	assert.Equal(t, models.RoleAdmin, user.RoleID)

	var total int64
	db.Model(&models.User{}).Count(&total)
	assert.EqualValues(t, 1, total)
}
