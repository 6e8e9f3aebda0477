package progress

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

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Course{},
		&models.Chapter{},
		&models.Assessment{},
		&models.Question{},
		&models.AssessmentResult{},
		&models.ChapterProgress{},
		&models.Enrollment{},
		&models.ResearchPaper{},
	))
	return db
}

// seedCourse создает курс с двумя опубликованными главами и одобренной заявкой
func seedCourse(t *testing.T, db *gorm.DB, requiresPaper bool) (userID uint, course models.Course, chapters []models.Chapter) {
	t.Helper()

	user := models.User{Name: "Студент", Email: "student@example.com", RoleID: models.RoleUser}
	require.NoError(t, db.Create(&user).Error)

	course = models.Course{Title: "Курс", IsPublished: true, RequiresResearchPaper: requiresPaper, AuthorID: user.ID}
	require.NoError(t, db.Create(&course).Error)

	for i := 1; i <= 2; i++ {
		ch := models.Chapter{CourseID: course.ID, Title: "Глава", Position: i, IsPublished: true}
		require.NoError(t, db.Create(&ch).Error)
		chapters = append(chapters, ch)
	}

	enrollment := models.Enrollment{UserID: user.ID, CourseID: course.ID, Status: models.EnrollmentApproved}
	require.NoError(t, db.Create(&enrollment).Error)

	return user.ID, course, chapters
}

func progressRows(t *testing.T, db *gorm.DB, userID, chapterID uint) []models.ChapterProgress {
	t.Helper()
	var rows []models.ChapterProgress
	require.NoError(t, db.Where("user_id = ? AND chapter_id = ?", userID, chapterID).Find(&rows).Error)
	return rows
}

func TestUnlockFailedAttemptWritesNothing(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, false)

	out, err := Unlock(db, userID, course.ID, chapters[0].ID, false)
	require.NoError(t, err)
	assert.False(t, out.ChapterCompleted)
	assert.False(t, out.CourseCompleted)

	assert.Empty(t, progressRows(t, db, userID, chapters[0].ID))
}

func TestUnlockFailedAttemptDoesNotClearPriorPass(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, false)

	_, err := Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)

	// Провальная пересдача не затирает прошлый успех
	_, err = Unlock(db, userID, course.ID, chapters[0].ID, false)
	require.NoError(t, err)

	rows := progressRows(t, db, userID, chapters[0].ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsCompleted)
}

func TestUnlockIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, false)

	_, err := Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)
	_, err = Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)

	// Две сдачи — одна строка прогресса
	rows := progressRows(t, db, userID, chapters[0].ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsCompleted)
}

func TestUnlockCourseCompletion(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, false)

	out, err := Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)
	assert.True(t, out.ChapterCompleted)
	assert.False(t, out.CourseCompleted, "курс не завершен, пока открыта вторая глава")

	out, err = Unlock(db, userID, course.ID, chapters[1].ID, true)
	require.NoError(t, err)
	assert.True(t, out.CourseCompleted)
	assert.False(t, out.PaperDrafted, "курс без требования работы")

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error)
	assert.True(t, enrollment.IsCompleted)
	require.NotNil(t, enrollment.CompletedAt)
}

func TestUnlockDraftsPaperOnce(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, true)

	_, err := Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)

	out, err := Unlock(db, userID, course.ID, chapters[1].ID, true)
	require.NoError(t, err)
	assert.True(t, out.CourseCompleted)
	assert.True(t, out.PaperDrafted)

	var papers []models.ResearchPaper
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, course.ID).Find(&papers).Error)
	require.Len(t, papers, 1)
	assert.Equal(t, models.PaperDraft, papers[0].Status)
	assert.NotEmpty(t, papers[0].RefCode)

	// Пересдача последней главы не плодит второй черновик
	out, err = Unlock(db, userID, course.ID, chapters[1].ID, true)
	require.NoError(t, err)
	assert.False(t, out.PaperDrafted)

	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, course.ID).Find(&papers).Error)
	assert.Len(t, papers, 1)
}

func TestUnlockIgnoresUnpublishedChapters(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, false)

	// Черновик главы не мешает завершению курса
	draft := models.Chapter{CourseID: course.ID, Title: "Черновик", Position: 3, IsPublished: false}
	require.NoError(t, db.Create(&draft).Error)

	_, err := Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)
	out, err := Unlock(db, userID, course.ID, chapters[1].ID, true)
	require.NoError(t, err)
	assert.True(t, out.CourseCompleted)
}

func TestSeedChapterProgress(t *testing.T) {
	db := newTestDB(t)
	userID, course, chapters := seedCourse(t, db, false)

	// Первая глава уже закрыта сдачей теста
	_, err := Unlock(db, userID, course.ID, chapters[0].ID, true)
	require.NoError(t, err)

	require.NoError(t, SeedChapterProgress(db, userID, course.ID))

	// Скелет не понижает завершенный прогресс
	rows := progressRows(t, db, userID, chapters[0].ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsCompleted)

	// А для второй главы появилась незавершенная строка
	rows = progressRows(t, db, userID, chapters[1].ID)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsCompleted)

	// Повторный вызов ничего не дублирует
	require.NoError(t, SeedChapterProgress(db, userID, course.ID))
	var total int64
	db.Model(&models.ChapterProgress{}).Where("user_id = ?", userID).Count(&total)
	assert.EqualValues(t, 2, total)
}
