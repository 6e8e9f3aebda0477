package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/s/eduPlatform/internal/models"
)

// Outcome описывает, что изменило применение правила разблокировки.
type Outcome struct {
	ChapterCompleted bool `json:"chapter_completed"`
	CourseCompleted  bool `json:"course_completed"`
	PaperDrafted     bool `json:"paper_drafted"`
}

// Unlock применяет правило прогресса после оценки теста.
//
// passed=false — никаких записей: студент может пересдавать, прошлый
// успех не затирается. passed=true — апсертим ChapterProgress и, если это
// была последняя незакрытая опубликованная глава, помечаем курс
// завершенным (+ черновик исследовательской работы, если курс ее требует).
//
// Повторный вызов с тем же passed=true — no-op по эффекту: конфликт по
// (user_id, chapter_id) просто обновляет ту же строку.
func Unlock(db *gorm.DB, userID, courseID, chapterID uint, passed bool) (Outcome, error) {
	var out Outcome
	if !passed {
		return out, nil
	}

	// Апсерт на уникальном индексе — единственный механизм защиты от
	// двух параллельных сдач одного теста.
	row := models.ChapterProgress{
		UserID:      userID,
		ChapterID:   chapterID,
		CourseID:    courseID,
		IsCompleted: true,
		UpdatedAt:   time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_completed": true, "updated_at": time.Now()}),
	}).Create(&row).Error
	if err != nil {
		return out, err
	}
	out.ChapterCompleted = true

	done, err := courseFinished(db, userID, courseID)
	if err != nil || !done {
		return out, err
	}

	if err := markCourseCompleted(db, userID, courseID); err != nil {
		return out, err
	}
	out.CourseCompleted = true

	var course models.Course
	if err := db.Select("id, requires_research_paper").First(&course, courseID).Error; err != nil {
		return out, err
	}
	if course.RequiresResearchPaper {
		drafted, err := draftPaper(db, userID, courseID)
		if err != nil {
			return out, err
		}
		out.PaperDrafted = drafted
	}

	return out, nil
}

// courseFinished — все ли опубликованные главы курса закрыты этим студентом.
func courseFinished(db *gorm.DB, userID, courseID uint) (bool, error) {
	var totalChapters int64
	err := db.Model(&models.Chapter{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&totalChapters).Error
	if err != nil {
		return false, err
	}
	if totalChapters == 0 {
		return false, nil
	}

	var doneChapters int64
	err = db.Model(&models.ChapterProgress{}).
		Joins("JOIN chapters ON chapters.id = chapter_progresses.chapter_id").
		Where("chapter_progresses.user_id = ? AND chapter_progresses.course_id = ? AND chapter_progresses.is_completed = ?", userID, courseID, true).
		Where("chapters.is_published = ?", true).
		Count(&doneChapters).Error
	if err != nil {
		return false, err
	}

	return doneChapters >= totalChapters, nil
}

func markCourseCompleted(db *gorm.DB, userID, courseID uint) error {
	now := time.Now()
	return db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentApproved).
		Updates(map[string]interface{}{"is_completed": true, "completed_at": &now}).Error
}

// draftPaper создает черновик работы, если его еще нет.
// Возвращает true, если строка была создана именно сейчас.
func draftPaper(db *gorm.DB, userID, courseID uint) (bool, error) {
	paper := models.ResearchPaper{
		UserID:   userID,
		CourseID: courseID,
		RefCode:  uuid.NewString(),
		Status:   models.PaperDraft,
	}
	res := db.Where("user_id = ? AND course_id = ?", userID, courseID).FirstOrCreate(&paper)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SeedChapterProgress создает строки прогресса (is_completed=false) для всех
// опубликованных глав курса. Вызывается при одобрении заявки; апсерты при
// сдаче не требуют существования строки, так что это чисто для отображения
// списка глав со статусами.
func SeedChapterProgress(db *gorm.DB, userID, courseID uint) error {
	var chapters []models.Chapter
	if err := db.Select("id").Where("course_id = ? AND is_published = ?", courseID, true).Find(&chapters).Error; err != nil {
		return err
	}

	for _, ch := range chapters {
		row := models.ChapterProgress{
			UserID:    userID,
			ChapterID: ch.ID,
			CourseID:  courseID,
			UpdatedAt: time.Now(),
		}
		// DoNothing: уже существующий прогресс (в т.ч. завершенный) не трогаем
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
			DoNothing: true,
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}
