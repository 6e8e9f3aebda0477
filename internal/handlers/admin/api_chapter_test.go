package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/s/eduPlatform/internal/handlers"
	"github.com/s/eduPlatform/internal/models"
)

func newTestService(t *testing.T) *Service {
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
		&models.Enrollment{},
		&models.ChapterProgress{},
		&models.ResearchPaper{},
		&models.UserLog{},
	))

	h := handlers.NewHandler(db, sessions.NewCookieStore([]byte("test-key")), nil, nil)
	return &Service{Handler: *h}
}

func seedChapter(t *testing.T, db *gorm.DB) models.Chapter {
	t.Helper()

	author := models.User{Name: "Автор", Email: "author@example.com", RoleID: models.RoleAdmin}
	require.NoError(t, db.Create(&author).Error)

	course := models.Course{Title: "Курс", IsPublished: true, AuthorID: author.ID}
	require.NoError(t, db.Create(&course).Error)

	chapter := models.Chapter{CourseID: course.ID, Title: "Глава", Position: 1, IsPublished: true}
	require.NoError(t, db.Create(&chapter).Error)

	return chapter
}

func upsertAssessment(t *testing.T, s *Service, chapterID string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc("/api/admin/chapters/{id}/assessment", s.UpsertAssessmentAPI).Methods("PUT")

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/api/admin/chapters/"+chapterID+"/assessment", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpsertAssessmentRejectsBadCorrectAnswer(t *testing.T) {
	s := newTestService(t)
	seedChapter(t, s.DB)

	// Правильный ответ не из списка вариантов — 400, ничего не записано
	rec := upsertAssessment(t, s, "1", map[string]interface{}{
		"title": "Тест",
		"questions": []map[string]interface{}{
			{"text": "Вопрос?", "options": []string{"a", "b"}, "correct_answer": "z"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var total int64
	s.DB.Model(&models.Assessment{}).Count(&total)
	assert.EqualValues(t, 0, total)
}

func TestUpsertAssessmentRejectsTooFewOptions(t *testing.T) {
	s := newTestService(t)
	seedChapter(t, s.DB)

	rec := upsertAssessment(t, s, "1", map[string]interface{}{
		"title": "Тест",
		"questions": []map[string]interface{}{
			{"text": "Вопрос?", "options": []string{"a"}, "correct_answer": "a"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpsertAssessmentKeepsQuestionIDs(t *testing.T) {
	s := newTestService(t)
	seedChapter(t, s.DB)

	// Первое сохранение — тест из двух вопросов
	rec := upsertAssessment(t, s, "1", map[string]interface{}{
		"title": "Тест",
		"questions": []map[string]interface{}{
			{"text": "Первый?", "options": []string{"a", "b"}, "correct_answer": "a"},
			{"text": "Второй?", "options": []string{"c", "d"}, "correct_answer": "d"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var saved models.Assessment
	require.NoError(t, s.DB.Preload("Questions").First(&saved).Error)
	require.Len(t, saved.Questions, 2)
	firstID := saved.Questions[0].ID

	// Редактирование: первый вопрос правится по ID, второй выкидывается,
	// добавляется новый
	rec = upsertAssessment(t, s, "1", map[string]interface{}{
		"title": "Тест v2",
		"questions": []map[string]interface{}{
			{"id": firstID, "text": "Первый (испр.)?", "options": []string{"a", "b"}, "correct_answer": "b"},
			{"text": "Третий?", "options": []string{"x", "y"}, "correct_answer": "x"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.DB.Preload("Questions").First(&saved).Error)
	require.Len(t, saved.Questions, 2)
	assert.Equal(t, "Тест v2", saved.Title)

	// ID существующего вопроса стабилен — история попыток не осиротеет
	byID := map[uint]models.Question{}
	for _, q := range saved.Questions {
		byID[q.ID] = q
	}
	edited, ok := byID[firstID]
	require.True(t, ok, "отредактированный вопрос сохранил ID")
	assert.Equal(t, "Первый (испр.)?", edited.Text)
	assert.Equal(t, "b", edited.CorrectAnswer)

	// Второй вопрос удален насовсем
	var total int64
	s.DB.Model(&models.Question{}).Count(&total)
	assert.EqualValues(t, 2, total)
}

func TestUpsertAssessmentChapterNotFound(t *testing.T) {
	s := newTestService(t)

	rec := upsertAssessment(t, s, "99", map[string]interface{}{
		"title": "Тест",
		"questions": []map[string]interface{}{
			{"text": "Вопрос?", "options": []string{"a", "b"}, "correct_answer": "a"},
		},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
