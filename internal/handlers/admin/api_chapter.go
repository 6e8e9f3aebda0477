package admin

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/s/eduPlatform/internal/grading"
	"github.com/s/eduPlatform/internal/models"
)

type chapterInput struct {
	CourseID      uint   `json:"course_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Position      int    `json:"position"`
	IsPublished   bool   `json:"is_published"`
	VideoURL      string `json:"video_url"`
	AttachmentURL string `json:"attachment_url"`
}

// ==========================================
// POST /api/admin/chapters (Создание главы)
// ==========================================
func (s *Service) CreateChapterAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var input chapterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Title == "" || input.CourseID == 0 {
		jsonError(w, "Title and course_id are required", http.StatusBadRequest)
		return
	}

	// Глава создается только в своем курсе
	userID, _ := s.GetAuthenticatedUserID(r)
	var course models.Course
	if err := s.DB.First(&course, input.CourseID).Error; err != nil {
		jsonError(w, "Course not found", http.StatusNotFound)
		return
	}
	if course.AuthorID != userID {
		jsonError(w, "Это не ваш курс", http.StatusForbidden)
		return
	}

	chapter := models.Chapter{
		CourseID:      input.CourseID,
		Title:         input.Title,
		Description:   input.Description,
		Position:      input.Position,
		IsPublished:   input.IsPublished,
		VideoURL:      input.VideoURL,
		AttachmentURL: input.AttachmentURL,
	}

	if err := s.DB.Create(&chapter).Error; err != nil {
		log.Println("Ошибка БД при создании главы:", err)
		jsonError(w, "Failed to create chapter", http.StatusInternalServerError)
		return
	}

	s.InvalidateCourseCache(input.CourseID)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(chapter)
}

// ==========================================
// PUT /api/admin/chapters/{id} (Обновление)
// DELETE /api/admin/chapters/{id} (Удаление)
// GET /api/admin/chapters/{id} (Детали)
// ==========================================
func (s *Service) HandleChapterByIDAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid chapter ID", http.StatusBadRequest)
		return
	}

	var chapter models.Chapter
	if err := s.DB.Preload("Assessment.Questions").First(&chapter, id).Error; err != nil {
		jsonError(w, "Chapter not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(chapter)
	case http.MethodPut:
		s.updateChapter(w, r, &chapter)
	case http.MethodDelete:
		s.deleteChapter(w, &chapter)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Service) updateChapter(w http.ResponseWriter, r *http.Request, chapter *models.Chapter) {
	var input chapterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Title == "" {
		jsonError(w, "Title is required", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{
		"title":          input.Title,
		"description":    input.Description,
		"position":       input.Position,
		"is_published":   input.IsPublished,
		"video_url":      input.VideoURL,
		"attachment_url": input.AttachmentURL,
	}

	if err := s.DB.Model(chapter).Updates(updates).Error; err != nil {
		jsonError(w, "Failed to update chapter", http.StatusInternalServerError)
		return
	}

	s.InvalidateCourseCache(chapter.CourseID)

	json.NewEncoder(w).Encode(chapter)
}

func (s *Service) deleteChapter(w http.ResponseWriter, chapter *models.Chapter) {
	if err := s.DB.Delete(chapter).Error; err != nil {
		jsonError(w, "Failed to delete chapter", http.StatusInternalServerError)
		return
	}

	s.InvalidateCourseCache(chapter.CourseID)

	json.NewEncoder(w).Encode(map[string]string{"result": "deleted"})
}

// ==========================================
// PUT /api/admin/chapters/{id}/assessment
// Редактор теста: апсерт вопросов по ID
// ==========================================

type questionInput struct {
	ID            uint     `json:"id"` // 0 = новый вопрос
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// UpsertAssessmentAPI сохраняет тест главы. Существующие вопросы обновляются
// по ID, новые вставляются, пропавшие из запроса — удаляются. Полного
// «снести и залить заново» здесь нет: ID вопросов стабильны, история
// попыток не осиротеет.
func (s *Service) UpsertAssessmentAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	chapterID, err := strconv.Atoi(vars["id"])
	if err != nil {
		jsonError(w, "Invalid chapter ID", http.StatusBadRequest)
		return
	}

	var chapter models.Chapter
	if err := s.DB.First(&chapter, chapterID).Error; err != nil {
		jsonError(w, "Chapter not found", http.StatusNotFound)
		return
	}

	var input struct {
		Title     string          `json:"title"`
		Questions []questionInput `json:"questions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if len(input.Questions) == 0 {
		jsonError(w, "Тест должен содержать хотя бы один вопрос", http.StatusBadRequest)
		return
	}

	// Валидация ДО транзакции: правильный ответ обязан быть среди вариантов
	for i, q := range input.Questions {
		if err := grading.ValidateQuestion(q.Text, q.Options, q.CorrectAnswer); err != nil {
			jsonError(w, "Вопрос "+strconv.Itoa(i+1)+": "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	var assessment models.Assessment
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Тест главы (создаем при первом сохранении)
		err := tx.Where("chapter_id = ?", chapterID).First(&assessment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			assessment = models.Assessment{ChapterID: uint(chapterID), Title: input.Title}
			if err := tx.Create(&assessment).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if assessment.Title != input.Title {
			if err := tx.Model(&assessment).Update("title", input.Title).Error; err != nil {
				return err
			}
		}

		keep := make([]uint, 0, len(input.Questions))
		for _, q := range input.Questions {
			optionsJSON, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}

			if q.ID != 0 {
				// Обновление существующего вопроса
				res := tx.Model(&models.Question{}).
					Where("id = ? AND assessment_id = ?", q.ID, assessment.ID).
					Updates(map[string]interface{}{
						"text":           q.Text,
						"options":        datatypes.JSON(optionsJSON),
						"correct_answer": q.CorrectAnswer,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return errors.New("вопрос не принадлежит этому тесту")
				}
				keep = append(keep, q.ID)
			} else {
				// Новый вопрос
				row := models.Question{
					AssessmentID:  assessment.ID,
					Text:          q.Text,
					Options:       datatypes.JSON(optionsJSON),
					CorrectAnswer: q.CorrectAnswer,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				keep = append(keep, row.ID)
			}
		}

		// Удаляем вопросы, которых больше нет в запросе
		return tx.Where("assessment_id = ? AND id NOT IN ?", assessment.ID, keep).
			Delete(&models.Question{}).Error
	})

	if err != nil {
		log.Println("Ошибка сохранения теста:", err)
		jsonError(w, "Failed to save assessment", http.StatusInternalServerError)
		return
	}

	s.InvalidateCourseCache(chapter.CourseID)

	s.DB.Preload("Questions").First(&assessment, assessment.ID)
	json.NewEncoder(w).Encode(assessment)
}
