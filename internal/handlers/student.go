package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/s/eduPlatform/internal/models"
	"gorm.io/gorm"
)

// Структура для отображения курса с процентами
type StudentCourseView struct {
	Enrollment      models.Enrollment `json:"enrollment"`
	ProgressPercent int               `json:"progress_percent"`
	TotalChapters   int               `json:"total_chapters"`
	DoneChapters    int               `json:"done_chapters"`
}

// GetCatalogAPI - возвращает JSON с опубликованными курсами
func (h *Handler) GetCatalogAPI(w http.ResponseWriter, r *http.Request) {
	var courses []models.Course

	if err := h.DB.Preload("Author").Where("is_published = ?", true).Order("created_at desc").Find(&courses).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(courses)
}

// GetMyCoursesAPI - мои курсы с процентом прохождения
func (s *Handler) GetMyCoursesAPI(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var enrollments []models.Enrollment
	err := s.DB.Preload("Course.Author").
		Where("user_id = ?", userID).
		Find(&enrollments).Error

	if err != nil {
		log.Printf("Ошибка получения данных: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Подготовка данных для отображения (View)
	var views []StudentCourseView
	for _, e := range enrollments {
		// 1. Считаем общее количество опубликованных глав курса
		var totalChapters int64
		s.DB.Model(&models.Chapter{}).
			Where("course_id = ? AND is_published = ?", e.CourseID, true).
			Count(&totalChapters)

		// 2. Считаем пройденные главы из таблицы ChapterProgress
		var doneChapters int64
		s.DB.Model(&models.ChapterProgress{}).
			Where("user_id = ? AND course_id = ? AND is_completed = ?", userID, e.CourseID, true).
			Count(&doneChapters)

		// 3. Считаем процент
		percent := 0
		if totalChapters > 0 {
			percent = int((float64(doneChapters) / float64(totalChapters)) * 100)
		}

		views = append(views, StudentCourseView{
			Enrollment:      e,
			ProgressPercent: percent,
			TotalChapters:   int(totalChapters),
			DoneChapters:    int(doneChapters),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// chapterView — глава в структуре курса, без правильных ответов
type chapterView struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Position      int    `json:"position"`
	VideoURL      string `json:"video_url"`
	AttachmentURL string `json:"attachment_url"`
	HasAssessment bool   `json:"has_assessment"`
	AssessmentID  uint   `json:"assessment_id,omitempty"`
	QuestionCount int    `json:"question_count"`
	IsCompleted   bool   `json:"is_completed"`
}

// GetCourseStructureAPI - структура курса: главы + прогресс текущего пользователя.
// Сами главы кешируются в Redis, прогресс всегда читается из БД.
func (s *Handler) GetCourseStructureAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	_, userID := s.GetUserRoleID(r)

	course, chapters, err := s.loadCourseStructure(uint(courseID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Курс не найден", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	// Карта пройденных глав (для гостя остается пустой)
	doneMap := make(map[uint]bool)
	if userID != 0 {
		var progress []models.ChapterProgress
		s.DB.Where("user_id = ? AND course_id = ? AND is_completed = ?", userID, courseID, true).Find(&progress)
		for _, p := range progress {
			doneMap[p.ChapterID] = true
		}
	}

	// Ищем первую непройденную главу и считаем процент
	totalChapters := len(chapters)
	var nextChapterID uint
	doneCount := 0
	for i := range chapters {
		chapters[i].IsCompleted = doneMap[chapters[i].ID]
		if chapters[i].IsCompleted {
			doneCount++
		} else if nextChapterID == 0 {
			nextChapterID = chapters[i].ID
		}
	}

	percent := 0
	if totalChapters > 0 {
		percent = int((float64(doneCount) / float64(totalChapters)) * 100)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"course":           course,
		"chapters":         chapters,
		"total_chapters":   totalChapters,
		"done_chapters":    doneCount,
		"progress_percent": percent,
		"next_chapter_id":  nextChapterID,
	})
}

type cachedStructure struct {
	Course   models.Course `json:"course"`
	Chapters []chapterView `json:"chapters"`
}

func structureCacheKey(courseID uint) string {
	return fmt.Sprintf("course:%d:structure", courseID)
}

// loadCourseStructure читает курс и главы, сперва пробуя Redis.
// Ошибки кеша не фатальны — падаем обратно на БД.
func (s *Handler) loadCourseStructure(courseID uint) (models.Course, []chapterView, error) {
	if s.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		raw, err := s.Cache.Get(ctx, structureCacheKey(courseID)).Bytes()
		if err == nil {
			var cached cachedStructure
			if json.Unmarshal(raw, &cached) == nil {
				return cached.Course, cached.Chapters, nil
			}
		}
	}

	var course models.Course
	if err := s.DB.Preload("Author").First(&course, courseID).Error; err != nil {
		return course, nil, err
	}

	var chapterRows []models.Chapter
	err := s.DB.Preload("Assessment.Questions").
		Where("course_id = ? AND is_published = ?", courseID, true).
		Order("position asc").
		Find(&chapterRows).Error
	if err != nil {
		return course, nil, err
	}

	views := make([]chapterView, 0, len(chapterRows))
	for _, ch := range chapterRows {
		v := chapterView{
			ID:            ch.ID,
			Title:         ch.Title,
			Description:   ch.Description,
			Position:      ch.Position,
			VideoURL:      ch.VideoURL,
			AttachmentURL: ch.AttachmentURL,
		}
		if ch.Assessment != nil {
			v.HasAssessment = true
			v.AssessmentID = ch.Assessment.ID
			v.QuestionCount = len(ch.Assessment.Questions)
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Position < views[j].Position })

	if s.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		raw, err := json.Marshal(cachedStructure{Course: course, Chapters: views})
		if err == nil {
			if err := s.Cache.Set(ctx, structureCacheKey(courseID), raw, 5*time.Minute).Err(); err != nil {
				log.Printf("Не удалось записать кеш структуры курса %d: %v", courseID, err)
			}
		}
	}

	return course, views, nil
}

// SubmitEnrollment - POST /api/enroll, заявка на курс (статус pending)
func (s *Handler) SubmitEnrollment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CourseID uint `json:"course_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CourseID == 0 {
		jsonError(w, "Неверный формат JSON", http.StatusBadRequest)
		return
	}

	var course models.Course
	if err := s.DB.Where("is_published = ?", true).First(&course, req.CourseID).Error; err != nil {
		jsonError(w, "Курс не найден", http.StatusNotFound)
		return
	}

	// Повторная заявка на тот же курс не создает дубликат
	var existing models.Enrollment
	result := s.DB.Where("user_id = ? AND course_id = ?", userID, req.CourseID).First(&existing)
	if result.Error == nil {
		jsonError(w, "Заявка уже существует", http.StatusConflict)
		return
	}

	enrollment := models.Enrollment{
		UserID:   userID,
		CourseID: req.CourseID,
		Status:   models.EnrollmentPending,
	}
	if err := s.DB.Create(&enrollment).Error; err != nil {
		jsonError(w, "Ошибка при создании заявки", http.StatusInternalServerError)
		return
	}

	s.logAction(userID, models.ActionEnrollment, fmt.Sprintf("Заявка на курс %d", req.CourseID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(enrollment)
}
