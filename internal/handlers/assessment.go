package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/s/eduPlatform/internal/grading"
	"github.com/s/eduPlatform/internal/models"
	"github.com/s/eduPlatform/internal/progress"
)

// ==========================================
// Сдача теста: сервисный слой + HTTP-обертка
// ==========================================

// SubmitErrorKind — классификация отказов при сдаче теста.
// В HTTP-статусы превращается только в тонкой обертке SubmitAssessmentAPI.
type SubmitErrorKind int

const (
	KindUnauthenticated SubmitErrorKind = iota + 1
	KindForbidden
	KindNotFound
	KindValidation
	KindPersistence
)

type SubmitError struct {
	Kind    SubmitErrorKind
	Message string
}

func (e *SubmitError) Error() string { return e.Message }

// SubmitOutcome — единая форма ответа оркестратора.
// Наружу он никогда не паникует и не возвращает «голую» ошибку:
// любой отказ упаковывается сюда.
type SubmitOutcome struct {
	Success  bool             `json:"success"`
	Score    int              `json:"score,omitempty"`
	IsPassed bool             `json:"is_passed,omitempty"`
	Unlock   progress.Outcome `json:"unlock,omitempty"`
	Err      *SubmitError     `json:"-"`
}

func failed(kind SubmitErrorKind, msg string) SubmitOutcome {
	return SubmitOutcome{Success: false, Err: &SubmitError{Kind: kind, Message: msg}}
}

// SubmitAssessment — оркестратор сдачи теста.
//
// Порядок предусловий фиксированный: аутентификация → подписка → существование
// теста → валидность данных. До прохождения всех проверок — ни одной записи
// в БД. Результат попытки пишется ДО прогресса: сдача не может считаться
// зачтенной без записанного результата.
func (h *Handler) SubmitAssessment(userID, courseID, chapterID, assessmentID uint, answers map[uint]string) SubmitOutcome {
	// 1. Аутентификация
	if userID == 0 {
		return failed(KindUnauthenticated, "Требуется вход")
	}

	// 2. Подписка на курс (одобренная)
	var enrollment models.Enrollment
	err := h.DB.Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentApproved).
		First(&enrollment).Error
	if err != nil {
		return failed(KindForbidden, "Вы не записаны на этот курс")
	}

	// 3. Тест с вопросами, принадлежащий именно этой главе этого курса
	var assessment models.Assessment
	err = h.DB.Preload("Questions").First(&assessment, assessmentID).Error
	if err != nil || assessment.ChapterID != chapterID {
		return failed(KindNotFound, "Тест не найден")
	}
	var chapter models.Chapter
	err = h.DB.First(&chapter, chapterID).Error
	if err != nil || chapter.CourseID != courseID {
		return failed(KindNotFound, "Глава не найдена")
	}

	// 4. Валидация до любого подсчета
	if answers == nil {
		return failed(KindValidation, "Пустое тело ответов")
	}
	if len(assessment.Questions) == 0 {
		return failed(KindValidation, "В тесте нет вопросов")
	}

	// 5. Оценка (чистая функция)
	result, err := grading.Grade(assessment.Questions, answers)
	if err != nil {
		// Сюда попадаем только при нарушении предусловия — len(questions)==0
		// уже отфильтрован выше, но оставляем защиту.
		return failed(KindValidation, err.Error())
	}

	// 6. Результат попытки. История не перезаписывается: каждая попытка —
	// отдельная строка. Ошибка записи — стоп до любого изменения прогресса.
	attempt := models.AssessmentResult{
		UserID:       userID,
		AssessmentID: assessmentID,
		ChapterID:    chapterID,
		CourseID:     courseID,
		Score:        result.Score,
		IsPassed:     result.IsPassed,
	}
	if err := h.DB.Create(&attempt).Error; err != nil {
		log.Printf("Ошибка записи результата теста (user=%d assessment=%d): %v", userID, assessmentID, err)
		return failed(KindPersistence, "Не удалось сохранить результат")
	}

	// 7. Правило разблокировки прогресса
	unlock, err := progress.Unlock(h.DB, userID, courseID, chapterID, result.IsPassed)
	if err != nil {
		log.Printf("Ошибка обновления прогресса (user=%d chapter=%d): %v", userID, chapterID, err)
		return failed(KindPersistence, "Не удалось обновить прогресс")
	}

	// 8. Побочные сигналы — строго best-effort, успех сдачи не отменяют
	h.InvalidateCourseCache(courseID)
	h.logAction(userID, models.ActionAssessmentSubmit,
		fmt.Sprintf("Тест %d: %d%%, сдан=%v", assessmentID, result.Score, result.IsPassed))

	return SubmitOutcome{
		Success:  true,
		Score:    result.Score,
		IsPassed: result.IsPassed,
		Unlock:   unlock,
	}
}

// SubmitAssessmentAPI — POST /api/courses/{id}/chapters/{chapter_id}/assessments/{assessment_id}/submit
// Тело: {"answers": {"<question_id>": "<ответ>"}}
func (h *Handler) SubmitAssessmentAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, err1 := strconv.ParseUint(vars["id"], 10, 32)
	chapterID, err2 := strconv.ParseUint(vars["chapter_id"], 10, 32)
	assessmentID, err3 := strconv.ParseUint(vars["assessment_id"], 10, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	_, userID := h.GetUserRoleID(r)

	var req struct {
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	answers, err := parseAnswers(req.Answers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome := h.SubmitAssessment(userID, uint(courseID), uint(chapterID), uint(assessmentID), answers)
	if !outcome.Success {
		http.Error(w, outcome.Err.Message, httpStatusFor(outcome.Err.Kind))
		return
	}

	// Правильные ответы отдаем только после сдачи попытки
	var questions []models.Question
	h.DB.Where("assessment_id = ?", assessmentID).Find(&questions)
	correctAnswers := make([]string, 0, len(questions))
	for _, q := range questions {
		correctAnswers = append(correctAnswers, q.CorrectAnswer)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":         true,
		"score":           outcome.Score,
		"is_passed":       outcome.IsPassed,
		"correct_answers": correctAnswers,
		"unlock":          outcome.Unlock,
	})
}

func parseAnswers(raw map[string]string) (map[uint]string, error) {
	if raw == nil {
		return nil, nil
	}
	answers := make(map[uint]string, len(raw))
	for key, val := range raw {
		id, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, errors.New("Неверный ID вопроса: " + key)
		}
		answers[uint(id)] = val
	}
	return answers, nil
}

func httpStatusFor(kind SubmitErrorKind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetChapterAssessmentAPI — вопросы теста для прохождения (без правильных ответов)
func (h *Handler) GetChapterAssessmentAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, _ := strconv.ParseUint(vars["id"], 10, 32)
	chapterID, _ := strconv.ParseUint(vars["chapter_id"], 10, 32)

	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var enrollment models.Enrollment
	err := h.DB.Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentApproved).
		First(&enrollment).Error
	if err != nil {
		http.Error(w, "Вы не записаны на этот курс", http.StatusForbidden)
		return
	}

	var assessment models.Assessment
	err = h.DB.Preload("Questions").Where("chapter_id = ?", chapterID).First(&assessment).Error
	if err != nil {
		http.Error(w, "Тест не найден", http.StatusNotFound)
		return
	}

	type questionView struct {
		ID      uint            `json:"id"`
		Text    string          `json:"text"`
		Options json.RawMessage `json:"options"`
	}
	views := make([]questionView, 0, len(assessment.Questions))
	for _, q := range assessment.Questions {
		views = append(views, questionView{ID: q.ID, Text: q.Text, Options: json.RawMessage(q.Options)})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":        assessment.ID,
		"title":     assessment.Title,
		"questions": views,
	})
}

// MarkChapterDoneAPI — отметка главы без теста (просмотр видео).
// Главы с тестом закрываются только сдачей теста.
func (h *Handler) MarkChapterDoneAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, _ := strconv.ParseUint(vars["id"], 10, 32)
	chapterID, _ := strconv.ParseUint(vars["chapter_id"], 10, 32)

	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var enrollment models.Enrollment
	err := h.DB.Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentApproved).
		First(&enrollment).Error
	if err != nil {
		http.Error(w, "Вы не записаны на этот курс", http.StatusForbidden)
		return
	}

	var chapter models.Chapter
	err = h.DB.Preload("Assessment").First(&chapter, chapterID).Error
	if err != nil || chapter.CourseID != uint(courseID) {
		http.Error(w, "Глава не найдена", http.StatusNotFound)
		return
	}
	if chapter.Assessment != nil {
		http.Error(w, "Эта глава закрывается сдачей теста", http.StatusBadRequest)
		return
	}

	unlock, err := progress.Unlock(h.DB, userID, uint(courseID), uint(chapterID), true)
	if err != nil {
		log.Printf("Ошибка обновления прогресса (user=%d chapter=%d): %v", userID, chapterID, err)
		http.Error(w, "Не удалось обновить прогресс", http.StatusInternalServerError)
		return
	}

	h.InvalidateCourseCache(uint(courseID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"unlock":  unlock,
	})
}

// GetMyAttemptsAPI — история попыток пользователя по главе.
// История не перезаписывается, поэтому лучший балл считаем по MAX.
func (h *Handler) GetMyAttemptsAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chapterID, _ := strconv.ParseUint(vars["chapter_id"], 10, 32)

	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var attempts []models.AssessmentResult
	if err := h.DB.Where("user_id = ? AND chapter_id = ?", userID, chapterID).Order("created_at desc").Find(&attempts).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	bestScore := 0
	passed := false
	for _, a := range attempts {
		if a.Score > bestScore {
			bestScore = a.Score
		}
		if a.IsPassed {
			passed = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"attempts":   attempts,
		"best_score": bestScore,
		"is_passed":  passed,
	})
}
