package admin

import (
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/s/eduPlatform/internal/models"
	"github.com/s/eduPlatform/internal/progress"
)

// ==========================================
// API: Получение списка заявок с фильтрами
// ==========================================
func (s *Service) GetEnrollmentsAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, ok := s.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Вы не авторизованы", http.StatusUnauthorized)
		return
	}

	// 1. Парсим параметры
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	search := query.Get("search")
	courseID := query.Get("course_id")
	status := query.Get("status")
	dateFrom := query.Get("date_from")
	dateTo := query.Get("date_to")

	var total int64

	// 2. Строим базовый запрос: только заявки на курсы этого автора
	db := s.DB.Model(&models.Enrollment{})
	db = db.Preload("User").Preload("Course")
	db = db.Joins("JOIN courses ON courses.id = enrollments.course_id")
	db = db.Where("courses.author_id = ?", userID)

	// --- ФИЛЬТРЫ ---

	// По Курсу
	if courseID != "" && courseID != "0" {
		db = db.Where("enrollments.course_id = ?", courseID)
	}

	// По Статусу
	if status != "" && status != "all" {
		db = db.Where("enrollments.status = ?", status)
	}

	// По Дате
	if dateFrom != "" {
		db = db.Where("enrollments.created_at >= ?", dateFrom)
	}
	if dateTo != "" {
		db = db.Where("enrollments.created_at <= ?", dateTo+" 23:59:59")
	}

	// Поиск (JOIN Users)
	if search != "" {
		searchLike := "%" + search + "%"
		db = db.Joins("JOIN users ON users.id = enrollments.user_id").
			Where("users.name ILIKE ? OR users.email ILIKE ?", searchLike, searchLike)
	}

	// 3. Считаем Total (до пагинации)
	db.Count(&total)

	// 4. Пагинация и получение данных
	offset := (page - 1) * limit

	var enrollments []models.Enrollment
	err := db.Order("enrollments.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&enrollments).Error

	if err != nil {
		jsonError(w, "Ошибка базы данных: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// 5. Формируем ответ
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  enrollments,
		"total": total,
		"page":  page,
		"pages": totalPages,
	})
}

// ==========================================
// API: Изменение статуса (Одобрить/Отклонить)
// ==========================================
func (s *Service) UpdateEnrollmentStatusAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	id := vars["id"]

	var req struct {
		Status string `json:"status"` // ожидаем "approved" или "rejected"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Неверный формат JSON", http.StatusBadRequest)
		return
	}

	if req.Status != models.EnrollmentApproved && req.Status != models.EnrollmentRejected && req.Status != models.EnrollmentPending {
		jsonError(w, "Недопустимый статус", http.StatusBadRequest)
		return
	}

	var enrollment models.Enrollment
	if err := s.DB.First(&enrollment, id).Error; err != nil {
		jsonError(w, "Заявка не найдена", http.StatusNotFound)
		return
	}

	if err := s.DB.Model(&enrollment).Update("status", req.Status).Error; err != nil {
		jsonError(w, "Ошибка при обновлении статуса", http.StatusInternalServerError)
		return
	}

	// При одобрении создаем скелет прогресса по всем опубликованным главам
	// (is_completed=false) — студент сразу видит список глав со статусами.
	if req.Status == models.EnrollmentApproved {
		if err := progress.SeedChapterProgress(s.DB, enrollment.UserID, enrollment.CourseID); err != nil {
			// Не фатально: апсерты при сдаче не требуют этих строк
			log.Printf("Не удалось создать скелет прогресса (user=%d course=%d): %v",
				enrollment.UserID, enrollment.CourseID, err)
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"result": "success"})
}
