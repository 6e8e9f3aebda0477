package admin

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/s/eduPlatform/internal/models"
)

// ==========================================
// API: Проверка исследовательских работ
// ==========================================

// GET /api/admin/papers?status=submitted
func (s *Service) GetPapersAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID, ok := s.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Вы не авторизованы", http.StatusUnauthorized)
		return
	}

	// Только работы по курсам этого автора
	db := s.DB.Preload("User").Preload("Course").
		Joins("JOIN courses ON courses.id = research_papers.course_id").
		Where("courses.author_id = ?", userID)

	if status := r.URL.Query().Get("status"); status != "" && status != "all" {
		db = db.Where("research_papers.status = ?", status)
	}

	var papers []models.ResearchPaper
	if err := db.Order("research_papers.updated_at desc").Find(&papers).Error; err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(papers)
}

// PUT /api/admin/papers/{id} — вердикт по работе
func (s *Service) ReviewPaperAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	id := vars["id"]

	var req struct {
		Status     string `json:"status"` // approved / rejected
		ReviewNote string `json:"review_note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Неверный формат JSON", http.StatusBadRequest)
		return
	}

	if req.Status != models.PaperApproved && req.Status != models.PaperRejected {
		jsonError(w, "Недопустимый статус", http.StatusBadRequest)
		return
	}

	var paper models.ResearchPaper
	if err := s.DB.First(&paper, id).Error; err != nil {
		jsonError(w, "Работа не найдена", http.StatusNotFound)
		return
	}

	// Вердикт выносится только по сданным работам
	if paper.Status != models.PaperSubmitted {
		jsonError(w, "Работа еще не сдана", http.StatusConflict)
		return
	}

	updates := map[string]interface{}{
		"status":      req.Status,
		"review_note": req.ReviewNote,
	}
	if err := s.DB.Model(&paper).Updates(updates).Error; err != nil {
		jsonError(w, "Ошибка при обновлении статуса", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(paper)
}
