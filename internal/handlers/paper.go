package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/s/eduPlatform/internal/models"
)

// --- ИССЛЕДОВАТЕЛЬСКИЕ РАБОТЫ ---

// GET /api/courses/{id}/paper — моя работа по курсу
func (h *Handler) GetMyPaperAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, _ := strconv.Atoi(vars["id"])

	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var paper models.ResearchPaper
	err := h.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&paper).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Работа не найдена", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(paper)
}

// POST /api/courses/{id}/paper — сдача работы.
// Черновик обычно уже создан правилом завершения курса; если студент
// почему-то сдает раньше (курс не требует работы, но разрешает), создаем
// строку на лету. Пересдача разрешена, пока работа не одобрена.
func (h *Handler) SubmitPaperAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, _ := strconv.Atoi(vars["id"])

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

	var req struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		FileURL  string `json:"file_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.FileURL == "" {
		http.Error(w, "Title and file_url are required", http.StatusBadRequest)
		return
	}

	var paper models.ResearchPaper
	err = h.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&paper).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		paper = models.ResearchPaper{
			UserID:   userID,
			CourseID: uint(courseID),
			RefCode:  uuid.NewString(),
		}
	} else if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if paper.Status == models.PaperApproved {
		http.Error(w, "Работа уже одобрена, пересдача не нужна", http.StatusConflict)
		return
	}

	paper.Title = req.Title
	paper.Abstract = req.Abstract
	paper.FileURL = req.FileURL
	paper.Status = models.PaperSubmitted
	paper.ReviewNote = ""

	if err := h.DB.Save(&paper).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	h.logAction(userID, models.ActionPaperSubmit, fmt.Sprintf("Работа %s по курсу %d", paper.RefCode, courseID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(paper)
}
