package admin

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/s/eduPlatform/internal/models"
)

// ==========================================
// 1. GET /api/admin/courses (Список)
// 2. POST /api/admin/courses (Создание)
// ==========================================
func (s *Service) HandleCoursesAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		s.getCourses(w, r)
	case http.MethodPost:
		s.createCourse(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ==========================================
// 3. GET /api/admin/courses/{id} (Детали)
// 4. PUT /api/admin/courses/{id} (Обновление)
// 5. DELETE /api/admin/courses/{id} (Удаление)
// ==========================================
func (s *Service) HandleCourseByIDAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	vars := mux.Vars(r)
	idStr := vars["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		jsonError(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getCourseByID(w, r, id)
	case http.MethodPut:
		s.updateCourse(w, r, id)
	case http.MethodDelete:
		s.deleteCourse(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// -------------------------------------------------------------------------
// Вспомогательные функции (Логика)
// -------------------------------------------------------------------------

func (s *Service) getCourses(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "Вы не авторизованы", http.StatusUnauthorized)
		return
	}

	var courses []models.Course
	result := s.DB.Where("author_id = ?", userID).Preload("Author").Order("created_at desc").Find(&courses)
	if result.Error != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(courses)
}

type courseInput struct {
	Title                 string `json:"title"`
	Description           string `json:"description"`
	IsPublished           bool   `json:"is_published"`
	Language              string `json:"language"`
	ImageURL              string `json:"image_url"`
	RequiresResearchPaper bool   `json:"requires_research_paper"`
}

func (s *Service) createCourse(w http.ResponseWriter, r *http.Request) {
	var input courseInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Title == "" {
		jsonError(w, "Title is required", http.StatusBadRequest)
		return
	}

	userID, ok := s.GetAuthenticatedUserID(r)
	if !ok {
		jsonError(w, "User not identified (Empty Session)", http.StatusUnauthorized)
		return
	}

	course := models.Course{
		Title:                 input.Title,
		Description:           input.Description,
		IsPublished:           input.IsPublished,
		Language:              input.Language,
		ImageURL:              input.ImageURL,
		RequiresResearchPaper: input.RequiresResearchPaper,
		AuthorID:              userID,
	}

	if err := s.DB.Create(&course).Error; err != nil {
		log.Println("Ошибка БД при создании курса:", err)
		jsonError(w, "Failed to create course", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(course)
}

func (s *Service) getCourseByID(w http.ResponseWriter, r *http.Request, id int) {
	var course models.Course
	err := s.DB.Preload("Author").Preload("Chapters.Assessment.Questions").First(&course, id).Error
	if err != nil {
		jsonError(w, "Course not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(course)
}

func (s *Service) updateCourse(w http.ResponseWriter, r *http.Request, id int) {
	var course models.Course
	if err := s.DB.First(&course, id).Error; err != nil {
		jsonError(w, "Course not found", http.StatusNotFound)
		return
	}

	var input courseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		jsonError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if input.Title == "" {
		jsonError(w, "Title is required", http.StatusBadRequest)
		return
	}

	// Обновляем через map, чтобы false-значения тоже записались
	updates := map[string]interface{}{
		"title":                   input.Title,
		"description":             input.Description,
		"is_published":            input.IsPublished,
		"language":                input.Language,
		"image_url":               input.ImageURL,
		"requires_research_paper": input.RequiresResearchPaper,
	}

	if err := s.DB.Model(&course).Updates(updates).Error; err != nil {
		jsonError(w, "Failed to update course", http.StatusInternalServerError)
		return
	}

	s.InvalidateCourseCache(uint(id))

	json.NewEncoder(w).Encode(course)
}

func (s *Service) deleteCourse(w http.ResponseWriter, r *http.Request, id int) {
	if err := s.DB.Delete(&models.Course{}, id).Error; err != nil {
		jsonError(w, "Failed to delete course", http.StatusInternalServerError)
		return
	}

	s.InvalidateCourseCache(uint(id))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"result": "deleted"})
}
