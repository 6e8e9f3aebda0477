package admin

import (
	"encoding/json"
	"net/http"

	"github.com/s/eduPlatform/internal/handlers"
	"github.com/s/eduPlatform/internal/models"
)

// Service встраивает основной Handler — доступ к БД, сессиям и кешу тот же.
type Service struct {
	handlers.Handler
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ==========================================
// GET /api/admin/stats — сводка для дашборда
// ==========================================
func (s *Service) GetStatsAPI(w http.ResponseWriter, r *http.Request) {
	var stats struct {
		Users             int64 `json:"users"`
		Courses           int64 `json:"courses"`
		PublishedCourses  int64 `json:"published_courses"`
		Enrollments       int64 `json:"enrollments"`
		PendingRequests   int64 `json:"pending_requests"`
		Submissions       int64 `json:"submissions"`
		PassedSubmissions int64 `json:"passed_submissions"`
		PapersToReview    int64 `json:"papers_to_review"`
	}

	s.DB.Model(&models.User{}).Count(&stats.Users)
	s.DB.Model(&models.Course{}).Count(&stats.Courses)
	s.DB.Model(&models.Course{}).Where("is_published = ?", true).Count(&stats.PublishedCourses)
	s.DB.Model(&models.Enrollment{}).Count(&stats.Enrollments)
	s.DB.Model(&models.Enrollment{}).Where("status = ?", models.EnrollmentPending).Count(&stats.PendingRequests)
	s.DB.Model(&models.AssessmentResult{}).Count(&stats.Submissions)
	s.DB.Model(&models.AssessmentResult{}).Where("is_passed = ?", true).Count(&stats.PassedSubmissions)
	s.DB.Model(&models.ResearchPaper{}).Where("status = ?", models.PaperSubmitted).Count(&stats.PapersToReview)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GET /api/admin/logs — последние действия пользователей
func (s *Service) GetLogsAPI(w http.ResponseWriter, r *http.Request) {
	var logs []models.UserLog
	if err := s.DB.Preload("User").Order("created_at desc").Limit(100).Find(&logs).Error; err != nil {
		jsonError(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
