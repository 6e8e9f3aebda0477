package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/s/eduPlatform/internal/models"
)

// --- ОБСУЖДЕНИЯ ---

// POST /api/courses/{id}/discussions
func (h *Handler) CreateDiscussionAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, _ := strconv.Atoi(vars["id"])
	_, userID := h.GetUserRoleID(r)

	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		ChapterID *uint  `json:"chapter_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Content == "" {
		http.Error(w, "Title and content are required", http.StatusBadRequest)
		return
	}

	// Обсуждения доступны только записанным на курс
	var enrollment models.Enrollment
	err := h.DB.Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentApproved).
		First(&enrollment).Error
	if err != nil {
		http.Error(w, "Вы не записаны на этот курс", http.StatusForbidden)
		return
	}

	discussion := models.Discussion{
		UserID:    userID,
		CourseID:  uint(courseID),
		ChapterID: req.ChapterID,
		Title:     req.Title,
		Content:   req.Content,
	}

	if err := h.DB.Create(&discussion).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Подгружаем пользователя для ответа
	h.DB.Preload("User").First(&discussion, discussion.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(discussion)
}

// GET /api/courses/{id}/discussions
func (h *Handler) GetDiscussionsAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, _ := strconv.Atoi(vars["id"])

	var discussions []models.Discussion
	// Загружаем обсуждения с ответами, сортируем от новых к старым
	query := h.DB.Preload("User").Preload("Replies.User").
		Where("course_id = ?", courseID).
		Order("created_at desc")

	// Фильтр по главе, если передан ?chapter_id=
	if chapterID := r.URL.Query().Get("chapter_id"); chapterID != "" {
		query = query.Where("chapter_id = ?", chapterID)
	}

	if err := query.Find(&discussions).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	// Подсчет лайков одним запросом на обсуждение
	for i := range discussions {
		h.DB.Model(&models.DiscussionLike{}).
			Where("discussion_id = ?", discussions[i].ID).
			Count(&discussions[i].LikeCount)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(discussions)
}

// POST /api/discussions/{id}/replies
func (h *Handler) AddReplyAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	discussionID, _ := strconv.Atoi(vars["id"])
	_, userID := h.GetUserRoleID(r)

	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	var discussion models.Discussion
	if err := h.DB.First(&discussion, discussionID).Error; err != nil {
		http.Error(w, "Обсуждение не найдено", http.StatusNotFound)
		return
	}

	reply := models.Reply{
		UserID:       userID,
		DiscussionID: uint(discussionID),
		Content:      req.Content,
	}

	if err := h.DB.Create(&reply).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	h.DB.Preload("User").First(&reply, reply.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

// POST /api/discussions/{id}/like — переключатель лайка
func (h *Handler) ToggleLikeAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	discussionID, _ := strconv.Atoi(vars["id"])
	_, userID := h.GetUserRoleID(r)

	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var discussion models.Discussion
	if err := h.DB.First(&discussion, discussionID).Error; err != nil {
		http.Error(w, "Обсуждение не найдено", http.StatusNotFound)
		return
	}

	liked := false
	var existing models.DiscussionLike
	result := h.DB.Where("discussion_id = ? AND user_id = ?", discussionID, userID).First(&existing)

	if result.RowsAffected > 0 {
		// Лайк уже есть — снимаем
		h.DB.Delete(&existing)
	} else {
		// Ставим новый; уникальный индекс защищает от дублей при гонке
		like := models.DiscussionLike{
			DiscussionID: uint(discussionID),
			UserID:       userID,
		}
		if err := h.DB.Create(&like).Error; err == nil {
			liked = true
		}
	}

	var count int64
	h.DB.Model(&models.DiscussionLike{}).Where("discussion_id = ?", discussionID).Count(&count)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"liked":      liked,
		"like_count": count,
	})
}
