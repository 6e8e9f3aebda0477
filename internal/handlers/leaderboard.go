package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/s/eduPlatform/internal/models"
)

// LeaderboardEntry — строка рейтинга курса
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       uint   `json:"user_id"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	DoneChapters int    `json:"done_chapters"`
	AvgBestScore int    `json:"avg_best_score"`
	IsCompleted  bool   `json:"is_completed"`
}

func leaderboardCacheKey(courseID uint) string {
	return fmt.Sprintf("course:%d:leaderboard", courseID)
}

// GetLeaderboardAPI — GET /api/courses/{id}/leaderboard
// Рейтинг: сперва по закрытым главам, потом по среднему лучшему баллу.
// Кешируется в Redis на минуту — сортировка по всем студентам не из дешевых.
func (h *Handler) GetLeaderboardAPI(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	courseID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if h.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		raw, err := h.Cache.Get(ctx, leaderboardCacheKey(uint(courseID))).Bytes()
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(raw)
			return
		}
	}

	entries, err := h.buildLeaderboard(uint(courseID))
	if err != nil {
		log.Printf("Ошибка построения рейтинга курса %d: %v", courseID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	payload, _ := json.Marshal(entries)

	if h.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.Cache.Set(ctx, leaderboardCacheKey(uint(courseID)), payload, time.Minute).Err(); err != nil {
			log.Printf("Не удалось записать кеш рейтинга: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func (h *Handler) buildLeaderboard(courseID uint) ([]LeaderboardEntry, error) {
	// Одобренные студенты курса
	var enrollments []models.Enrollment
	err := h.DB.Preload("User").
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentApproved).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(enrollments))
	for _, e := range enrollments {
		var doneChapters int64
		h.DB.Model(&models.ChapterProgress{}).
			Where("user_id = ? AND course_id = ? AND is_completed = ?", e.UserID, courseID, true).
			Count(&doneChapters)

		// Средний лучший балл: по каждому тесту берем MAX(score), усредняем
		var avg sql.NullFloat64
		h.DB.Raw(`SELECT AVG(best) FROM (
			SELECT MAX(score) AS best FROM assessment_results
			WHERE user_id = ? AND course_id = ?
			GROUP BY assessment_id
		) t`, e.UserID, courseID).Scan(&avg)

		avgScore := 0
		if avg.Valid {
			avgScore = int(avg.Float64 + 0.5)
		}

		entries = append(entries, LeaderboardEntry{
			UserID:       e.UserID,
			Name:         e.User.Name,
			Picture:      e.User.Picture,
			DoneChapters: int(doneChapters),
			AvgBestScore: avgScore,
			IsCompleted:  e.IsCompleted,
		})
	}

	// Главы важнее баллов: закрыл больше — выше в рейтинге
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DoneChapters != entries[j].DoneChapters {
			return entries[i].DoneChapters > entries[j].DoneChapters
		}
		return entries[i].AvgBestScore > entries[j].AvgBestScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}
