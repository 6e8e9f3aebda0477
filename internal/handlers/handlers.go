package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/s/eduPlatform/internal/models"
	"github.com/s/eduPlatform/internal/storage"

	"gorm.io/gorm"
)

type Handler struct {
	DB     *gorm.DB
	Store  *sessions.CookieStore
	Config *oauth2.Config
	Cache  *redis.Client // может быть nil — тогда кеширование просто выключено
}

func NewHandler(db *gorm.DB, store *sessions.CookieStore, config *oauth2.Config, cache *redis.Client) *Handler {
	return &Handler{
		DB:     db,
		Store:  store,
		Config: config,
		Cache:  cache,
	}
}

func (h *Handler) GetAuthenticatedUserID(r *http.Request) (uint, bool) {
	session, _ := h.Store.Get(r, "session")

	userIDValue := session.Values["user_id"]
	userID, ok := userIDValue.(uint)

	return userID, ok && userID != 0
}

func (h *Handler) GetUserRoleID(r *http.Request) (uint, uint) {
	session, _ := h.Store.Get(r, "session")

	userIDvalue := session.Values["user_id"]
	userID, _ := userIDvalue.(uint)

	roleID := models.RoleGuest

	if userID != 0 {
		var user models.User
		err := h.DB.Select("role_id").First(&user, userID).Error

		if err == nil {
			roleID = user.RoleID
		}
	}

	return roleID, userID
}

func jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// logAction пишет строку в журнал действий. Журнал вспомогательный,
// поэтому ошибку только логируем.
func (h *Handler) logAction(userID uint, action, details string) {
	entry := models.UserLog{UserID: userID, Action: action, Details: details}
	if err := h.DB.Create(&entry).Error; err != nil {
		log.Printf("Не удалось записать лог действия %q: %v", action, err)
	}
}

// invalidateCache — best-effort сброс ключей кеша после записи.
// Ошибки Redis никогда не роняют запрос: логируем и идем дальше.
func (h *Handler) invalidateCache(keys ...string) {
	if h.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Не удалось сбросить кеш %v: %v", keys, err)
	}
}

// InvalidateCourseCache сбрасывает кешированные представления курса
// (структура + рейтинг). Используется и отсюда, и из админки.
func (h *Handler) InvalidateCourseCache(courseID uint) {
	h.invalidateCache(structureCacheKey(courseID), leaderboardCacheKey(courseID))
}

// ==========================================
// OAuth: Вход через Google + сессии
// ==========================================

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.Config.AuthCodeURL("random_state")
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("state") != "random_state" {
		http.Error(w, "Invalid state", http.StatusUnauthorized)
		return
	}

	code := r.URL.Query().Get("code")
	token, err := h.Config.Exchange(context.Background(), code)
	if err != nil {
		http.Error(w, "Token exchange error", http.StatusBadRequest)
		return
	}

	client := h.Config.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Google API error", http.StatusBadRequest)
		return
	}
	defer resp.Body.Close()

	var userInfo models.User
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		http.Error(w, "JSON decode error", http.StatusInternalServerError)
		return
	}

	userID, err := storage.SaveUser(h.DB, userInfo)
	if err != nil {
		http.Error(w, "DB save error", http.StatusInternalServerError)
		return
	}

	session, _ := h.Store.Get(r, "session")
	session.Values["user_id"] = userID
	session.Values["email"] = userInfo.Email
	session.Values["name"] = userInfo.Name
	session.Values["picture_url"] = userInfo.Picture
	session.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   86400 * 7,
	}
	session.Save(r, w)

	h.logAction(userID, models.ActionLogin, "Вход через Google")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, "session")
	session.Options.MaxAge = -1
	session.Save(r, w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetProfileAPI - данные текущего пользователя
func (h *Handler) GetProfileAPI(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.GetAuthenticatedUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := h.DB.Preload("Role").First(&user, userID).Error; err != nil {
		http.Error(w, "Пользователь не найден", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
		"role_id": user.RoleID,
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
