package middleware

import (
	"net/http"

	"github.com/s/eduPlatform/internal/handlers"
	"github.com/s/eduPlatform/internal/models"
)

// RequiredRole создает Middleware, требующее определенного RoleID.
func RequiredRole(h *handlers.Handler, requiredRoleID uint) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			// 1. Проверка Аутентификации
			userID, isAuthenticated := h.GetAuthenticatedUserID(r)

			if !isAuthenticated {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// 2. Получение данных пользователя для проверки Роли
			var user models.User
			if err := h.DB.First(&user, userID).Error; err != nil {
				http.Error(w, "User not found or database error", http.StatusUnauthorized)
				return
			}

			// 3. Динамическая Проверка RoleID
			if user.RoleID != requiredRoleID {
				http.Error(w, "Access Denied: Insufficient permissions", http.StatusForbidden)
				return
			}

			// 4. Если все проверки пройдены, вызываем следующий обработчик
			next.ServeHTTP(w, r)
		}
	}
}
