package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/s/eduPlatform/internal/auth"
	"github.com/s/eduPlatform/internal/database"
	"github.com/s/eduPlatform/internal/handlers"
	"github.com/s/eduPlatform/internal/handlers/admin"
	"github.com/s/eduPlatform/internal/middleware"
	"github.com/s/eduPlatform/internal/models"
)

func main() {
	// ---------------------------
	// 0. Загрузка переменных окружения
	// ---------------------------
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: Не удалось загрузить файл .env. Используются системные переменные.")
	}

	// ---------------------------
	// 1. Подключаем GORM (База данных)
	// ---------------------------
	db, err := database.Connect()
	if err != nil {
		log.Fatal("Ошибка подключения к БД:", err)
	}

	// ---------------------------
	// 2. Делаем миграции
	// ---------------------------
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Ошибка миграции:", err)
	}

	// ---------------------------
	// 3. Запускаем сиды
	// ---------------------------
	if err := database.Seed(db); err != nil {
		log.Println("Ошибка сидов (возможно, данные уже есть):", err)
	}

	// ---------------------------
	// 4. Настраиваем Google OAuth
	// ---------------------------
	clientId := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientId == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("Ошибка: Переменные GOOGLE_... не установлены в .env")
	}

	oauthConfig := auth.InitGoogleOAuthConfig(clientId, clientSecret, redirectURL)

	// ---------------------------
	// 5. Настройка сессий
	// ---------------------------
	sessionKey := os.Getenv("SESSION_KEY")
	if sessionKey == "" {
		sessionKey = "super-secret-default-key" // Только для разработки!
		log.Println("Внимание: SESSION_KEY не задан, используется дефолтный.")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false, // Поставьте true, если используете HTTPS
	}

	// ---------------------------
	// 6. Redis (кеш страниц курса и рейтинга)
	// ---------------------------
	var cache *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		log.Println("✅ Redis подключен:", addr)
	} else {
		log.Println("REDIS_ADDR не задан, кеширование выключено")
	}

	// ---------------------------
	// 7. Инициализация Хендлеров
	// ---------------------------
	h := handlers.NewHandler(db, store, oauthConfig, cache)

	// Встраиваем основной Handler в Admin Service
	adminService := admin.Service{
		Handler: *h,
	}

	// Middleware для проверки прав
	adminMiddleware := middleware.RequiredRole(h, models.RoleAdmin)

	// ---------------------------
	// 8. Роутинг с Gorilla Mux
	// ---------------------------
	r := mux.NewRouter()

	// --- Публичные маршруты ---
	r.HandleFunc("/healthz", h.HandleHealth).Methods("GET")
	r.HandleFunc("/auth/google/login", h.HandleGoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.HandleGoogleCallback).Methods("GET")
	r.HandleFunc("/logout", h.HandleLogout).Methods("GET", "POST")

	r.HandleFunc("/api/courses", h.GetCatalogAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}/structure", h.GetCourseStructureAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}/leaderboard", h.GetLeaderboardAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}/discussions", h.GetDiscussionsAPI).Methods("GET")

	// --- Маршруты студента ---
	r.HandleFunc("/api/profile", h.GetProfileAPI).Methods("GET")
	r.HandleFunc("/api/my/courses", h.GetMyCoursesAPI).Methods("GET")
	r.HandleFunc("/api/enroll", h.SubmitEnrollment).Methods("POST")

	r.HandleFunc("/api/courses/{id}/chapters/{chapter_id}/assessment", h.GetChapterAssessmentAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}/chapters/{chapter_id}/assessments/{assessment_id}/submit", h.SubmitAssessmentAPI).Methods("POST")
	r.HandleFunc("/api/courses/{id}/chapters/{chapter_id}/done", h.MarkChapterDoneAPI).Methods("POST")
	r.HandleFunc("/api/chapters/{chapter_id}/attempts", h.GetMyAttemptsAPI).Methods("GET")

	r.HandleFunc("/api/courses/{id}/discussions", h.CreateDiscussionAPI).Methods("POST")
	r.HandleFunc("/api/discussions/{id}/replies", h.AddReplyAPI).Methods("POST")
	r.HandleFunc("/api/discussions/{id}/like", h.ToggleLikeAPI).Methods("POST")

	r.HandleFunc("/api/courses/{id}/paper", h.GetMyPaperAPI).Methods("GET")
	r.HandleFunc("/api/courses/{id}/paper", h.SubmitPaperAPI).Methods("POST")

	// --- АДМИН API (JSON для JS фронтенда) ---
	r.HandleFunc("/api/admin/stats", adminMiddleware(adminService.GetStatsAPI)).Methods("GET")
	r.HandleFunc("/api/admin/logs", adminMiddleware(adminService.GetLogsAPI)).Methods("GET")

	r.HandleFunc("/api/admin/courses", adminMiddleware(adminService.HandleCoursesAPI)).Methods("GET", "POST")
	r.HandleFunc("/api/admin/courses/{id}", adminMiddleware(adminService.HandleCourseByIDAPI)).Methods("GET", "PUT", "DELETE")

	r.HandleFunc("/api/admin/chapters", adminMiddleware(adminService.CreateChapterAPI)).Methods("POST")
	r.HandleFunc("/api/admin/chapters/{id}", adminMiddleware(adminService.HandleChapterByIDAPI)).Methods("GET", "PUT", "DELETE")
	r.HandleFunc("/api/admin/chapters/{id}/assessment", adminMiddleware(adminService.UpsertAssessmentAPI)).Methods("PUT")

	r.HandleFunc("/api/admin/enrollments", adminMiddleware(adminService.GetEnrollmentsAPI)).Methods("GET")
	r.HandleFunc("/api/admin/enrollments/{id}", adminMiddleware(adminService.UpdateEnrollmentStatusAPI)).Methods("PUT")

	r.HandleFunc("/api/admin/papers", adminMiddleware(adminService.GetPapersAPI)).Methods("GET")
	r.HandleFunc("/api/admin/papers/{id}", adminMiddleware(adminService.ReviewPaperAPI)).Methods("PUT")

	// ---------------------------
	// 9. Запуск сервера
	// ---------------------------
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	corsHandler := corsMiddleware(r)
	fmt.Printf("Сервер запущен: http://localhost:%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с любого источника (для разработки)
		// В продакшене лучше ставить конкретный домен
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
