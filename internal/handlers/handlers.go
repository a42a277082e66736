package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SoberTrack/internal/config"
	"SoberTrack/internal/middleware"
	"SoberTrack/internal/service"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	recordService *service.RecordService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	recordHandler := NewRecordHandler(recordService, logger)

	// связность проверяется лёгким HEAD без аутентификации
	r.Head("/api/health", health)
	r.Get("/api/health", health)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)
	r.Post("/api/user/logout", userHandler.Logout)

	// Record routes
	r.Post("/api/journal_entries/upsert", recordHandler.UpsertJournal)
	r.Delete("/api/journal_entries/{id}", recordHandler.Delete("journal_entries"))
	r.Post("/api/step_answers/upsert", recordHandler.UpsertStep)
	r.Delete("/api/step_answers/{id}", recordHandler.Delete("step_answers"))
	r.Post("/api/check_ins/upsert", recordHandler.UpsertCheckIn)
	r.Delete("/api/check_ins/{id}", recordHandler.Delete("check_ins"))

	// связи спонсорства пока живут только на устройстве
	r.Post("/api/sponsor_connections/upsert", recordHandler.SponsorUnimplemented)
	r.Delete("/api/sponsor_connections/{id}", recordHandler.SponsorUnimplemented)

	return &Handler{Router: r}
}

func health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
