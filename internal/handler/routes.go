package handler

import (
	"quiz-byte/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts every endpoint on app.
func RegisterRoutes(app *fiber.App, health *HealthHandler, quiz *QuizHandler, upload *UploadHandler, vm *middleware.ValidationMiddleware) {
	app.Get("/", health.Health)

	api := app.Group("/api")
	api.Post("/upload", upload.Upload)
	api.Get("/search", vm.ValidateSearchParams(), quiz.Search)
	api.Post("/ask", quiz.Ask)

	quizGroup := api.Group("/quiz")
	quizGroup.Post("/generate", quiz.GenerateQuiz)
	quizGroup.Get("/ping", quiz.Ping)
	quizGroup.Get("/history", vm.ValidateHistoryParams(), quiz.History)
}
