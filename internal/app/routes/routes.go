package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klassenhub/klassenhub/internal/app/controllers"
	"github.com/klassenhub/klassenhub/internal/middleware"
	"github.com/klassenhub/klassenhub/internal/pkg/realtime"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	pupilController *controllers.PupilController,
	examController *controllers.ExamController,
	correctionController *controllers.CorrectionController,
	reportController *controllers.ReportController,
	chatController *controllers.ChatController,
	realtimeHandler *realtime.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.GetProfile)

		// Realtime change stream
		authenticated.GET("/ws", realtimeHandler.HandleConnection)

		// Pupil routes
		pupils := authenticated.Group("/pupils")
		{
			pupils.POST("", pupilController.CreatePupil)
			pupils.GET("", pupilController.GetAllPupils)
			pupils.GET("/:id", pupilController.GetPupilByID)
			pupils.GET("/:id/reports", reportController.GetReportsByPupil)
			pupils.GET("/:id/reports/export.xlsx", reportController.ExportReports)
		}

		// Exam routes, including the editor, correction and chat surfaces
		exams := authenticated.Group("/exams")
		{
			exams.POST("", examController.CreateExam)
			exams.GET("", examController.GetAllExams)
			exams.POST("/upload", examController.UploadExams)
			exams.GET("/:id", examController.GetExamByID)
			exams.PUT("/:id", examController.UpdateExam)
			exams.DELETE("/:id", examController.DeleteExam)
			exams.GET("/:id/download", examController.DownloadExam)

			exams.GET("/:id/editor", examController.GetEditorState)
			exams.POST("/:id/editor", examController.EditorAction)

			exams.GET("/:id/correction", correctionController.GetCorrection)
			exams.PUT("/:id/correction", correctionController.SaveCorrection)
			exams.GET("/:id/correction/download", correctionController.DownloadCorrection)

			exams.GET("/:id/chat", chatController.GetMessages)
			exams.POST("/:id/chat", chatController.SendMessage)
		}

		// Report routes
		reports := authenticated.Group("/reports")
		{
			reports.POST("", reportController.RequestReport)
			reports.GET("/:id", reportController.GetReportByID)
			reports.PATCH("/:id", reportController.UpdateReport)
			reports.DELETE("/:id", reportController.DeleteReport)
			reports.GET("/:id/download", reportController.DownloadReport)
		}
	}
}
