package routes

import (
	"github.com/coder7564-glitch/Learning-Hub/backend/config"
	"github.com/coder7564-glitch/Learning-Hub/backend/controllers"
	"github.com/coder7564-glitch/Learning-Hub/backend/drive"
	"github.com/coder7564-glitch/Learning-Hub/backend/middleware"
	"github.com/coder7564-glitch/Learning-Hub/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	progressService := services.NewProgressService(db, cfg.WatchCountEverySession)
	quizService := services.NewQuizService(db, progressService)
	driveClient := drive.NewClient(cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/google", authController.GoogleLogin)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(db, cfg)
	adminMiddleware := middleware.AdminMiddleware()

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/admin/students", authMiddleware, adminMiddleware, userController.ListStudents)

	// Catalog routes
	coursesController := controllers.NewCoursesController(db, cfg)
	app.Get("/api/categories", coursesController.ListCategories)
	app.Get("/api/courses/featured", coursesController.FeaturedCourses)

	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Course content routes
	contentController := controllers.NewContentController(db, cfg)
	courses.Get("/:id/modules", contentController.ListModules)
	courses.Get("/:id/resources", contentController.ListResources)

	// Enrollment routes
	enrollmentsController := controllers.NewEnrollmentsController(db, cfg)
	app.Get("/api/my/courses", authMiddleware, enrollmentsController.MyCourses)
	app.Get("/api/enrollments", authMiddleware, enrollmentsController.ListEnrollments)
	courses.Post("/:id/enroll", enrollmentsController.Enroll)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(db, cfg, quizService)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/", quizzesController.ListQuizzes)
	quizzes.Get("/:id", quizzesController.GetQuizDetails)

	attempts := app.Group("/api/attempts", authMiddleware)
	attempts.Post("/", quizzesController.StartAttempt)
	attempts.Get("/", quizzesController.MyAttempts)
	attempts.Get("/:id", quizzesController.GetAttemptDetails)
	attempts.Post("/:id/submit", quizzesController.SubmitAttempt)

	// Progress and certificate routes
	progressController := controllers.NewProgressController(db, cfg, progressService)
	app.Get("/api/my/progress", authMiddleware, progressController.MyProgress)
	app.Get("/api/my/certificates", authMiddleware, progressController.MyCertificates)
	app.Get("/api/certificates/verify/:number", progressController.VerifyCertificate)

	videos := app.Group("/api/videos", authMiddleware)
	videos.Post("/:id/progress", progressController.RecordVideoProgress)

	courses.Get("/:id/progress", progressController.GetCourseProgress)
	courses.Get("/:id/videos/progress", progressController.MyVideoProgress)
	courses.Post("/:id/certificate", progressController.IssueCertificate)

	// Drive routes
	driveController := controllers.NewDriveController(db, cfg, driveClient)
	app.Get("/api/drive/files", authMiddleware, adminMiddleware, driveController.ListFiles)

	// Admin routes for the catalog
	adminCategories := app.Group("/api/admin/categories", authMiddleware, adminMiddleware)
	adminCategories.Post("/", coursesController.CreateCategory)
	adminCategories.Put("/:id", coursesController.UpdateCategory)
	adminCategories.Delete("/:id", coursesController.DeleteCategory)

	adminCourses := app.Group("/api/admin/courses", authMiddleware, adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Put("/:id", coursesController.UpdateCourse)
	adminCourses.Delete("/:id", coursesController.DeleteCourse)
	adminCourses.Post("/:id/modules", contentController.AddModule)
	adminCourses.Put("/:id/modules/:moduleId", contentController.UpdateModule)
	adminCourses.Delete("/:id/modules/:moduleId", contentController.DeleteModule)
	adminCourses.Post("/:id/resources", contentController.AddResource)
	adminCourses.Delete("/:id/resources/:resourceId", contentController.DeleteResource)
	reportsController := controllers.NewReportsController(db, cfg)
	adminCourses.Get("/:id/report", reportsController.CourseProgressReport)

	adminModules := app.Group("/api/admin/modules", authMiddleware, adminMiddleware)
	adminModules.Post("/:moduleId/videos", contentController.AddVideo)
	adminModules.Put("/:moduleId/videos/:videoId", contentController.UpdateVideo)
	adminModules.Delete("/:moduleId/videos/:videoId", contentController.DeleteVideo)

	// Admin routes for quizzes
	adminQuizzes := app.Group("/api/admin/quizzes", authMiddleware, adminMiddleware)
	adminQuizzes.Post("/", quizzesController.CreateQuiz)
	adminQuizzes.Put("/:id", quizzesController.UpdateQuiz)
	adminQuizzes.Delete("/:id", quizzesController.DeleteQuiz)
	adminQuizzes.Post("/:id/questions", quizzesController.AddQuestion)
	adminQuizzes.Put("/:id/questions/:questionId", quizzesController.UpdateQuestion)
	adminQuizzes.Delete("/:id/questions/:questionId", quizzesController.DeleteQuestion)
	adminQuizzes.Get("/:id/statistics", quizzesController.GetQuizStatistics)

	app.Get("/api/admin/attempts", authMiddleware, adminMiddleware, quizzesController.AllAttempts)

	// Admin routes for enrollments and reports
	adminEnrollments := app.Group("/api/admin/enrollments", authMiddleware, adminMiddleware)
	adminEnrollments.Post("/bulk", enrollmentsController.BulkEnroll)
	adminEnrollments.Put("/:id", enrollmentsController.UpdateEnrollment)
	adminEnrollments.Post("/:id/complete", enrollmentsController.MarkComplete)

	app.Get("/api/admin/reports/students", authMiddleware, adminMiddleware, reportsController.StudentProgressReport)
}
