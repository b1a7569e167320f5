package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/studio-pms-api/internal/handler"
	"github.com/noah-isme/studio-pms-api/internal/middleware"
	"github.com/noah-isme/studio-pms-api/internal/models"
	"github.com/noah-isme/studio-pms-api/internal/repository"
	"github.com/noah-isme/studio-pms-api/internal/service"
	"github.com/noah-isme/studio-pms-api/pkg/config"
	"github.com/noah-isme/studio-pms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studio-pms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studio-pms-api/pkg/middleware/requestid"
)

type deps struct {
	auth        *service.AuthService
	metrics     *service.MetricsService
	calendar    *handler.CalendarHandler
	status      *handler.CourseStatusHandler
	attendance  *handler.AttendanceHandler
	courses     *handler.CourseHandler
	enrollments *handler.EnrollmentHandler
	health      *handler.MetricsHandler
}

func buildDeps(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, metrics *service.MetricsService, cacheSvc *service.CacheService, invalidator *service.ViewInvalidator, checks map[string]handler.Pinger) deps {
	loc := cfg.Attendance.Location()
	validate := service.NewValidator()

	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	statusRepo := repository.NewCourseStatusRepository(db)

	attendanceSvc := service.NewAttendanceService(service.AttendanceServiceParams{
		Store:       attendanceRepo,
		Courses:     courseRepo,
		Students:    studentRepo,
		Invalidator: invalidator,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
		Config:      service.AttendanceServiceConfig{Location: loc, MarkedBy: cfg.Attendance.MarkedBy},
	})
	calendarSvc := service.NewCalendarService(studentRepo, enrollmentRepo, attendanceRepo, cacheSvc, logr)
	statusSvc := service.NewCourseStatusService(service.CourseStatusServiceParams{
		Roster:     statusRepo,
		Attendance: attendanceRepo,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Logger:     logr,
		Config:     service.CourseStatusConfig{Location: loc, LookbackDays: cfg.Attendance.LookbackDays, CacheTTL: cfg.Cache.TTL},
	})
	courseSvc := service.NewCourseService(courseRepo, invalidator, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, invalidator, validate, logr, loc)

	return deps{
		auth: service.NewAuthService(logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		metrics:     metrics,
		calendar:    handler.NewCalendarHandler(calendarSvc, loc),
		status:      handler.NewCourseStatusHandler(statusSvc, validate),
		attendance:  handler.NewAttendanceHandler(attendanceSvc),
		courses:     handler.NewCourseHandler(courseSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		health:      handler.NewMetricsHandler(metrics, checks),
	}
}

func newRouter(cfg *config.Config, logr *zap.Logger, d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics, "/health", "/ready", "/metrics"))

	r.GET("/health", d.health.Health)
	r.GET("/ready", d.health.Ready)
	r.GET("/metrics", d.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		r.GET("/debug/metrics", d.health.Snapshot)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(d.auth), middleware.WithResponseMeta())

	api.GET("/students/:id/attendance-calendar", d.calendar.Get)
	api.GET("/students/:id/enrollments", d.enrollments.ListByStudent)

	api.GET("/course-status", d.status.List)
	api.GET("/course-status/export", d.status.Export)

	api.POST("/attendance", middleware.Audit(logr, "mark_attendance", "attendance"), d.attendance.Mark)
	api.DELETE("/attendance", middleware.Audit(logr, "unmark_attendance", "attendance"), d.attendance.Unmark)
	api.GET("/attendance/today", d.attendance.Today)

	api.GET("/courses/:id", d.courses.Get)
	api.PUT("/courses/:id/schedule",
		middleware.RequireRoles(models.RoleAdmin),
		middleware.Audit(logr, "update_schedule", "course"),
		d.courses.UpdateSchedule,
	)

	api.POST("/enrollments", middleware.Audit(logr, "enroll", "enrollment"), d.enrollments.Enroll)
	api.PUT("/enrollments/:id", middleware.Audit(logr, "update_enrollment", "enrollment"), d.enrollments.Update)
	api.POST("/enrollments/:id/close", middleware.Audit(logr, "close_enrollment", "enrollment"), d.enrollments.Close)

	return r
}
