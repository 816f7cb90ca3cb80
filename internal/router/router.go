package router

import (
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/config"
	"github.com/gabrielle-jeco/personal-performance-app/internal/handler"
	"github.com/gabrielle-jeco/personal-performance-app/internal/infra"
	"github.com/gabrielle-jeco/personal-performance-app/internal/middleware"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, evidence infra.EvidenceStore, external infra.ExternalDataProvider) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	sessionRepo := repository.NewSessionRepository(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	scope := service.NewScopeResolver(userRepo, locationRepo)
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg)
	taskSvc := service.NewTaskService(taskRepo, scope, evidence, cfg.EvidenceMaxSizeMB)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, scope)
	dashboardSvc := service.NewDashboardService(userRepo, locationRepo, taskRepo, evaluationRepo, scope, external)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	tasksH := handler.NewTasksHandler(taskSvc, evidence)
	evaluationsH := handler.NewEvaluationsHandler(evaluationSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.POST("/v1/auth/login", middleware.LoginRateLimiter(), authH.Login)

	// Protected routes
	sessionMW := middleware.SessionAuth(authSvc)
	v1 := r.Group("/v1", sessionMW)
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		// Dashboards — role-gated per endpoint
		v1.GET("/manager/supervisors", middleware.RequireRole(model.RoleManager), dashboardH.ManagerSupervisors)
		v1.GET("/supervisor/crews", middleware.RequireRole(model.RoleSupervisor), dashboardH.SupervisorCrews)
		v1.GET("/supervisor/stats", middleware.RequireRole(model.RoleSupervisor), dashboardH.SupervisorStats)

		// Tasks — visibility is enforced by the scope resolver, so list and
		// evidence routes stay open to every authenticated role
		v1.GET("/users/:id/tasks", tasksH.List)
		v1.POST("/tasks", middleware.RequireRole(model.RoleManager, model.RoleSupervisor), tasksH.Create)
		v1.PATCH("/tasks/:id/status", tasksH.UpdateStatus)
		v1.DELETE("/tasks/:id", middleware.RequireRole(model.RoleManager, model.RoleSupervisor), tasksH.Delete)
		v1.POST("/tasks/:id/evidence", tasksH.AttachEvidence)
		v1.DELETE("/tasks/:id/evidence", tasksH.RemoveEvidence)
		v1.GET("/evidence/:key", tasksH.DownloadEvidence)

		// Evaluations — only roles that manage people may score, but the
		// period check is open: the scope resolver lets crew read their own
		// record and nobody else's
		v1.POST("/evaluations", middleware.RequireRole(model.RoleManager, model.RoleSupervisor), evaluationsH.Submit)
		v1.GET("/evaluations/check/:id", evaluationsH.CheckPeriod)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
