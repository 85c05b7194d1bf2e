package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"doc-governance/config"
	"doc-governance/handlers"
	"doc-governance/helper"
	"doc-governance/logger"
	"doc-governance/middleware"
	"doc-governance/notify"
	"doc-governance/policy"
	"doc-governance/repositories"
	"doc-governance/services"
	"doc-governance/tracing"
	"doc-governance/workflow"
)

const (
	serviceName    = "doc-governance"
	serviceVersion = "0.1.0"
)

func main() {
	cfg, envLoaded := config.Load()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if !envLoaded {
		log.Info("No .env file found")
	}

	if err := tracing.Init(serviceName, serviceVersion, cfg.TraceFile); err != nil {
		log.Warn("tracing disabled", "error", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	registry, err := policy.LoadRegistry(cfg.PolicyFile)
	if err != nil {
		log.Fatal("Failed to load approval policies", "error", err, "file", cfg.PolicyFile)
	}

	publisher, err := notify.NewRedisPublisher(log, cfg.RedisAddr, cfg.RedisChannel)
	if err != nil {
		log.Warn("task notifications disabled", "error", err)
		publisher = notify.NewNopPublisher()
	}
	defer publisher.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, log)
	projectRepo := repositories.NewProjectRepository(db, log)
	memberRepo := repositories.NewProjectMemberRepository(db, log)
	docTypeRepo := repositories.NewDocumentTypeRepository(db, log)
	documentRepo := repositories.NewDocumentRepository(db, log)
	versionRepo := repositories.NewDocumentVersionRepository(db, log)
	approvalRepo := repositories.NewApprovalRepository(db, log)
	commentRepo := repositories.NewReviewCommentRepository(db, log)
	taskRepo := repositories.NewTaskRepository(db, log)
	auditRepo := repositories.NewAuditLogRepository(db, log)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration, log)
	projectService := services.NewProjectService(db, projectRepo, memberRepo, userRepo, log)
	docTypeService := services.NewDocumentTypeService(docTypeRepo, log)
	documentService := services.NewDocumentService(db, documentRepo, versionRepo, approvalRepo, docTypeRepo, projectService, log)
	taskService := services.NewTaskService(taskRepo, memberRepo, projectService, publisher, log)
	auditService := services.NewAuditService(auditRepo, projectService, log)
	reviewService := services.NewReviewService(services.ReviewServiceDeps{
		DB:           db,
		Engine:       workflow.NewEngine(registry),
		DocumentRepo: documentRepo,
		VersionRepo:  versionRepo,
		ApprovalRepo: approvalRepo,
		CommentRepo:  commentRepo,
		Membership:   services.NewProjectMembership(memberRepo),
		Tasks:        taskService,
		Audit:        auditService,
		Projects:     projectService,
		Log:          log,
	})

	if err := docTypeService.SeedDefaults(context.Background(), append(services.DefaultDocumentTypeCodes(), registry.DocTypes()...)); err != nil {
		log.Fatal("Failed to seed document types", "error", err)
	}

	// Initialize handlers
	httpHelper := helper.NewHTTPHelper()
	middleware.HTTPHelper = httpHelper
	h := &handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService, httpHelper),
		Project:      handlers.NewProjectHandler(projectService, httpHelper),
		DocumentType: handlers.NewDocumentTypeHandler(docTypeService, httpHelper),
		Document:     handlers.NewDocumentHandler(documentService, httpHelper),
		Review:       handlers.NewReviewHandler(reviewService, httpHelper),
		Task:         handlers.NewTaskHandler(taskService, httpHelper),
		Audit:        handlers.NewAuditHandler(auditService, httpHelper),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		middleware.RequestContext(),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.CORSOrigins),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	h.Register(router.Group("/api/v1"), middleware.AuthMiddleware(cfg.JWTSecret))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.AppEnv, "doc_types", registry.DocTypes())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", "error", err)
	}
	log.Info("Server exited")
}
