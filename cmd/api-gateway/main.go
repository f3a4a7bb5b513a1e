package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campushq/campus-api/api/swagger"
	"github.com/campushq/campus-api/internal/handler"
	"github.com/campushq/campus-api/internal/notifier"
	"github.com/campushq/campus-api/internal/repository"
	"github.com/campushq/campus-api/internal/service"
	"github.com/campushq/campus-api/pkg/cache"
	"github.com/campushq/campus-api/pkg/config"
	"github.com/campushq/campus-api/pkg/database"
	"github.com/campushq/campus-api/pkg/docstore"
	"github.com/campushq/campus-api/pkg/logger"
	corsmiddleware "github.com/campushq/campus-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/campus-api/pkg/middleware/requestid"
	"github.com/campushq/campus-api/pkg/storage"
)

// @title CampusHQ API
// @version 1.0.0
// @description Multi-tenant campus management backend: scheduling, classes, auth, queries, push
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	mongoClient, mongoDB, err := docstore.NewMongo(ctx, cfg.DocStore)
	if err != nil {
		logr.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoClient.Disconnect(disconnectCtx) //nolint:errcheck
	}()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()

	// Repositories.
	users := repository.NewUserRepository(db)
	departments := repository.NewDepartmentRepository(db)
	sections := repository.NewSectionRepository(db)
	courses := repository.NewCourseRepository(db)
	rooms := repository.NewRoomRepository(db)
	timeslots := repository.NewTimeslotRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	students := repository.NewStudentRepository(db)
	classes := repository.NewClassRepository(db)
	schedules := repository.NewScheduleRepository(db)
	queries := repository.NewQueryRepository(db)
	resources := repository.NewResourceRepository(db)
	profiles := repository.NewProfileRepository(mongoDB)
	subscriptions := repository.NewSubscriptionRepository(mongoDB)
	denylist := repository.NewDenylistRepository(redisClient)

	cacheClient := redisClient
	if !cfg.Cache.Enabled {
		cacheClient = nil
	}
	cacheRepo := repository.NewCacheRepository(cacheClient, logr)

	files, err := storage.NewLocalStorage(cfg.Resources.StorageDir)
	if err != nil {
		logr.Fatal("failed to init resource storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Resources.SignedURLSecret, cfg.Resources.SignedURLTTL)

	// Services.
	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(users, profiles, denylist, validate, logr, service.AuthConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessExpiry:  cfg.JWT.AccessExpiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
		Issuer:        cfg.JWT.Issuer,
	})

	scheduleService := service.NewScheduleService(courses, rooms, facultyRepo, sections, schedules, classes, db, cacheRepo, cfg.Cache.ViewsTTL, validate, logr)
	generatorService := service.NewScheduleGeneratorService(courses, rooms, facultyRepo, sections, schedules, classes, timeslots, db, validate, logr)
	classService := service.NewClassService(classes, students, facultyRepo, courses, rooms, sections, timeslots, nil, logr)
	exportService := service.NewExportService(scheduleService, logr)

	sender := notifier.NewInstrumentedSender(
		notifier.NewWebPushSender(10*time.Second, 24*time.Hour, logr),
		metricsService,
	)
	pushService := service.NewPushService(subscriptions, sender, service.PushConfig{
		MediumInterval: cfg.Push.MediumInterval,
		LowInterval:    cfg.Push.LowInterval,
		MediumBatch:    cfg.Push.MediumBatch,
		LowBatch:       cfg.Push.LowBatch,
	}, cfg.Push.Workers, logr)

	queryService := service.NewQueryService(queries, pushService, validate, logr)
	departmentService := service.NewDepartmentService(departments, sections, validate, logr)
	courseService := service.NewCourseService(courses, logr)
	profileService := service.NewProfileService(profiles, subscriptions, validate, logr)
	resourceService := service.NewResourceService(resources, files, signer, cfg.Resources.MaxFileSizeBytes, logr)

	if cfg.Push.Enabled {
		pushService.Start(ctx)
	}

	// Background class-expiry sweep. Reads stay pure; only this flips
	// is_active on ended classes.
	sweeper := cron.New()
	if cfg.Sweeper.Enabled {
		_, err := sweeper.AddFunc(cfg.Sweeper.Spec, func() {
			sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			started := time.Now()
			expired, err := classService.SweepExpired(sweepCtx)
			if err != nil {
				logr.Error("class sweep failed", zap.Error(err))
				return
			}
			metricsService.RecordSweep(expired, time.Since(started))
			if expired > 0 {
				logr.Info("class sweep done", zap.Int64("expired", expired))
			}
		})
		if err != nil {
			logr.Fatal("failed to schedule sweeper", zap.Error(err))
		}
		sweeper.Start()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(reqidmiddleware.Middleware())
	engine.Use(logger.GinMiddleware(logr))
	engine.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	if cfg.Env != config.EnvProduction {
		engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router := &handler.Router{
		Auth:        handler.NewAuthHandler(authService),
		Schedule:    handler.NewScheduleHandler(scheduleService, generatorService, exportService, metricsService),
		Class:       handler.NewClassHandler(classService),
		Department:  handler.NewDepartmentHandler(departmentService),
		Course:      handler.NewCourseHandler(courseService),
		Query:       handler.NewQueryHandler(queryService),
		Profile:     handler.NewProfileHandler(profileService),
		Resource:    handler.NewResourceHandler(resourceService),
		Push:        handler.NewPushHandler(pushService, metricsService),
		AuthService: authService,
		Metrics:     metricsService,

		GeneratorEnabled: cfg.Scheduler.GeneratorEnabled,
	}
	router.Register(engine)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}

	if cfg.Sweeper.Enabled {
		<-sweeper.Stop().Done()
	}
	if cfg.Push.Enabled {
		// The dispatcher drains its lanes on context cancel; Stop waits for
		// that drain and for in-flight deliveries.
		pushService.Stop()
	}

	logr.Info("bye")
}
