package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hackathon-platform/config"
	"hackathon-platform/handlers"
	"hackathon-platform/metrics"
	"hackathon-platform/middleware"
	"hackathon-platform/models"
	"hackathon-platform/search"
	"hackathon-platform/services"
	"hackathon-platform/stores"
	"hackathon-platform/utils"
	"hackathon-platform/workers"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer utils.Logger.Sync()

	if err := utils.InitR2(); err != nil {
		utils.Sugar.Warnw("R2 client not available, attachment uploads disabled", "error", err)
	}

	if cfg.DatabaseURL == "" {
		utils.Sugar.Fatal("DATABASE_URL must be set")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		utils.Sugar.Fatalw("database connection failed", "error", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Hackathon{},
		&models.Challenge{},
		&models.Criterion{},
		&models.JudgeAssignment{},
		&models.Team{},
		&models.TeamMember{},
		&models.Submission{},
		&models.Score{},
		&models.GamificationProfile{},
		&models.XpEvent{},
		&models.Badge{},
		&models.ProfileBadge{},
		&models.Notification{},
		&models.OutboxEvent{},
		&models.DeadLetter{},
	); err != nil {
		utils.Sugar.Fatalw("database migration failed", "error", err)
	}
	seedBadges(db)

	metrics.Register()

	rdb := utils.GetRedis()
	esClient, err := search.Connect()
	if err != nil {
		utils.Sugar.Fatalw("elasticsearch connection failed", "error", err)
	}

	notificationService := services.NewNotificationService(db, rdb)

	gamificationService := services.NewGamificationService(stores.NewGormGamificationStore(db), notificationService)
	judgingService := services.NewJudgingService(stores.NewGormJudgingStore(db), notificationService)

	authService := services.NewAuthService(db, gamificationService)
	hackathonService := services.NewHackathonService(db, gamificationService)
	teamService := services.NewTeamService(db, gamificationService)
	submissionService := services.NewSubmissionService(db, gamificationService)
	presenceService := services.NewPresenceService(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := &workers.SearchSyncWorker{DB: db, ES: esClient}
	go syncWorker.Run(ctx)
	go syncWorker.RetryDLQ(ctx)

	warmer := &workers.LeaderboardWarmer{Gamification: gamificationService, Redis: rdb}
	go warmer.Run(ctx)

	hackathonService.StartLifecycleScheduler()

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
		AppName:   "hackathon-platform",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RateLimitMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.SetupAuthRoutes(app, authService, presenceService)
	handlers.SetupHackathonRoutes(app, hackathonService)
	handlers.SetupTeamRoutes(app, teamService)
	handlers.SetupSubmissionRoutes(app, submissionService)
	handlers.SetupJudgingRoutes(app, judgingService, hackathonService, submissionService)
	handlers.SetupGamificationRoutes(app, gamificationService, rdb)
	handlers.SetupNotificationRoutes(app, notificationService)
	handlers.SetupSearchRoutes(app, esClient)

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			utils.Sugar.Fatalw("server stopped", "error", err)
		}
	}()
	utils.Sugar.Infow("server started", "port", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Sugar.Info("shutting down")
	cancel()
	if err := app.Shutdown(); err != nil {
		utils.Sugar.Errorw("shutdown error", "error", err)
	}
}

// seedBadges upserts the default catalog on slug so redeploys are safe.
func seedBadges(db *gorm.DB) {
	for _, b := range models.DefaultBadges {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon_url", "xp_required", "rarity"}),
		}).Create(&models.Badge{
			Slug:        b.Slug,
			Name:        b.Name,
			Description: b.Description,
			IconURL:     b.IconURL,
			XPRequired:  b.XPRequired,
			Rarity:      b.Rarity,
		}).Error
		if err != nil {
			utils.Sugar.Warnw("badge seed failed", "slug", b.Slug, "error", err)
		}
	}
}
