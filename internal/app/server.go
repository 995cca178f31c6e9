package app

import (
	"context"
	"os"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rankboard/internal/apperr"
	"rankboard/internal/audit"
	"rankboard/internal/config"
	"rankboard/internal/db"
	"rankboard/internal/earnings"
	"rankboard/internal/event"
	"rankboard/internal/jobs"
	"rankboard/internal/logger"
	"rankboard/internal/monitoring"
	"rankboard/internal/player"
	"rankboard/internal/prizepool"
	"rankboard/internal/ranking"
	"rankboard/internal/rankstore"
	"rankboard/internal/security"
	"rankboard/internal/settlement"
)

type Server struct {
	app  *fiber.App
	jobs *jobs.Manager
	log  *zap.Logger
}

// NewServer constructs every store client and service explicitly and wires
// them together; nothing hangs off package globals.
func NewServer() (*Server, error) {
	cfg := config.Load()
	log := logger.New()

	database, err := db.Init(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var ranks rankstore.Store
	if cfg.RankStore == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ranks = rankstore.NewRedis(client, "")
	} else {
		ranks, err = rankstore.NewMemory(cfg.RankAOFPath)
		if err != nil {
			return nil, err
		}
	}

	monitoring.Init()
	bus := event.NewBus()

	players := player.New(database)
	pool := prizepool.New(database)
	earningsService := earnings.New(database, players, ranks, pool, bus, log,
		cfg.ContributionRate, cfg.AllowCorrections)
	engine := ranking.New(players, ranks, bus, log, cfg.TopN)
	settleJob := settlement.New(database, ranks, pool, bus, log, cfg.SettleEvery)

	audit.New(database).Listen(bus)

	manager := jobs.New()
	manager.Register(settleJob)

	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		monitoring.HttpRequests.WithLabelValues(c.Method(), c.Path()).Inc()
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", security.APIKeyGuard())
	player.RegisterRoutes(api, players, ranks, bus)
	earnings.RegisterRoutes(api, earningsService)
	ranking.RegisterRoutes(api, engine)

	admin := app.Group("/admin", security.AdminGuard())
	admin.Post("/settle", func(c *fiber.Ctx) error {
		if err := settleJob.Run(c.Context()); err != nil {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "settled"})
	})

	return &Server{app: app, jobs: manager, log: log}, nil
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.jobs.Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	s.log.Info("listening", zap.String("port", port))
	return s.app.Listen(":" + port)
}
