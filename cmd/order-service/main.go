package main

import (
	"flag"
	"os"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/db"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/common/middleware"
	"github.com/AutoMercado/AutoMercado/internal/common/server"
	"github.com/AutoMercado/AutoMercado/internal/common/tracing"
	"github.com/AutoMercado/AutoMercado/internal/order"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "configs/order-service.json", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg.Log.Backend, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("failed to init logger: %v", err)
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	gormDB, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Errorf("failed to connect to database: %v", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(&order.Order{}); err != nil {
		log.Errorf("failed to migrate database: %v", err)
		os.Exit(1)
	}

	vehicles := order.NewHTTPVehicleClient(
		cfg.Clients.VehicleServiceURL,
		time.Duration(cfg.Clients.RequestTimeoutSecs)*time.Second,
		log,
	)

	repo := order.NewRepo(gormDB)
	svc := order.NewService(repo, vehicles, log)
	handler := order.NewHandler(svc)

	apiLimiter := middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)

	err = server.Run(cfg, log, func(r *gin.Engine) error {
		r.Use(server.RateLimit(apiLimiter))
		handler.Mount(r, cfg.Auth)
		return nil
	})
	if err != nil {
		log.Errorf("server exited with error: %v", err)
		os.Exit(1)
	}
}
