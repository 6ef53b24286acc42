package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/farmgate/bidEngine/internal/auction/application"
	auctionhttp "github.com/farmgate/bidEngine/internal/auction/infra/http"
	"github.com/farmgate/bidEngine/internal/auction/infra/notify"
	auctionpg "github.com/farmgate/bidEngine/internal/auction/infra/repository/postgres"
	auctionws "github.com/farmgate/bidEngine/internal/auction/infra/websocket"
	productpg "github.com/farmgate/bidEngine/internal/product/infra/repository/postgres"
	"github.com/farmgate/bidEngine/internal/shared/clock"
	"github.com/farmgate/bidEngine/internal/shared/config"
	"github.com/farmgate/bidEngine/internal/shared/db"
	"github.com/farmgate/bidEngine/internal/shared/db/migrations"
	"github.com/farmgate/bidEngine/internal/shared/httpserver"
	"github.com/farmgate/bidEngine/internal/shared/logger"
	sharedws "github.com/farmgate/bidEngine/internal/shared/websocket"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting auction engine...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg.PostgresDSN()); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	hub := sharedws.NewHub()
	go hub.Run(ctx)

	auctionRepo := auctionpg.NewAuctionRepository(pool)
	bidRepo := auctionpg.NewBidRepository(pool)
	productRepo := productpg.NewProductRepository(pool)
	txm := auctionpg.NewTxManager(pool)
	sink := notify.NewHubSink(hub)

	service := application.NewAuctionService(
		auctionRepo,
		bidRepo,
		productRepo,
		txm,
		clock.SystemClock{},
		cfg.AuctionPolicy(),
		sink,
	)

	wsHandler := auctionws.NewAuctionWSHandler(service, hub)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer()
	auctionhttp.NewAuctionHandler(service).RegisterRoutes(server.App())
	auctionhttp.RegisterWebSocketRoutes(ctx, server.App(), hub, wsHandler, service)

	if err := server.Start(fmt.Sprintf(":%d", cfg.HttpServerPort)); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
