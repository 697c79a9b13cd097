package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-showtimes/internal/basket"
	"github.com/iliyamo/cinema-showtimes/internal/clock"
	"github.com/iliyamo/cinema-showtimes/internal/config"
	"github.com/iliyamo/cinema-showtimes/internal/database"
	"github.com/iliyamo/cinema-showtimes/internal/handler"
	"github.com/iliyamo/cinema-showtimes/internal/logger"
	"github.com/iliyamo/cinema-showtimes/internal/middleware"
	"github.com/iliyamo/cinema-showtimes/internal/queue"
	"github.com/iliyamo/cinema-showtimes/internal/repository"
	"github.com/iliyamo/cinema-showtimes/internal/router"
	"github.com/iliyamo/cinema-showtimes/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using process environment")
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
	}

	basketCfg := config.LoadBasketConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	var store basket.Store
	if rdb != nil {
		defer rdb.Close()
		store = basket.NewRedisStore(rdb, basketCfg.Prefix)
	} else {
		log.Warn("baskets kept in process memory")
		store = basket.NewMemoryStore()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher service.EventPublisher
	if cfg.PurchaseEventsEnabled {
		publisher = queue.NewPublisher(cfg.RabbitURL, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.PurchaseLogDir, log)
		go consumer.Run(ctx)
	}

	// Repositories.
	halls := repository.NewHallRepo(db)
	seats := repository.NewSeatRepo(db)
	categories := repository.NewCategoryRepo(db)
	films := repository.NewFilmRepo(db)
	templates := repository.NewTemplateRepo(db)
	showings := repository.NewShowingRepo(db)
	prices := repository.NewPriceRepo(db)
	tickets := repository.NewTicketRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Services.
	opts := []service.Option{
		service.WithClock(clock.System{Loc: cfg.Location}),
		service.WithLogger(log),
		service.WithBasketTTL(basketCfg.TTL),
		service.WithTemplateSpan(cfg.TemplateSpanDays),
		service.WithShowingDefaults(cfg.DefaultAds, cfg.DefaultCleaning),
	}
	inventory := service.NewInventory(halls, seats, categories, templates, opts...)
	scheduling := service.NewScheduling(films, halls, templates, showings, repository.NewScheduleRepo(db), opts...)
	activation := service.NewActivation(showings, seats, prices, categories, opts...)
	baskets := service.NewBaskets(store, seats, showings, prices, tickets, opts...)
	purchases := service.NewPurchases(baskets, repository.NewPurchaseRepo(db), tickets, users, publisher, opts...)
	board := service.NewBoard(showings, opts...)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, purchases), cfg.JWTSecret, rateLimit)
	router.RegisterPublic(e, handler.NewPublicHandler(board, seats), cache)
	router.RegisterAdmin(e, handler.NewAdminHandler(films, categories, halls, inventory, scheduling, activation), cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewCustomerHandler(baskets, purchases), cfg.JWTSecret,
		middleware.BasketSession(basketCfg), rateLimit)

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "tz": cfg.Location.String()}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
