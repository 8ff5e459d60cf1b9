package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"boxoffice/internal/auth"
	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/database/migrations"
	eventsvc "boxoffice/internal/events"
	eventdb "boxoffice/internal/events/db"
	"boxoffice/internal/events/event_api"
	"boxoffice/internal/kafka"
	"boxoffice/internal/logger"
	ticketdb "boxoffice/internal/tickets/db"
	"boxoffice/internal/tickets/pdf"
	"boxoffice/internal/tickets/qr"
	ticketredis "boxoffice/internal/tickets/redis"
	tickets "boxoffice/internal/tickets/service"
	"boxoffice/internal/tickets/ticket_api"
)

func main() {
	_ = godotenv.Load() // loads .env if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect: %v", err))
	}
	defer bunDB.Close()
	log.Info("DATABASE", fmt.Sprintf("Connected (%s)", strings.ToUpper(cfg.Database.Engine)))

	if cfg.Database.AutoMigrate && strings.EqualFold(cfg.Database.Engine, "POSTGRES") {
		runner := migrations.NewRunner(bunDB, migrations.Options{
			MigrationsDir: cfg.Database.MigrationsDir,
			SeedData:      cfg.Database.SeedDemoData,
		})
		if err := runner.Run(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	qrGen := qr.NewGenerator(cfg.Tickets.QRURLTemplate)

	var locker tickets.EventLocker
	if cfg.Redis.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("REDIS", fmt.Sprintf("Failed to connect: %v", err))
		}
		defer redisClient.Close()
		locker = ticketredis.NewLocker(redisClient, cfg.Tickets.LockTTL)
		log.Info("REDIS", "Purchase lock enabled")
	} else {
		log.Warn("REDIS", "Disabled; relying on row locks only")
	}

	var publisher tickets.BatchPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", fmt.Sprintf("Publishing to %s", cfg.Kafka.Topic))
	}

	ticketService := tickets.NewTicketService(&ticketdb.DB{Bun: bunDB}, locker, publisher, qrGen)
	ticketHandler := &ticket_api.Handler{
		Tickets: ticketService,
		QR:      qrGen,
		PDF:     pdf.NewGenerator(cfg.Tickets.PDFFontPath),
		Logger:  log,
	}

	eventService := eventsvc.NewEventService(&eventdb.DB{Bun: bunDB})
	eventHandler := &event_api.Handler{Events: eventService}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	eventHandler.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret))
		ticketHandler.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			eventHandler.RegisterAdmin(r)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("🚀 Box office listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Shutdown complete")
}
