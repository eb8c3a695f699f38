package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/config"
	"github.com/gemora/gemora/internal/es"
	"github.com/gemora/gemora/internal/httpserver"
	"github.com/gemora/gemora/internal/middleware"
	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/mykafka"
	"github.com/gemora/gemora/internal/payu"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/internal/service"
	"github.com/gemora/gemora/pkg/db"
	"github.com/gemora/gemora/pkg/logging"
	loggingmw "github.com/gemora/gemora/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Product{},
		&models.Order{},
		&models.Newsletter{},
	); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: gormDB}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	authSvc := &service.AuthService{
		Repo:          gormRepo,
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
	}

	gateway := payu.NewClient(
		cfg.PayUAuthorizationURL,
		cfg.PayUOrderURL,
		cfg.PayUClientID,
		cfg.PayUClientSecret,
	)

	orderSvc := &service.OrderService{
		Repo:    gormRepo,
		Gateway: gateway,
		Payment: service.PaymentConfig{
			ContinueURL:   cfg.PayUContinueURL,
			CustomerIP:    cfg.PayUCustomerIP,
			MerchantPosID: cfg.PayUMerchantPosID,
			CurrencyCode:  cfg.PayUCurrencyCode,
		},
	}

	deps := &httpserver.Deps{
		AuthHandler:       &httpserver.AuthHTTP{Svc: authSvc, Producer: producer},
		OrderHandler:      &httpserver.OrderHTTP{Svc: orderSvc, Producer: producer},
		NewsletterHandler: &httpserver.NewsletterHTTP{Svc: &service.NewsletterService{Repo: gormRepo}},
		UserHandler:       &httpserver.UserHTTP{Svc: &service.UserService{Repo: gormRepo}},
		ProductHandler:    &httpserver.ProductHTTP{Repo: gormRepo, Index: cfg.ESIndex, Producer: producer},
		SearchHandler:     &httpserver.SearchHTTP{Index: cfg.ESIndex},
		AuthMw:            middleware.NewAuthMiddleware(gormRepo, cfg.JWTSecret),
	}

	if cfg.ESURL != "" {
		client, err := es.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("es init error: %v", err)
		}
		deps.ProductHandler.ES = client
		deps.SearchHandler.ES = client
	}

	bootCtx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 10*time.Second)
	_, err = authSvc.BootstrapAdmin(bootCtx, cfg.AdminFirstName, cfg.AdminLastName, cfg.AdminEmail, cfg.AdminPassword)
	cancel()
	if err != nil {
		log.Fatalf("admin bootstrap error: %v", err)
	}

	e := echo.New()
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, deps)

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
