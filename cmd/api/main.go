package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Deco-Team/efurniture-server/internal/client"
	"github.com/Deco-Team/efurniture-server/internal/config"
	"github.com/Deco-Team/efurniture-server/internal/logging"
	"github.com/Deco-Team/efurniture-server/internal/repository"
	"github.com/Deco-Team/efurniture-server/internal/server"
	"github.com/Deco-Team/efurniture-server/internal/service"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.MustNewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Environment.Name)
	defer logger.Sync()

	db := client.InitDBClient(cfg.DatabaseURL)

	momoClient := client.NewMomoClient(&cfg.Momo, cfg.BaseURL+"/api/payment/momo/ipn")
	zaloPayClient := client.NewZaloPayClient(&cfg.ZaloPay, cfg.BaseURL+"/api/payment/zalopay/callback")
	mailer := client.NewSMTPMailer(&cfg.SMTP)

	cartRepo := repository.NewCartRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	productRepo := repository.NewProductRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	cartService := service.NewCartService(db, cartRepo, productRepo)
	productService := service.NewProductService(productRepo)
	paymentService := service.NewPaymentService(
		db,
		[]client.PaymentGateway{momoClient, zaloPayClient},
		orderRepo, paymentRepo, productRepo, cartRepo,
		mailer, logger,
	)
	orderService := service.NewOrderService(
		db,
		orderRepo, cartRepo, productRepo, paymentRepo, staffRepo, taskRepo,
		paymentService, mailer, logger,
	)
	staffService := service.NewStaffService(staffRepo, mailer, logger)
	taskService := service.NewTaskService(taskRepo)
	customerService := service.NewCustomerService(
		customerRepo, cfg.JWT.AccessSecret,
		time.Duration(cfg.JWT.AccessExpiration)*time.Second,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(
		cartService, orderService, paymentService,
		productService, staffService, taskService, customerService,
		cfg.JWT.AccessSecret, logger,
	)

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
