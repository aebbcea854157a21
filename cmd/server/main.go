package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/voyago/booking-backend/internal/config"
	"github.com/voyago/booking-backend/internal/database"
	"github.com/voyago/booking-backend/internal/gateway"
	"github.com/voyago/booking-backend/internal/handlers"
	"github.com/voyago/booking-backend/internal/middleware"
	"github.com/voyago/booking-backend/internal/outbox"
	"github.com/voyago/booking-backend/internal/services"
	"github.com/voyago/booking-backend/pkg/jwt"
	"github.com/voyago/booking-backend/pkg/sms"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Voyago Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	bookingRepository := database.NewBookingRepository(db)
	inventoryRepository := database.NewInventoryRepository(db)
	userRepository := database.NewUserRepository(db)
	auditRepository := database.NewPaymentAuditRepository(db, logger)

	// Initialize JWT service
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize SMS gateway
	var smsGateway sms.Gateway
	if cfg.SMS.Mode == "production" {
		logger.Info("Initializing MSG91 SMS gateway in production mode")
		smsGateway = sms.NewMSG91Gateway(sms.MSG91Config{
			APIURL:   cfg.SMS.APIURL,
			AuthKey:  cfg.SMS.AuthKey,
			SenderID: cfg.SMS.SenderID,
			Route:    cfg.SMS.Route,
		})
	} else {
		logger.Info("SMS gateway in dev mode (no actual SMS will be sent)")
		smsGateway = sms.NewSimulatedGateway(logger)
	}

	// Initialize payment gateways
	paymentGateways := []gateway.PaymentGateway{
		gateway.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger),
	}
	var stripeGateway *gateway.StripeGateway
	if cfg.Stripe.SecretKey != "" {
		stripeGateway = gateway.NewStripeGateway(
			cfg.Stripe.SecretKey,
			cfg.Stripe.WebhookSecret,
			cfg.Stripe.SuccessURL,
			cfg.Stripe.CancelURL,
			logger,
		)
		paymentGateways = append(paymentGateways, stripeGateway)
		logger.Info("Stripe gateway enabled")
	}

	// Initialize outbox and services
	logger.Info("Initializing services...")
	notificationOutbox := outbox.New(logger, 256, 2)
	notificationOutbox.Start()

	receiptService := services.NewReceiptService(userRepository, logger)
	notifierService := services.NewNotifierService(notificationOutbox, smsGateway, receiptService, logger)
	orchestrator := services.NewBookingOrchestratorService(
		bookingRepository,
		inventoryRepository,
		auditRepository,
		notifierService,
		paymentGateways,
		services.OrchestratorConfig{
			DefaultCurrency: cfg.Booking.DefaultCurrency,
			PendingTTL:      cfg.Booking.PendingTTL,
		},
		logger,
	)
	bookingService := services.NewBookingService(bookingRepository, auditRepository, auditRepository, notifierService, logger)
	expiryService := services.NewExpiryService(bookingRepository, auditRepository, cfg.Booking.PendingTTL, cfg.Booking.SweepSchedule, logger)
	reconciliationService := services.NewReconciliationService(auditRepository, cfg.Booking.ReconcileSchedule, logger)

	// Initialize handlers
	paymentHandler := handlers.NewPaymentHandler(orchestrator, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	inventoryHandler := handlers.NewInventoryHandler(inventoryRepository, logger)
	notificationHandler := handlers.NewNotificationHandler(bookingService, notifierService, receiptService, logger)

	// Start the pending booking sweep and the reconciliation report
	if err := expiryService.Start(); err != nil {
		logger.Fatalf("Failed to start expiry service: %v", err)
	}
	if err := reconciliationService.Start(); err != nil {
		logger.Fatalf("Failed to start reconciliation service: %v", err)
	}

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Inventory browsing (public)
		v1.GET("/hotels", inventoryHandler.ListHotels)
		v1.GET("/hotels/:id", inventoryHandler.GetHotel)
		v1.GET("/flights", inventoryHandler.ListFlights)
		v1.GET("/flights/:id", inventoryHandler.GetFlight)

		// Payment routes
		payments := v1.Group("/payments")
		{
			// Order creation requires auth
			orders := payments.Group("")
			orders.Use(middleware.AuthMiddleware(jwtService, logger))
			{
				orders.POST("/create-order", paymentHandler.CreateHotelOrder)
				orders.POST("/create-flight-order", paymentHandler.CreateFlightOrder)
				orders.POST("/create-bus-order", paymentHandler.CreateBusOrder)
				orders.POST("/create-train-order", paymentHandler.CreateTrainOrder)
			}

			// Verification is authenticated by the signature itself
			payments.POST("/verify", paymentHandler.VerifyHotelPayment)
			payments.POST("/verify-flight", paymentHandler.VerifyFlightPayment)
			payments.POST("/verify-bus", paymentHandler.VerifyBusPayment)
			payments.POST("/verify-train", paymentHandler.VerifyTrainPayment)

			if stripeGateway != nil {
				stripeWebhookHandler := handlers.NewStripeWebhookHandler(stripeGateway, orchestrator, logger)
				payments.POST("/stripe-webhook", stripeWebhookHandler.HandleWebhook)
			}
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.GET("/:id/payments", bookingHandler.GetPaymentTrail)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		// Notification and receipt routes (protected)
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			notifications.POST("/send-sms", notificationHandler.SendSMS)
		}
		receipts := v1.Group("/receipts")
		receipts.Use(middleware.AuthMiddleware(jwtService, logger))
		{
			receipts.POST("/generate", notificationHandler.GenerateReceipt)
			receipts.GET("/:booking_id", notificationHandler.DownloadReceipt)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	expiryService.Stop()
	reconciliationService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// Drain queued notifications after the listener stops accepting work
	notificationOutbox.Stop()

	logger.Info("Server exited successfully")
}
