package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spicy-biryani/internal/chatbot"
	"spicy-biryani/internal/config"
	"spicy-biryani/internal/conversation"
	"spicy-biryani/internal/db"
	"spicy-biryani/internal/email"
	apihttp "spicy-biryani/internal/http"
	"spicy-biryani/internal/repository"
	"spicy-biryani/internal/service"
	"spicy-biryani/internal/sms"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var deliveryRepo repository.DeliveryRepository = repository.NewMemoryDeliveryRepository()
	if cfg.DatabaseURL != "" {
		version, err := db.RunMigrations(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		logger.Info("migrations applied", zap.Uint("version", version))

		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		deliveryRepo = repository.NewPgDeliveryRepository(pool)
	} else {
		logger.Warn("database url not configured, delivery log kept in memory")
	}

	emailSender := email.NewDisabledSender("RESEND_API_KEY or SMTP_HOST required")
	switch {
	case cfg.ResendAPIKey != "":
		sender, err := email.NewResendSender(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.EmailFrom, nil)
		if err != nil {
			logger.Warn("resend sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	case cfg.SMTPHost != "":
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	default:
		logger.Warn("email sender not configured")
	}

	smsSender := sms.NewDisabledSender("twilio credentials missing")
	if cfg.TwilioConfigured() {
		sender, err := sms.NewTwilioSender(cfg.TwilioBaseURL, cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber, nil)
		if err != nil {
			logger.Warn("twilio sender init failed", zap.Error(err))
		} else {
			smsSender = sender
		}
	} else {
		logger.Warn("sms sender not configured, messages will only be logged")
	}

	var (
		chatQuota   service.ChatQuota
		adminGrants service.AdminGrantStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			chatQuota = service.NewRedisChatQuota(redisClient, cfg.ChatRateLimit, cfg.ChatRateWindow)
			adminGrants = service.NewRedisAdminGrantStore(redisClient)
		}
		cancel()
	}
	if chatQuota == nil {
		chatQuota = service.NewMemoryChatQuota(cfg.ChatRateLimit, cfg.ChatRateWindow)
	}

	rules := chatbot.DefaultRules()
	if cfg.ChatRulesFile != "" {
		rules, err = chatbot.LoadRules(cfg.ChatRulesFile)
		if err != nil {
			logger.Fatal("load chat rules", zap.String("path", cfg.ChatRulesFile), zap.Error(err))
		}
		logger.Info("chat rules loaded", zap.String("path", cfg.ChatRulesFile), zap.Int("rules", len(rules)))
	}
	responder := chatbot.NewResponder(rules)

	adminSession := service.NewAdminSession(
		cfg.AdminPasswordHash,
		cfg.JWTSecret,
		time.Duration(cfg.AdminSessionTTLMinutes)*time.Minute,
		adminGrants,
	)
	if cfg.JWTSecret == "" || cfg.AdminPasswordHash == "" {
		logger.Warn("admin login disabled: JWT_SECRET and ADMIN_PASSWORD_HASH required")
	}

	chatSvc := service.NewChatService(logger, responder, chatQuota, conversation.WithDelay(cfg.ChatReplyDelay))
	notificationSvc := service.NewNotificationService(logger, emailSender, smsSender, deliveryRepo)
	dispatcher := service.NewStatusDispatcher(notificationSvc)

	router := apihttp.NewRouter(
		logger,
		apihttp.NewNotificationHandler(logger, notificationSvc),
		apihttp.NewChatHandler(logger, chatSvc),
		apihttp.NewChatSocketHandler(logger, chatSvc),
		apihttp.NewAdminHandler(logger, adminSession, dispatcher, notificationSvc),
		adminSession,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	chatSvc.CloseAll()
	logger.Info("server stopped")
}
