package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"helpwise_backend/internal/ai"
	"helpwise_backend/internal/auth"
	"helpwise_backend/internal/config"
	"helpwise_backend/internal/email"
	"helpwise_backend/internal/handlers"
	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/routes"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/validator"
	"helpwise_backend/internal/workers"
	"helpwise_backend/pkg/apperrors"
	"helpwise_backend/ws"
)

// ServiceContainer держит все сервисы приложения.
type ServiceContainer struct {
	Auth         *services.AuthService
	Request      *services.RequestService
	Bid          *services.BidService
	Notification *services.NotificationService
	Conversation *services.ConversationService
	Chatbot      *services.ChatbotService
	Assistant    *services.AssistantService
	Payment      *services.PaymentService
}

// Run - точка входа приложения: конфиг, БД, DI, воркеры, HTTP-сервер.
func Run() error {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	apperrors.Debug = cfg.Server.Env != "production"
	auth.Init(cfg.JWT.Secret, cfg.JWT.TTL)

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := migrate(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := seedHelpTypes(db); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	wsManager := ws.NewManager()
	go wsManager.Run(ctx)

	container := initializeServices(cfg, db, wsManager)
	wsManager.SetParticipantChecker(container.Conversation)

	closer := workers.NewDeadlineCloser(repositories.NewRequestRepository(db))
	go closer.Start(ctx)

	appHandlers := initializeHandlers(cfg, container)
	router := routes.SetupRouter(appHandlers, wsManager)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		// Нужен для маппинга duplicate key на доменные ошибки
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
	return gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.HelpType{},
		&models.HelpRequest{},
		&models.Bid{},
		&models.Notification{},
		&models.Conversation{},
		&models.Message{},
		&models.ChatSession{},
	)
}

// seedHelpTypes наполняет справочник категорий при первом запуске.
func seedHelpTypes(db *gorm.DB) error {
	repo := repositories.NewHelpTypeRepository(db)

	count, err := repo.CountAll()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.HelpType{
		{Name: "Tutoring", Description: "Teaching, exam prep and study help"},
		{Name: "Tech Support", Description: "Software setup, debugging and IT issues"},
		{Name: "Design", Description: "Graphics, UI and branding work"},
		{Name: "Writing", Description: "Copywriting, editing and translations"},
		{Name: "Handyman", Description: "Repairs and small physical jobs"},
		{Name: "Other", Description: "Anything that does not fit the above"},
	}
	for i := range defaults {
		if err := repo.Create(&defaults[i]); err != nil {
			return err
		}
	}
	logger.Info("help types seeded", "count", len(defaults))
	return nil
}

// initializeServices - единственное место, где собирается граф зависимостей.
func initializeServices(cfg *config.Config, db *gorm.DB, broadcaster services.EventBroadcaster) *ServiceContainer {
	userRepo := repositories.NewUserRepository(db)
	helpTypeRepo := repositories.NewHelpTypeRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	bidRepo := repositories.NewBidRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	chatSessionRepo := repositories.NewChatSessionRepository(db)

	emailProvider := email.NewEmailSender(cfg)
	openaiClient := ai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	geminiClient := ai.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model)

	bidService := services.NewBidService(db, bidRepo, requestRepo, userRepo, notificationRepo, conversationRepo, broadcaster)

	return &ServiceContainer{
		Auth:         services.NewAuthService(userRepo, emailProvider, openaiClient),
		Request:      services.NewRequestService(requestRepo, bidRepo, helpTypeRepo, broadcaster),
		Bid:          bidService,
		Notification: services.NewNotificationService(notificationRepo),
		Conversation: services.NewConversationService(conversationRepo, userRepo, broadcaster),
		Chatbot:      services.NewChatbotService(chatSessionRepo, openaiClient),
		Assistant:    services.NewAssistantService(openaiClient, geminiClient),
		Payment:      services.NewPaymentService(cfg.Stripe, bidService),
	}
}

func initializeHandlers(cfg *config.Config, container *ServiceContainer) *handlers.AppHandlers {
	base := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		Auth:         handlers.NewAuthHandler(base, container.Auth),
		Request:      handlers.NewRequestHandler(base, container.Request),
		Bid:          handlers.NewBidHandler(base, container.Bid),
		Notification: handlers.NewNotificationHandler(base, container.Notification),
		Conversation: handlers.NewConversationHandler(base, container.Conversation),
		Chatbot:      handlers.NewChatbotHandler(base, container.Chatbot),
		Assistant:    handlers.NewAssistantHandler(base, container.Assistant),
		Payment:      handlers.NewPaymentHandler(base, container.Payment, cfg.Stripe.WebhookSecret),
	}
}
