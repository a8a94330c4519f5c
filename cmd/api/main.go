package main

import (
	"log"

	_ "crm/api/swagger" // swagger docs
	"crm/internal/cep"
	"crm/internal/config"
	"crm/internal/database"
	"crm/internal/handler"
	"crm/internal/middleware"
	"crm/internal/notifier"
	"crm/internal/repository"
	"crm/internal/service"
	"crm/internal/websocket"

	"github.com/gin-gonic/gin"
)

// @title           Representative CRM API
// @version         1.0
// @description     Leads, clients, represented companies, quotes, sales and commissions.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	mailer := newMailer(cfg)
	if closer, ok := mailer.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	mail := notifier.New(mailer, cfg.QuoteLinkBase)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	leadRepo := repository.NewLeadRepository(db)
	historyRepo := repository.NewLeadHistoryRepository(db)
	clientRepo := repository.NewClientRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	productRepo := repository.NewProductRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	leadService := service.NewLeadService(leadRepo, historyRepo, clientRepo, auditRepo, txManager, wsHub)
	clientService := service.NewClientService(clientRepo, auditRepo, txManager)
	userService := service.NewUserService(userRepo, auditRepo, txManager, cfg.Auth.OwnerOpenID)

	services := handler.Services{
		Leads:     leadService,
		Clients:   clientService,
		Companies: service.NewCompanyService(companyRepo, auditRepo, txManager),
		Products:  service.NewProductService(productRepo, companyRepo, auditRepo, txManager),
		Quotes:    service.NewQuoteService(quoteRepo, clientRepo, companyRepo, productRepo, auditRepo, txManager, mail, wsHub),
		Sales:     service.NewSaleService(saleRepo, quoteRepo, clientRepo, companyRepo, userRepo, auditRepo, txManager, mail, wsHub),
		Imports:   service.NewImportService(leadService, clientService, leadRepo, clientRepo, auditRepo),
		Reports:   service.NewReportService(reportRepo),
		Users:     userService,
		Audit:     service.NewAuditService(auditRepo),
	}

	router := handler.NewRouter(handler.RouterOptions{
		Services:    services,
		Auth:        middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, userService),
		CEP:         cep.NewClient(cfg.ViaCEP),
		Hub:         wsHub,
		CORSOrigins: cfg.CORS,
	})

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newMailer prefers direct SMTP, then the AMQP relay, and falls back to logging.
func newMailer(cfg *config.Config) notifier.Mailer {
	switch {
	case cfg.SMTP.Host != "":
		log.Printf("Sending email through SMTP %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)
		return notifier.NewSMTPMailer(notifier.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	case cfg.AMQP.URL != "":
		log.Printf("Relaying email through RabbitMQ exchange %s", cfg.AMQP.Exchange)
		return notifier.NewAMQPMailer(cfg.AMQP.URL, cfg.AMQP.Exchange)
	default:
		log.Println("No SMTP_HOST or RABBITMQ_URL configured, emails will only be logged")
		return notifier.LogMailer{}
	}
}
