package handler

import (
	"net/http"

	"crm/internal/middleware"
	"crm/internal/service"
	"crm/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services groups the business services the API exposes
type Services struct {
	Leads     service.LeadService
	Clients   service.ClientService
	Companies service.CompanyService
	Products  service.ProductService
	Quotes    service.QuoteService
	Sales     service.SaleService
	Imports   service.ImportService
	Reports   service.ReportService
	Users     service.UserService
	Audit     service.AuditService
}

type RouterOptions struct {
	Services    Services
	Auth        *middleware.Authenticator
	CEP         AddressLookup
	Hub         *websocket.Hub // optional
	CORSOrigins []string
}

// NewRouter wires middleware, swagger, the websocket endpoint and every API route.
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = opts.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	if opts.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(opts.Hub, c, opts.Auth.Resolve)
		})
	}

	s := opts.Services
	api := router.Group("", opts.Auth.Authenticate())
	NewLeadHandler(s.Leads).RegisterRoutes(api)
	NewClientHandler(s.Clients).RegisterRoutes(api)
	NewCompanyHandler(s.Companies).RegisterRoutes(api)
	NewProductHandler(s.Products).RegisterRoutes(api)
	NewQuoteHandler(s.Quotes).RegisterRoutes(api)
	NewSaleHandler(s.Sales).RegisterRoutes(api)
	NewImportHandler(s.Imports).RegisterRoutes(api)
	NewReportHandler(s.Reports).RegisterRoutes(api)
	NewUserHandler(s.Users, opts.Auth).RegisterRoutes(api)
	NewAuditHandler(s.Audit).RegisterRoutes(api)
	if opts.CEP != nil {
		NewCEPHandler(opts.CEP).RegisterRoutes(api)
	}

	return router
}
