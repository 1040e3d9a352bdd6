package handler

import (
	"ledger-api/internal/adapter/http/middleware"
	redisStore "ledger-api/internal/adapter/storage/redis"
	"ledger-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	AuditSvc       ports.AuditService         // nil = audit logging disabled
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AdminAPIKey    string
	RequireActor   bool
	OpenAPI        []byte // nil = /swagger answers 404
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	docs := NewAPIDocs(deps.OpenAPI)
	swagger := r.Group("/swagger")
	{
		swagger.GET("", docs.UI)
		swagger.GET("/openapi.yaml", docs.Document)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.RequireJSON())

	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	authenticated := v1.Group("", middleware.Authenticate(middleware.AuthConfig{
		AdminAPIKey:  deps.AdminAPIKey,
		TokenSvc:     deps.TokenSvc,
		RequireActor: deps.RequireActor,
	}, deps.Logger))

	transferHandler := NewTransferHandler(deps.LedgerSvc)
	authenticated.POST("/transfers", rl("transfers"), transferHandler.Transfer)

	accountHandler := NewAccountHandler(deps.LedgerSvc)
	accounts := authenticated.Group("/accounts")
	{
		accounts.GET("", rl("reads"), accountHandler.List)
		accounts.POST("", rl("accounts_write"), accountHandler.Create)
		accounts.GET("/:id/balance", rl("reads"), accountHandler.GetBalance)
		accounts.DELETE("/:id", rl("accounts_write"), accountHandler.Delete)
	}

	transactionHandler := NewTransactionHandler(deps.LedgerSvc)
	authenticated.GET("/transactions", rl("reads"), transactionHandler.List)

	adminHandler := NewAdminHandler(deps.LedgerSvc, deps.AuthSvc)
	admin := authenticated.Group("/admin")
	{
		admin.GET("/stats", rl("admin"), adminHandler.Stats)
		admin.DELETE("/users/:username", rl("admin"), adminHandler.DeleteUser)
	}

	return r
}
