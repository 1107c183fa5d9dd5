package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"coinroyale-backend/internal/config"
	"coinroyale-backend/internal/handlers"
	"coinroyale-backend/internal/middleware"
	"coinroyale-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	jwtService := services.NewJWTService(cfg)
	fairness := services.NewFairnessEngine(cfg.FlipSigningKey)
	store := services.NewSessionStore()
	wsHandler := handlers.NewWebSocketHandler()

	orchestrator := services.NewOrchestrator(store, fairness, redisService, wsHandler.Hub(), services.Timings{
		Choice:    cfg.ChoiceTimeout,
		Power:     cfg.PowerTimeout,
		Flip:      cfg.FlipTimeout,
		PowerTick: cfg.PowerTick,
		Retention: cfg.CompletedRetention,
	})

	if err := orchestrator.Restore(); err != nil {
		log.Printf("Failed to restore sessions: %v", err)
	}

	ledger := services.NewHTTPLedgerClient(cfg.LedgerURL, cfg.LedgerTimeout)
	reconciler := services.NewReconciler(store, orchestrator, ledger, services.ReconcilerConfig{
		Interval: cfg.SweepInterval,
		MaxAge:   cfg.DepositMaxAge,
		Cooldown: cfg.DepositCooldown,
		Grace:    cfg.DepositGrace,
	})
	go reconciler.Run(context.Background())

	authHandler := handlers.NewAuthHandler(jwtService)
	gameHandler := handlers.NewGameHandler(orchestrator, fairness, redisService)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/wallet", authHandler.Authenticate)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			games.POST("", gameHandler.CreateSession)
			games.GET("", gameHandler.ListSessions)
			games.GET("/:id", gameHandler.GetState)
			games.POST("/:id/join", gameHandler.JoinSession)
			games.POST("/:id/spectate", gameHandler.Spectate)
			games.POST("/:id/start", gameHandler.StartEarly)
			games.POST("/:id/deposit", gameHandler.ConfirmDeposit)
			games.POST("/:id/choice", gameHandler.SetChoice)
			games.POST("/:id/power/start", gameHandler.StartPowerCharge)
			games.POST("/:id/power/stop", gameHandler.StopPowerCharge)
			games.POST("/:id/flip", gameHandler.ExecuteFlip)
			games.POST("/:id/skin", gameHandler.UpdateCoinSkin)
			games.POST("/:id/settlement", gameHandler.ConfirmSettlement)
		}

		protected.GET("/flips/:flipId/verify", gameHandler.VerifyFlip)
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
