package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"auction-house/internal/auth"
	"auction-house/internal/blockchain"
	"auction-house/internal/config"
	"auction-house/internal/database"
	"auction-house/internal/handlers"
	"auction-house/internal/jobs"
	"auction-house/internal/repository"
	"auction-house/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository and the marketplace state singleton
	repo := repository.NewRepository(database.GetDB())
	if _, err := repo.EnsureState(context.Background(), cfg.Marketplace.Denom, cfg.Marketplace.OwnerAddress); err != nil {
		log.Fatalf("Failed to initialize marketplace state: %v", err)
	}

	// Initialize chain client and escrow contract
	chainClient := blockchain.NewChainClient(cfg.Solana.Network, cfg.Solana.ServerWalletPrivateKey)
	escrowContract := blockchain.NewEscrowContract(chainClient, cfg.Solana.EscrowProgramID, cfg.Solana.AssetProgramID)

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	ledgerService := services.NewLedgerService(repo, escrowContract, cfg.Marketplace.Denom, cfg.Marketplace.OwnerAddress)
	auctionService := services.NewAuctionService(
		repo,
		escrowContract,
		chainClient,
		cfg.Marketplace.Denom,
		cfg.Marketplace.DefaultWindowBlocks,
	)
	marketplaceService := services.NewMarketplaceService(repo, ledgerService, auctionService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, chainClient)
	ledgerHandler := handlers.NewLedgerHandler(marketplaceService, ledgerService)
	auctionHandler := handlers.NewAuctionHandler(marketplaceService, auctionService, escrowContract)
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplaceService)

	// Start listing watcher job
	watcher := jobs.NewListingWatcher(repo, chainClient, time.Minute)
	go watcher.Start()
	defer watcher.Stop()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public marketplace routes
	router.GET("/api/marketplace", marketplaceHandler.GetOverview)
	router.GET("/api/listings", auctionHandler.ListOpenListings)
	router.GET("/api/listings/:id", auctionHandler.GetListing)
	router.GET("/api/listings/:id/escrow", auctionHandler.GetListingEscrow)
	router.GET("/api/sellers/:address/stats", auctionHandler.GetSellerStats)
	router.GET("/api/ledger/balance/:address", ledgerHandler.GetAccountBalance)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Ledger endpoints
		api.POST("/ledger/stake", ledgerHandler.Stake)
		api.POST("/ledger/withdraw", ledgerHandler.Withdraw)
		api.GET("/ledger/balance", ledgerHandler.GetBalance)
		api.GET("/ledger/participation", ledgerHandler.GetParticipation)
		api.GET("/ledger/history", ledgerHandler.GetHistory)
		api.GET("/wallet/balance", authHandler.GetWalletBalance)

		// Listing endpoints
		api.POST("/listings", auctionHandler.CreateListing)
		api.POST("/listings/:id/bids", auctionHandler.PlaceBid)
		api.POST("/listings/:id/close", auctionHandler.CloseListing)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
