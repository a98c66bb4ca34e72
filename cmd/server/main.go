package main

import (
	"collaborative-annotation-engine/internal/access"
	"collaborative-annotation-engine/internal/annotation"
	"collaborative-annotation-engine/internal/config"
	"collaborative-annotation-engine/internal/db"
	"collaborative-annotation-engine/internal/document"
	"collaborative-annotation-engine/internal/invite"
	"collaborative-annotation-engine/internal/mailer"
	"collaborative-annotation-engine/internal/middleware"
	"collaborative-annotation-engine/internal/user"
	"collaborative-annotation-engine/internal/worker"
	"collaborative-annotation-engine/redis"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	cache := redis.InitRedis()

	// Background pool for invitation emails
	pool := worker.NewWorkerPool(4)

	mailClient := mailer.NewClient(
		config.AppConfig.MailerAddress,
		config.AppConfig.FrontendAddress,
	)

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	docRepo := document.NewRepository(db.AppDb)
	annotationRepo := annotation.NewRepository(db.AppDb)
	inviteRepo := invite.NewRepository(db.AppDb)

	// Initialize services
	userService := user.NewService(userRepo)
	docService := document.NewService(docRepo, userService, cache, annotationRepo, inviteRepo)
	inviteService := invite.NewService(inviteRepo, docService, mailClient, pool, config.AppConfig.InviteTTL)
	annotationService := annotation.NewService(annotationRepo, cache)

	// Both route families resolve through the same scope logic
	resolver := access.NewResolver(docService, inviteService)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	docHandler := document.NewHandler(docService)
	inviteHandler := invite.NewHandler(inviteService)
	annotationHandler := annotation.NewHandler(annotationService)

	authMw := &middleware.Auth{Users: userService}

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.POST("/refresh", userHandler.RefreshToken)
	router.DELETE("/logout", authMw.AuthMiddleWare(), userHandler.Logout)
	router.GET("/profile", authMw.AuthMiddleWare(), userHandler.GetProfile)

	// Document routes (owner session)
	router.POST("/documents", authMw.AuthMiddleWare(), docHandler.Create)
	router.GET("/documents", authMw.AuthMiddleWare(), docHandler.ShowUserDocuments)
	router.GET("/documents/:id", authMw.AuthMiddleWare(), docHandler.ShowDocument)
	router.DELETE("/documents/:id", authMw.AuthMiddleWare(), docHandler.DeleteDocument)

	// Invitation management (owner session)
	router.POST("/documents/:id/invites", authMw.AuthMiddleWare(), inviteHandler.Create)
	router.GET("/documents/:id/invites", authMw.AuthMiddleWare(), inviteHandler.List)
	router.DELETE("/documents/:id/invites/:inviteId", authMw.AuthMiddleWare(), inviteHandler.Revoke)

	// Annotation routes, one handler family behind two scope adapters
	ownerScoped := router.Group("/documents/:id", authMw.AuthMiddleWare(), middleware.OwnerScope(resolver))
	annotationHandler.RegisterRoutes(ownerScoped)

	guestScoped := router.Group("/invite/:token", middleware.GuestScope(resolver))
	guestScoped.GET("", docHandler.ShowDocumentForGuest)
	annotationHandler.RegisterRoutes(guestScoped)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	// Let queued invitation emails drain
	pool.Shutdown()

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
