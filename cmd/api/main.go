package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/auth"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Training Department Admin API
// @version         1.0
// @description     Authorization and accountability backend for the training department: users, roles, permissions, audit trail and department records.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	tokenService := auth.NewTokenService([]byte(jwtSecret), 0)

	// Set up WebSocket Hub for the security event feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	initiativeRepo := repository.NewInitiativeRepository(db)
	behaviorRepo := repository.NewBehaviorRepository(db)
	txManager := repository.NewTransactionManager(db)

	auditService := service.NewAuditService(auditRepo, wsHub)
	rbacService := service.NewRBACService(grantRepo, auditService)
	authService := service.NewAuthService(userRepo, grantRepo, rbacService, auditService, tokenService, txManager)
	initiativeService := service.NewInitiativeService(initiativeRepo, auditService)
	behaviorService := service.NewBehaviorService(behaviorRepo, auditService)
	qualityService := service.NewQualityService(db, auditService)
	surveyService := service.NewSurveyService(db, auditService)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, rbacService)
	auditHandler := handler.NewAuditHandler(authService, auditService)
	initiativeHandler := handler.NewInitiativeHandler(authService, initiativeService)
	behaviorHandler := handler.NewBehaviorHandler(authService, behaviorService)
	qualityHandler := handler.NewQualityHandler(authService, qualityService)
	surveyHandler := handler.NewSurveyHandler(authService, surveyService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint: live feed of recorded audit entries
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokenService)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	initiativeHandler.RegisterRoutes(router.Group(""))
	behaviorHandler.RegisterRoutes(router.Group(""))
	qualityHandler.RegisterRoutes(router.Group(""))
	surveyHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
