package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sincelove/chat-backend/internal/config"
	"github.com/sincelove/chat-backend/internal/gateway"
	"github.com/sincelove/chat-backend/internal/handler"
	"github.com/sincelove/chat-backend/internal/middleware"
	"github.com/sincelove/chat-backend/internal/migration"
	"github.com/sincelove/chat-backend/internal/repository"
	"github.com/sincelove/chat-backend/internal/routes"
	"github.com/sincelove/chat-backend/internal/service"
	pkgcache "github.com/sincelove/chat-backend/pkg/cache"
	pkges "github.com/sincelove/chat-backend/pkg/elasticsearch"
	pkglogger "github.com/sincelove/chat-backend/pkg/logger"
	pkgredis "github.com/sincelove/chat-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Chat Backend API
// @version         1.0
// @description     Two-party chat messages and per-user conversation lists
//
// @host            localhost:3000
// @BasePath        /api
//
// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	pkglogger.Init()
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := getConfigPath()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)

	// MySQL 연결 (필수)
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")
	if err := migration.Run(db); err != nil {
		pkglogger.Warn("Migration warning: %v", err)
	}

	// Redis 연결 (선택)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
		if err != nil {
			pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
			redisClient = nil
		} else {
			pkglogger.Info("Connected to Redis")
		}
	}

	// Elasticsearch 연결 (선택)
	var messageIndex service.MessageIndex
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) > 0 {
		esClient, esErr := pkges.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Username, cfg.Elasticsearch.Password)
		if esErr != nil {
			pkglogger.Warn("Elasticsearch connection failed: %v (continuing without ES)", esErr)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := esClient.CreateIndex(ctx, cfg.Elasticsearch.Index, service.MessageIndexMapping); err != nil {
				pkglogger.Warn("Elasticsearch index %s not ready: %v", cfg.Elasticsearch.Index, err)
			}
			cancel()
			messageIndex = service.NewMessageIndex(esClient, cfg.Elasticsearch.Index)
			pkglogger.Info("Connected to Elasticsearch (index %s)", cfg.Elasticsearch.Index)
		}
	}

	// User profile gateway
	var profiles gateway.ProfileGateway = gateway.NewProfileClient(
		cfg.Profile.BaseURL,
		cfg.Profile.APIKey,
		time.Duration(cfg.Profile.Timeout)*time.Second,
	)
	if redisClient != nil && cfg.Profile.CacheTTL > 0 {
		profiles = gateway.NewCachedProfileGateway(profiles, pkgcache.NewService(redisClient), time.Duration(cfg.Profile.CacheTTL)*time.Second)
		pkglogger.Info("Profile cache enabled (ttl %ds)", cfg.Profile.CacheTTL)
	}

	// Repositories / Services / Handlers
	messageRepo := repository.NewMessageRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	conversationService := service.NewConversationService(conversationRepo, profiles)
	messageService := service.NewMessageService(messageRepo, conversationService, messageIndex)

	messageHandler := handler.NewMessageHandler(messageService, conversationService)
	conversationHandler := handler.NewConversationHandler(conversationService)
	healthHandler := handler.NewHealthHandler(db, redisClient, messageIndex != nil)

	// Gin 라우터 생성
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS 설정
	corsConfig := cors.Config{
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-Request-ID"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if origins := splitAndTrim(cfg.CORS.AllowOrigins, ","); len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	// Middleware
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	if redisClient != nil && !cfg.IsDevelopment() && cfg.Server.RateLimitPerMinute > 0 {
		rateLimit := middleware.DefaultRateLimitConfig()
		rateLimit.RequestsPerMinute = cfg.Server.RateLimitPerMinute
		router.Use(middleware.RateLimit(redisClient, rateLimit))
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", healthHandler.Health)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, messageHandler, conversationHandler, cfg)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	go reportDBStats(db)

	// 서버 시작
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		pkglogger.Info("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		pkglogger.Error("Server forced to shutdown: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// reportDBStats feeds the DB connection gauge
func reportDBStats(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		middleware.SetDBConnectionsActive(float64(sqlDB.Stats().InUse))
	}
}

// splitAndTrim splits a string by delimiter and trims spaces
func splitAndTrim(s string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, delimiter) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("DSN 파싱 실패: %w", err)
	}

	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	return db, nil
}
