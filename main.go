package main

import (
	"api/auth"
	"api/config"
	"api/crypto"
	"api/game"
	"api/logger"
	"api/migrations"
	"api/rooms"
	"api/storage"
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	log := logger.New(config.Envs.Debug)

	if config.Envs.GinMode != "" {
		gin.SetMode(config.Envs.GinMode)
	}

	if config.Envs.PostgresURL == "" {
		log.Fatal().Msg("missing postgres url")
	}
	if config.Envs.JWTKey == "" {
		log.Fatal().Msg("missing jwt signing key")
	}
	if len(config.Envs.AllowedOrigins) == 0 {
		log.Fatal().Msg("missing allowed origins")
	}

	if err := migrations.Migrate(config.Envs.PostgresURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	pgRepo, err := storage.NewPostgresRepo(context.Background(), config.Envs.PostgresURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pgRepo.Close()

	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(config.Envs.JWTKey, tokenAge)

	authService := auth.NewService(pgRepo, passwordHasher, tokenManager)
	authHandler := auth.NewAuthHandler(authService, tokenAge)

	r := CreateServer(config.Envs.AllowedOrigins)

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/signup", authHandler.SignupHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.GET("/refresh", authHandler.RefreshSessionHandler)
	}

	roomHandler := rooms.NewHandler(pgRepo, log)
	{
		roomGroup := r.Group("/rooms")
		roomGroup.Use(authHandler.RequireAuthMiddleware())
		roomGroup.GET("", roomHandler.ListRoomsHandler)
		roomGroup.POST("/create", roomHandler.CreateRoomHandler)
	}

	// The websocket endpoint authenticates through its token query parameter,
	// so it sits outside the cookie middleware.
	broker := game.NewBroker(pgRepo, tokenManager, log)
	gameHandler := game.NewHandler(broker, config.Envs.AllowedOrigins, log)
	r.GET("/game/ws", gameHandler.GameWSHandler)

	go r.Run(":" + config.Envs.Port)
	log.Info().Str("port", config.Envs.Port).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	log.Info().Msg("shutdown signal received")
}
