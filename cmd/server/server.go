package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/cors"

	"github.com/thereayou/matchmaker/internal/config"
	"github.com/thereayou/matchmaker/internal/database"
	"github.com/thereayou/matchmaker/internal/database/dynamostore"
	"github.com/thereayou/matchmaker/internal/database/memory"
	"github.com/thereayou/matchmaker/internal/database/mongodb"
	"github.com/thereayou/matchmaker/internal/handlers"
	"github.com/thereayou/matchmaker/internal/middleware"
	"github.com/thereayou/matchmaker/internal/pubsub"
	"github.com/thereayou/matchmaker/internal/recommender"
	"github.com/thereayou/matchmaker/internal/services"
	ws "github.com/thereayou/matchmaker/internal/websocket"
	"github.com/thereayou/matchmaker/pkg/auth"
)

type Server struct {
	HTTP       *http.Server
	Router     *gin.Engine
	Store      database.Store
	Bus        pubsub.Bus
	Redis      *redis.Client
	Hub        *ws.Hub
	JWTManager *auth.JWTManager

	MatchH *handlers.MatchHandler
	ChatH  *handlers.HTTPMessageHandler
	WSH    *handlers.WebSocketHandler
	AuthH  *handlers.AuthHandler
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := storeOpener(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close store", "error", closeErr)
		}
		return nil, err
	}

	var bus pubsub.Bus
	switch cfg.BusDriver {
	case config.BusRedis:
		bus = pubsub.NewRedisBus(rdb)
	default:
		bus = pubsub.NewMemoryBus()
	}

	var blacklist auth.TokenBlacklist
	if rdb != nil {
		blacklist = auth.NewRedisBlacklist(rdb)
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	ranker := recommender.NewClient(cfg.RecommenderURL, cfg.RecommenderTimeout)
	matchSvc := services.NewMatchService(store, ranker, services.WithTerminalGuard(cfg.MatchTerminalGuard))
	chatSvc := services.NewChatService(store, bus, services.WithPublishTimeout(cfg.PublishTimeout))

	hub := ws.NewHub(bus, ws.WithMessageRate(cfg.WSMessageRate, cfg.WSMessageBurst))
	go hub.Run()

	corsH := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: !cfg.AllowsAnyOrigin(),
	})

	s := &Server{
		Store:      store,
		Bus:        bus,
		Redis:      rdb,
		Hub:        hub,
		JWTManager: jwtMgr,
		MatchH:     handlers.NewMatchHandler(matchSvc),
		ChatH:      handlers.NewHTTPMessageHandler(chatSvc),
		WSH:        handlers.NewWebSocketHandler(hub, handlers.NewMessageHandler(chatSvc), corsH.OriginAllowed),
	}
	if blacklist != nil {
		s.AuthH = handlers.NewAuthHandler(jwtMgr, blacklist)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(slog.Default()))
	APIEndpoints(router, s, blacklist)
	s.Router = router

	s.HTTP = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsH.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// connectRedis возвращает nil-клиент, если REDIS_URL не задан
func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}
	return rdb, nil
}

var storeOpener = openStore

func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres connect failed: %w", err)
		}
		return db, nil

	case config.StoreMongoDB:
		store, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongodb connect failed: %w", err)
		}
		return store, nil

	case config.StoreDynamoDB:
		store, err := dynamostore.Connect(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint,
			cfg.DynamoDBMatchesTable, cfg.DynamoDBMessagesTable)
		if err != nil {
			return nil, fmt.Errorf("dynamodb init failed: %w", err)
		}
		return store, nil

	default:
		return memory.New(), nil
	}
}

// Shutdown останавливает HTTP, hub, шину и хранилище в этом порядке
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.HTTP.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}

	s.Hub.Stop()

	if err := s.Bus.Close(); err != nil {
		slog.Error("bus close failed", "error", err)
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			slog.Error("redis close failed", "error", err)
		}
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("store close failed", "error", err)
	}
}
