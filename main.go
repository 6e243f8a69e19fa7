package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/tilt-maze/api"
	gameapi "github.com/beka-birhanu/tilt-maze/api/game"
	api_i "github.com/beka-birhanu/tilt-maze/api/i"
	"github.com/beka-birhanu/tilt-maze/api/identity"
	"github.com/beka-birhanu/tilt-maze/config"
	"github.com/beka-birhanu/tilt-maze/game"
	"github.com/beka-birhanu/tilt-maze/game/encoder"
	logger "github.com/beka-birhanu/tilt-maze/infrastruture/log"
	"github.com/beka-birhanu/tilt-maze/infrastruture/repo"
	"github.com/beka-birhanu/tilt-maze/infrastruture/sortedstorage"
	"github.com/beka-birhanu/tilt-maze/infrastruture/token"
	"github.com/beka-birhanu/tilt-maze/service"
	"github.com/beka-birhanu/tilt-maze/service/i"
	"github.com/beka-birhanu/tilt-maze/udp"
	"github.com/beka-birhanu/tilt-maze/ws"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const wsPath = "/ws"

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	userRepo           *repo.UserRepo
	lobbyQueue         i.SortedQueue
	wireEncoder        game.Encoder
	wsHub              *ws.Hub
	udpSocket          *udp.ServerSocketManager
	gameSessionManager *service.GameSessionManager
	lobby              *service.Lobby
	lobbyController    api_i.Controller
	jwtTokenizer       i.Tokenizer
	authService        i.Authenticator
	authController     api_i.Controller
	router             *api.Router
	appLogger          i.Logger
)

func newLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout, logger.Options{
		Level:  config.Envs.LogLevel,
		Format: config.Envs.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initUserRepo(ctx context.Context, client *mongo.Client) {
	userRepo = repo.NewUserRepo(client, config.Envs.DBName, "users")
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating user indexes: %v", err))
		os.Exit(1)
	}
	appLogger.Info("User repository initialized")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initLobbyQueue() {
	var err error
	lobbyQueue, err = sortedstorage.NewRedisSortedQueue(redisClient, config.Envs.LobbyTTL)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating lobby queue: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Lobby queue initialized")
}

func initEncoder() {
	var err error
	wireEncoder, err = encoder.New(config.Envs.WireFormat)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %q encoder: %v", config.Envs.WireFormat, err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Using %s records", config.Envs.WireFormat))
}

func initSockets() {
	wsHub = ws.NewHub(wsPath, newLogger("WS-HUB", config.ColorBlue))

	listenAddr := &net.UDPAddr{IP: net.ParseIP(config.Envs.HostIP), Port: config.Envs.UDPPort}
	var err error
	udpSocket, err = udp.NewServerSocketManager(
		udp.ServerConfig{ListenAddr: listenAddr},
		udp.ServerWithHeartbeatExpiration(time.Duration(config.Envs.HeartbeatSeconds)*time.Second),
		udp.ServerWithLogger(newLogger("UDP-SOCKET", config.ColorYellow)),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating UDP socket: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Sockets initialized: ws %s, udp %s", wsHub.GetAddr(), udpSocket.GetAddr()))
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		WS:        wsHub,
		UDP:       udpSocket,
		Encoder:   wireEncoder,
		Tokenizer: jwtTokenizer,
		UserRepo:  userRepo,
		Logger:    newLogger("SESSION-MANAGER", config.ColorCyan),
		TickRate:  time.Duration(config.Envs.TickMillis) * time.Millisecond,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initLobby() {
	var err error
	lobby, err = service.NewLobby(lobbyQueue, newLogger("LOBBY", config.ColorMagenta), &service.LobbyOptions{
		BatchSize: int64(config.Envs.LobbyBatch),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating lobby: %v", err))
		os.Exit(1)
	}
	lobby.SetMatchHandler(gameSessionManager.NewSession)
	appLogger.Info("Lobby initialized")
}

func initLobbyController() {
	lobbyController = gameapi.NewLobbyController(gameSessionManager, lobby)
	appLogger.Info("Lobby controller initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	authService = service.NewAuth(userRepo, jwtTokenizer)
	appLogger.Info("Auth service initialized")
}

func initAuthController() {
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, lobbyController},
		AuthorizationMiddleware: identity.Authoriz(t),
		WSPath:                  wsPath,
		WSHandler:               wsHub,
		StaticDir:               config.Envs.StaticDir,
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel() // Ensure the context is always canceled

	// Initialize dependencies
	appLogger = newLogger("APP", config.ColorGreen)

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	initUserRepo(ctx, mongoClient)

	initRedis(ctx)
	defer redisClient.Close()
	initLobbyQueue()

	initEncoder()
	initJWTTokenizer()
	initSockets()
	initSessionManager()
	initLobby()
	initLobbyController()
	initAuthService()
	initAuthController()
	initRouter(jwtTokenizer)

	go wsHub.Serve()
	go udpSocket.Serve()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- router.Run()
	}()

	stop, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	exitCode := 0
	select {
	case <-stop.Done():
		appLogger.Info("Shutting down")
	case err := <-serverErr:
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		exitCode = 1
	}

	gameSessionManager.StopAll()
	wsHub.Stop()
	udpSocket.Stop()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
