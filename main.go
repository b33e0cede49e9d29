package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-maze/api"
	api_i "github.com/beka-birhanu/vinom-maze/api/i"
	"github.com/beka-birhanu/vinom-maze/api/identity"
	mazeapi "github.com/beka-birhanu/vinom-maze/api/maze"
	"github.com/beka-birhanu/vinom-maze/config"
	"github.com/beka-birhanu/vinom-maze/explorer"
	"github.com/beka-birhanu/vinom-maze/infrastruture/mazecache"
	pb "github.com/beka-birhanu/vinom-maze/infrastruture/pb_encoder"
	"github.com/beka-birhanu/vinom-maze/infrastruture/repo"
	"github.com/beka-birhanu/vinom-maze/infrastruture/runlock"
	"github.com/beka-birhanu/vinom-maze/infrastruture/simbot"
	"github.com/beka-birhanu/vinom-maze/infrastruture/token"
	"github.com/beka-birhanu/vinom-maze/logger"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/beka-birhanu/vinom-maze/teleop"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	envs         config.Config
	mongoClient  *mongo.Client
	redisClient  *redis.Client
	runRepo      i.RunRepo
	mazeCache    i.MazeCache
	runLocker    i.RunLocker
	jwtTokenizer i.Tokenizer
	solver       *service.Solver
	router       *api.Router
	appLogger    *logrus.Entry
)

func fatal(format string, args ...interface{}) {
	if appLogger == nil {
		log.Fatalf(format, args...)
	}
	appLogger.Errorf(format, args...)
	os.Exit(1)
}

func initAppLogger(out io.Writer) error {
	l, err := logger.New("APP", config.ColorGreen, out)
	if err != nil {
		return fmt.Errorf("creating app logger: %w", err)
	}
	appLogger = l
	return nil
}

func navigationConfig() explorer.Config {
	cfg := explorer.DefaultConfig()
	cfg.CellSize = envs.CellSize
	cfg.WallThreshold = envs.WallThreshold
	cfg.SensorRetries = envs.SensorRetries
	cfg.ActuatorRetries = envs.ActuatorRetries
	return cfg
}

func robotFactory() service.RobotFactory {
	robotLogger, err := logger.New("ROBOT", config.ColorYellow, os.Stdout)
	if err != nil {
		fatal("Creating robot logger: %v", err)
	}

	cfg := simbot.DefaultConfig()
	cfg.CellSize = envs.CellSize
	cfg.SettleDelay = time.Duration(envs.SettleDelayMs) * time.Millisecond
	return func(g *maze.Grid) i.Robot {
		return simbot.New(g, cfg, robotLogger)
	}
}

func initMongo(ctx context.Context) {
	var err error
	mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(envs.MongoURI))
	if err != nil {
		fatal("Failed to connect to MongoDB: %v", err)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		fatal("MongoDB ping failed: %v", err)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRunRepo(client *mongo.Client) {
	runRepo = repo.NewRunRepo(client, envs.DBName, "runs")
	appLogger.Info("Run repository initialized")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     envs.RedisAddr,
		Password: envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fatal("Redis ping failed: %v", err)
	}

	lockLogger, err := logger.New("RUN-LOCK", config.ColorMagenta, os.Stdout)
	if err != nil {
		fatal("Creating run lock logger: %v", err)
	}

	mazeCache = mazecache.NewRedisCache(redisClient, "vinom:")
	runLocker = runlock.NewRedsyncLocker(redisClient, envs.RunLockSeconds, lockLogger)
	appLogger.Info("Connected to Redis")
}

func initJWTTokenizer() {
	if envs.JWTSecret == "" {
		fatal("JWT_SECRET is not set")
	}
	jwtTokenizer = token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initSolver() {
	solverLogger, err := logger.New("SOLVER", config.ColorCyan, os.Stdout)
	if err != nil {
		fatal("Creating solver logger: %v", err)
	}

	solver, err = service.NewSolver(&service.Config{
		Cache:        mazeCache,
		CacheTTL:     time.Duration(envs.CacheTTLSeconds) * time.Second,
		Encoder:      &pb.Protobuf{},
		Runs:         runRepo,
		Locker:       runLocker,
		RobotFactory: robotFactory(),
		Navigation:   navigationConfig(),
		Logger:       solverLogger,
	})
	if err != nil {
		fatal("Creating solver: %v", err)
	}
	appLogger.Info("Solver initialized")
}

func initRouter(t i.Tokenizer) {
	mazeController, err := mazeapi.NewMazeController(solver)
	if err != nil {
		fatal("Creating maze controller: %v", err)
	}

	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", envs.HostIP, envs.RESTPort),
		BaseURL:                 "/api",
		Mode:                    envs.GinMode,
		Controllers:             []api_i.Controller{identity.NewIdentityServer(), mazeController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func mazeRequest() i.MazeRequest {
	return i.MazeRequest{
		Width:     envs.MazeWidth,
		Height:    envs.MazeHeight,
		Obstacles: envs.MazeObstacles,
		Seed:      envs.MazeSeed,
	}
}

func serve() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	initRunRepo(mongoClient)
	initRedis(ctx)
	defer redisClient.Close()
	initJWTTokenizer()
	initSolver()
	initRouter(jwtTokenizer)

	// Run HTTP server
	if err := router.Run(); err != nil {
		fatal("Starting server: %v", err)
	}
}

// solve runs one exploration in process and prints the result.
func solve(ctx context.Context) {
	initSolver()

	scene, err := solver.Generate(ctx, mazeRequest())
	if err != nil {
		fatal("Generating maze: %v", err)
	}
	fmt.Printf("Ground truth (seed %d, %d obstacles):\n%s\n", scene.Seed, scene.Placement.Placed, scene.Grid)

	run, err := solver.SolveScene(ctx, scene, nil)
	if run != nil {
		fmt.Printf("Discovered map:\n%s\n", run.Map)
		fmt.Printf("Visited %d of %d cells, %d moves, %d blocked, %d skipped\n",
			run.Visited, run.Width*run.Height, run.Moves, run.BlockedMoves, len(run.Skipped))
	}
	if err != nil {
		fatal("Exploration stopped: %v", err)
	}
}

// drive hands the simulated robot to the keyboard.
func drive(ctx context.Context) {
	initSolver()

	scene, err := solver.Generate(ctx, mazeRequest())
	if err != nil {
		fatal("Generating maze: %v", err)
	}

	g := scene.Grid
	nav, err := explorer.NewNavigator(robotFactory()(g), explorer.NewDiscoveredMap(g.Width(), g.Height()), navigationConfig(), nil)
	if err != nil {
		fatal("Creating navigator: %v", err)
	}
	if err := nav.TeleportTo(ctx, maze.Entrance()); err != nil {
		fatal("Placing robot: %v", err)
	}

	if err := teleop.Drive(ctx, nav, int(os.Stdin.Fd()), os.Stdin, os.Stdout, nil); err != nil {
		fatal("Drive session: %v", err)
	}
	fmt.Printf("\nGround truth:\n%s", g)
}

func printToken(subject string, ttl time.Duration) {
	initJWTTokenizer()
	signed, err := jwtTokenizer.Generate(map[string]interface{}{"sub": subject}, ttl)
	if err != nil {
		fatal("Signing token: %v", err)
	}
	fmt.Println(signed)
}

func main() {
	mode := flag.String("mode", "serve", "serve, solve, drive or token")
	subject := flag.String("sub", "operator", "token subject (token mode)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime (token mode)")
	flag.Parse()

	// Initialize dependencies
	if err := initAppLogger(os.Stdout); err != nil {
		log.Fatal(err)
	}

	var err error
	if envs, err = config.Load(); err != nil {
		fatal("Loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "serve":
		serve()
	case "solve":
		solve(ctx)
	case "drive":
		drive(ctx)
	case "token":
		printToken(*subject, *ttl)
	default:
		fatal("Unknown mode %q", *mode)
	}
}
