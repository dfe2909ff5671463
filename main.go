package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guilhemriera/Parallel-Ants-Project/api"
	api_i "github.com/guilhemriera/Parallel-Ants-Project/api/i"
	simapi "github.com/guilhemriera/Parallel-Ants-Project/api/sim"
	"github.com/guilhemriera/Parallel-Ants-Project/colony"
	"github.com/guilhemriera/Parallel-Ants-Project/config"
	"github.com/guilhemriera/Parallel-Ants-Project/domain"
	"github.com/guilhemriera/Parallel-Ants-Project/infrastruture/pubsub"
	"github.com/guilhemriera/Parallel-Ants-Project/infrastruture/repo"
	"github.com/guilhemriera/Parallel-Ants-Project/logger"
	"github.com/guilhemriera/Parallel-Ants-Project/maze"
	"github.com/guilhemriera/Parallel-Ants-Project/sim"
	sim_i "github.com/guilhemriera/Parallel-Ants-Project/sim/i"
	"github.com/guilhemriera/Parallel-Ants-Project/sim/jsonenc"
	"github.com/guilhemriera/Parallel-Ants-Project/udp"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	mongoClient       *mongo.Client
	redisClient       *redis.Client
	runRepo           sim_i.RunRepo
	world             *maze.Maze
	coordinator       *sim.Coordinator
	runner            *sim.Runner
	snapshotFeed      *udp.ServerSocketManager
	monitorController api_i.Controller
	router            *api.Router
	appLogger         logger.Logger
)

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

	runRepo = repo.NewRunRepo(mongoClient, config.Envs.DBName, "runs")
	appLogger.Info("Run repository initialized")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr: config.Envs.RedisAddr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initMaze() {
	var err error
	world, err = maze.New(config.Envs.MazeCols, config.Envs.MazeRows, config.Envs.MazeSeed)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Generating maze: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Maze generated: %s", world.Describe()))
}

func initSnapshotFeed(cancelRun context.CancelFunc) {
	feedLogger, err := logger.New("FEED", config.ColorCyan, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating snapshot feed logger: %v", err))
		os.Exit(1)
	}

	addr := &net.UDPAddr{IP: net.ParseIP(config.Envs.HostIP), Port: config.Envs.UDPPort}
	snapshotFeed, err = udp.NewServerSocketManager(
		udp.ServerConfig{ListenAddr: addr},
		udp.ServerWithLogger(feedLogger),
		udp.ServerWithHeartbeatExpiration(30*time.Second),
		udp.ServerWithQuitHandler(func(viewer uuid.UUID) {
			appLogger.Warning(fmt.Sprintf("Run termination requested by viewer %s", viewer))
			cancelRun()
		}),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating snapshot feed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Snapshot feed initialized")
}

func initCoordinator(cfg sim.Config) {
	coordLogger, err := logger.New("COORD", config.ColorMagenta, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating coordinator logger: %v", err))
		os.Exit(1)
	}

	run := domain.NewRun(domain.RunConfig{
		MazeRows:        config.Envs.MazeRows,
		MazeCols:        config.Envs.MazeCols,
		MazeSeed:        config.Envs.MazeSeed,
		NbAnts:          cfg.NbAnts,
		MaxLife:         cfg.MaxLife,
		Workers:         cfg.Workers,
		Alpha:           cfg.Alpha,
		Beta:            cfg.Beta,
		ExplorationCoef: cfg.ExplorationCoef,
	})

	coordOpts := []sim.CoordinatorOption{sim.WithSink(snapshotFeed)}
	if redisClient != nil {
		coordOpts = append(coordOpts, sim.WithSink(pubsub.NewRedisSnapshotPublisher(redisClient, config.Envs.RedisChannel)))
	}
	if runRepo != nil {
		coordOpts = append(coordOpts, sim.WithRunRepo(runRepo))
	}

	coordinator = sim.NewCoordinator(
		cfg.Workers,
		config.Envs.MazeRows,
		config.Envs.MazeCols,
		run,
		&jsonenc.JSON{},
		coordLogger,
		coordOpts...,
	)
	appLogger.Info("Coordinator initialized")
}

func initRunner(cfg sim.Config) {
	simLogger, err := logger.New("SIM", config.ColorYellow, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating simulation logger: %v", err))
		os.Exit(1)
	}

	runner, err = sim.NewRunner(cfg, coordinator, simLogger)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating runner: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Runner initialized")
}

func initMonitorController() {
	var err error
	monitorController, err = simapi.NewMonitorController(coordinator)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating monitor controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Monitor controller initialized")
}

func initRouter() {
	router = api.NewRouter(api.Config{
		Addr:        fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:     "/api",
		Controllers: []api_i.Controller{monitorController},
	})
	appLogger.Info("Router initialized")
}

func simConfig() sim.Config {
	nbAnts := config.Envs.NbAnts
	if nbAnts == 0 {
		nbAnts = config.Envs.MazeRows * config.Envs.MazeCols / 4
	}

	return sim.Config{
		Maze:            world,
		Food:            colony.Pos{Row: int16(config.Envs.MazeRows - 1), Col: int16(config.Envs.MazeCols - 1)},
		Nest:            colony.Pos{Row: 0, Col: 0},
		NbAnts:          nbAnts,
		MaxLife:         config.Envs.MaxLife,
		Workers:         config.Envs.Workers,
		Alpha:           config.Envs.Alpha,
		Beta:            config.Envs.Beta,
		ExplorationCoef: config.Envs.ExplorationCoef,
		MaxTicks:        config.Envs.MaxTicks,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)

	initMaze()

	if config.Envs.DBHost != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		initMongo(connectCtx)
		cancel()
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	} else {
		appLogger.Warning("DB_HOST not set, run records will not be persisted")
	}

	if config.Envs.RedisAddr != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		initRedis(connectCtx)
		cancel()
		defer func() {
			_ = redisClient.Close()
		}()
	} else {
		appLogger.Warning("REDIS_ADDR not set, snapshot pub/sub disabled")
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	cfg := simConfig()
	initSnapshotFeed(cancelRun)
	initCoordinator(cfg)
	initRunner(cfg)
	initMonitorController()
	initRouter()

	go snapshotFeed.Serve()
	defer snapshotFeed.Stop()

	// Run HTTP monitor server
	go func() {
		if err := router.Run(); err != nil {
			appLogger.Error(fmt.Sprintf("Starting monitor server: %v", err))
			os.Exit(1)
		}
	}()

	if err := runner.Run(runCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Simulation run failed: %v", err))
		os.Exit(1)
	}

	status := coordinator.Status()
	appLogger.Info(fmt.Sprintf("Run finished: %d ticks, %d food delivered (first at tick %d)", status.Tick, status.FoodDelivered, status.FirstFoodTick))
}
