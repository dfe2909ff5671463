package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Host IP for the monitor server
	RESTPort int    // Port for the REST monitor API
	UDPPort  int    // Port for the UDP snapshot feed

	MazeRows int   // Number of rows in the maze
	MazeCols int   // Number of columns in the maze
	MazeSeed int64 // Seed for deterministic maze generation

	NbAnts          int     // Total number of ants across all workers (0 = rows*cols/4)
	MaxLife         int     // Configured maximum ant life in ticks
	Workers         int     // Number of compute workers
	Alpha           float64 // Pheromone reinforcement blend factor
	Beta            float64 // Pheromone evaporation factor per tick
	ExplorationCoef float64 // Probability threshold for random exploration
	MaxTicks        int64   // Stop after this many ticks (0 = run until cancelled)

	RedisAddr    string // Redis address for the snapshot publisher (empty = disabled)
	RedisChannel string // Redis channel snapshots are published on

	DBHost     string // Hostname or IP address for the run database (empty = disabled)
	DBPort     int    // Port number for the run database
	DBUser     string // Username for the run database
	DBPassword string // Password for the run database
	DBName     string // Name of the run database

	GinMode string // Mode for the Gin framework (e.g., release, debug, test)
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Config{
		HostIP:   getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort: getEnvAsIntWithDefault("REST_PORT", 8080),
		UDPPort:  getEnvAsIntWithDefault("UDP_PORT", 9000),

		MazeRows: getEnvAsIntWithDefault("MAZE_ROWS", 25),
		MazeCols: getEnvAsIntWithDefault("MAZE_COLS", 25),
		MazeSeed: int64(getEnvAsIntWithDefault("MAZE_SEED", 12345)),

		NbAnts:          getEnvAsIntWithDefault("NB_ANTS", 0),
		MaxLife:         getEnvAsIntWithDefault("MAX_LIFE", 500),
		Workers:         getEnvAsIntWithDefault("WORKERS", 2),
		Alpha:           getEnvAsFloatWithDefault("ALPHA", 0.9),
		Beta:            getEnvAsFloatWithDefault("BETA", 0.99),
		ExplorationCoef: getEnvAsFloatWithDefault("EXPLORATION_COEF", 0.0),
		MaxTicks:        int64(getEnvAsIntWithDefault("MAX_TICKS", 0)),

		RedisAddr:    getEnvWithDefault("REDIS_ADDR", ""),
		RedisChannel: getEnvWithDefault("REDIS_CHANNEL", "ants:snapshots"),

		DBHost:     getEnvWithDefault("DB_HOST", ""),
		DBPort:     getEnvAsIntWithDefault("DB_PORT", 27017),
		DBUser:     getEnvWithDefault("DB_USER", ""),
		DBPassword: getEnvWithDefault("DB_PASS", ""),
		DBName:     getEnvWithDefault("DB_NAME", "ants"),

		GinMode: getEnvWithDefault("GIN_MODE", "release"),
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves the value of an environment variable as an integer
// or returns a default value if not set. Logs a fatal error if the value cannot be parsed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvAsFloatWithDefault retrieves the value of an environment variable as a float
// or returns a default value if not set. Logs a fatal error if the value cannot be parsed.
func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a float: %v", key, err)
	}
	return value
}
