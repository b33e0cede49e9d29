package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP          string  // Host IP for the server
	RESTPort        int     // Port for the REST API
	MongoURI        string  // Connection string for MongoDB
	DBName          string  // Name of the database
	RedisAddr       string  // Address of the Redis server
	RedisPassword   string  // Password for the Redis server
	GinMode         string  // Mode for the Gin framework (e.g., release, debug, test)
	JWTSecret       string  // Secret key for JWT signing
	JWTIssuer       string  // Issuer claim for JWTs
	MazeWidth       int     // Default maze width in cells
	MazeHeight      int     // Default maze height in cells
	MazeSeed        *int64  // Seed for reproducible mazes, nil for a random one
	MazeObstacles   int     // Default number of obstacles to place
	CellSize        float64 // Side of a cell in metres
	WallThreshold   float64 // Sensor distance at or below which a wall is reported
	SensorRetries   int     // Extra attempts for a failed distance reading
	ActuatorRetries int     // Extra attempts for a failed pose change
	SettleDelayMs   int     // Simulated robot settle time after each pose change
	CacheTTLSeconds int     // Lifetime of cached mazes
	RunLockSeconds  int     // Expiry of the per-maze exploration lock
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present. Missing values fall back to defaults; malformed
// numbers are reported as *maze.ConfigError.
func Load() (Config, error) {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	var (
		cfg Config
		err error
	)
	cfg.HostIP = getEnvWithDefault("HOST_IP", "0.0.0.0")
	cfg.MongoURI = getEnvWithDefault("MONGO_URI", "mongodb://localhost:27017")
	cfg.DBName = getEnvWithDefault("DB_NAME", "vinom_maze")
	cfg.RedisAddr = getEnvWithDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnvWithDefault("REDIS_PASSWORD", "")
	cfg.GinMode = getEnvWithDefault("GIN_MODE", "release")
	cfg.JWTSecret = getEnvWithDefault("JWT_SECRET", "")
	cfg.JWTIssuer = getEnvWithDefault("JWT_ISSUER", "vinom-maze")

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"REST_PORT", 8080, &cfg.RESTPort},
		{"MAZE_WIDTH", 10, &cfg.MazeWidth},
		{"MAZE_HEIGHT", 10, &cfg.MazeHeight},
		{"MAZE_OBSTACLES", 5, &cfg.MazeObstacles},
		{"SENSOR_RETRIES", 2, &cfg.SensorRetries},
		{"ACTUATOR_RETRIES", 2, &cfg.ActuatorRetries},
		{"SETTLE_DELAY_MS", 0, &cfg.SettleDelayMs},
		{"CACHE_TTL_SECONDS", 3600, &cfg.CacheTTLSeconds},
		{"RUN_LOCK_SECONDS", 300, &cfg.RunLockSeconds},
	}
	for _, v := range ints {
		if *v.dst, err = getEnvAsInt(v.key, v.def); err != nil {
			return Config{}, err
		}
	}

	if cfg.CellSize, err = getEnvAsFloat("CELL_SIZE", 2.0); err != nil {
		return Config{}, err
	}
	if cfg.WallThreshold, err = getEnvAsFloat("WALL_THRESHOLD", 1.1); err != nil {
		return Config{}, err
	}

	if value, exists := os.LookupEnv("MAZE_SEED"); exists && value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return Config{}, &maze.ConfigError{Field: "MAZE_SEED", Reason: fmt.Sprintf("must be an integer, got %q", value)}
		}
		cfg.MazeSeed = &seed
	}

	return cfg, nil
}

// getEnvAsInt retrieves the value of an environment variable as an integer or returns a default value if not set.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, &maze.ConfigError{Field: key, Reason: fmt.Sprintf("must be an integer, got %q", valueStr)}
	}
	return value, nil
}

// getEnvAsFloat retrieves the value of an environment variable as a float or returns a default value if not set.
func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, &maze.ConfigError{Field: key, Reason: fmt.Sprintf("must be a number, got %q", valueStr)}
	}
	return value, nil
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
