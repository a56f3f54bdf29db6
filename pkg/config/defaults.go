package config

import "time"

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

const (
	DefaultEnvFile = ".env"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStoreBackend   = BackendMemory
	DefaultStorageTimeout = 5 * time.Second

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "furnace"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0
	DefaultRedisKey  = "tube_furnace_bookings_v2"

	DefaultSQLitePath = "furnace.db"

	DefaultKafkaTopic = "furnace.bookings"

	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 20

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultFurnaceURL    = "http://localhost:8080"
	DefaultClientTimeout = 10 * time.Second
)
