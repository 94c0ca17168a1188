// Package setup loads the environment configuration and wires the
// pipeline dependencies shared by the API, MCP and ingestion binaries.
package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/text2sql-agent/internal/agents"
	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/database"
	"github.com/povarna/text2sql-agent/internal/embedding"
	"github.com/povarna/text2sql-agent/internal/executor"
	"github.com/povarna/text2sql-agent/internal/guardrails"
	"github.com/povarna/text2sql-agent/internal/redis"
	"github.com/povarna/text2sql-agent/internal/session"
	"github.com/povarna/text2sql-agent/internal/tables"
	"github.com/povarna/text2sql-agent/internal/text2sql"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AWSRegion            string
	ClaudeModelID        string
	ClaudeMiniModelID    string
	EmbeddingModelID     string
	DBHost               string
	DBPort               string
	DBUser               string
	DBPassword           string
	DBName               string
	DBSSLMode            string
	QueryTimeout         time.Duration
	RedisAddr            string
	RedisPassword        string
	SessionTTL           time.Duration
	SessionStore         string
	GuardrailsConfigPath string
	MaxConnRetries       int
}

type Dependencies struct {
	Service *text2sql.Service
	Engine  *guardrails.Engine
	Store   session.Store
	DB      *database.DB
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:        getEnv("CLAUDE_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),
		ClaudeMiniModelID:    getEnv("CLAUDE_MINI_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
		EmbeddingModelID:     getEnv("EMBEDDING_MODEL_ID", "amazon.titan-embed-text-v2:0"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", "postgres"),
		DBName:               getEnv("DB_NAME", "text2sql"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		QueryTimeout:         getEnvDuration("QUERY_TIMEOUT", 30*time.Second),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		SessionTTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionStore:         getEnv("SESSION_STORE", "redis"),
		GuardrailsConfigPath: getEnv("GUARDRAILS_CONFIG_PATH", ""),
		MaxConnRetries:       getEnvInt("MAX_CONN_RETRIES", 5),
	}
}

// Wire builds the full query pipeline. The returned dependencies share
// one database pool; the caller owns its lifetime via deps.DB.Close.
func Wire(ctx context.Context, cfg *Config) (*Dependencies, error) {
	db, err := database.NewWithBackoff(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, cfg.MaxConnRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := createSessionStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	// The mini model handles routing and chart specs, the main model
	// handles SQL generation and answer polishing.
	mainClient, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	miniClient, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeMiniModelID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create Bedrock mini client: %w", err)
	}

	embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.EmbeddingModelID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	retriever := tables.NewRetriever(miniClient, embedder, db)

	engine, err := createEngine(ctx, cfg, retriever)
	if err != nil {
		db.Close()
		return nil, err
	}

	runner := database.NewRunner(db, cfg.QueryTimeout)
	batch := executor.NewBatchExecutor(engine, runner)

	service := text2sql.NewService(
		agents.NewRouter(miniClient),
		agents.NewSQLAgent(mainClient),
		agents.NewChartAgent(miniClient),
		agents.NewFinalAgent(mainClient),
		retriever,
		batch,
		store,
		mainClient,
		cfg.ClaudeModelID,
	)

	return &Dependencies{
		Service: service,
		Engine:  engine,
		Store:   store,
		DB:      db,
	}, nil
}

// createEngine loads the guardrail configuration and seeds the table
// allow-list from the retriever's metadata catalog.
func createEngine(ctx context.Context, cfg *Config, retriever *tables.Retriever) (*guardrails.Engine, error) {
	guardrailsConfig := guardrails.DefaultConfig()
	if cfg.GuardrailsConfigPath != "" {
		loaded, err := guardrails.LoadConfigFile(cfg.GuardrailsConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load guardrails config: %w", err)
		}
		guardrailsConfig = loaded
	}

	names, err := retriever.ListAvailableTables(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load table names for guardrails, keeping configured allow-list")
	} else if len(names) > 0 {
		guardrailsConfig.KnownTables = names
	}

	return guardrails.NewEngine(guardrailsConfig), nil
}

func createSessionStore(ctx context.Context, cfg *Config) (session.Store, error) {
	if cfg.SessionStore == "memory" {
		return session.NewMemoryStore(), nil
	}

	client, err := redis.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.MaxConnRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return session.NewRedisStore(client, cfg.SessionTTL), nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}
