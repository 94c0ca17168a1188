package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/text2sql-agent/internal/database"
	"github.com/povarna/text2sql-agent/internal/embedding"
	"github.com/povarna/text2sql-agent/internal/ingestion"
	"github.com/povarna/text2sql-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ingestCommand := flag.Bool("ingest", false, "Ingest table metadata command")
	filePath := flag.String("filePath", "resources/table-metadata.json", "Relative path to the table metadata JSON file")

	deleteCommand := flag.Bool("delete", false, "Delete table metadata command")
	tableName := flag.String("table", "", "Table name to delete")

	listCommand := flag.Bool("list", false, "List ingested tables command")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Unable to load env variables")
	}

	ctx := context.Background()
	cfg := setup.LoadConfig()

	db, err := database.NewWithBackoff(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, cfg.MaxConnRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Database connected")

	switch {
	case *deleteCommand:
		if *tableName == "" {
			log.Fatal().Msg("Table name is required for delete")
		}
		if err := db.DeleteTableMetadata(ctx, *tableName); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete table metadata")
		}
		log.Info().Str("table", *tableName).Msg("Table metadata deleted")

	case *listCommand:
		metas, err := db.ListTables(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Unable to fetch table metadata from DB")
		}
		for _, meta := range metas {
			log.Info().Msg(meta.Print())
		}

	case *ingestCommand:
		embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.EmbeddingModelID)
		if err != nil {
			log.Fatal().Err(err).Msg("Unable to create embedder")
		}

		pipeline := ingestion.NewPipeline(ingestion.NewParser(), embedder, db)
		if err := pipeline.IngestMetadataFile(ctx, *filePath); err != nil {
			log.Fatal().Err(err).Msg("Ingestion failed")
		}
		log.Info().Msg("Ingestion successful!")

	default:
		log.Fatal().Msg("Unsupported command")
	}
}
