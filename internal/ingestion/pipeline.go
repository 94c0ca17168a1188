package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/povarna/text2sql-agent/internal/database"
	"github.com/povarna/text2sql-agent/internal/embedding"
	"github.com/rs/zerolog/log"
)

type Pipeline struct {
	parser   *Parser
	embedder *embedding.BedrockEmbedder
	db       *database.DB
}

func NewPipeline(parser *Parser, embedder *embedding.BedrockEmbedder, db *database.DB) *Pipeline {
	return &Pipeline{
		parser:   parser,
		embedder: embedder,
		db:       db,
	}
}

// IngestMetadataFile parses a table-metadata JSON file, embeds the
// table descriptions and stores everything in one transaction.
func (p *Pipeline) IngestMetadataFile(ctx context.Context, filePath string) error {
	log.Info().Str("file", filePath).Msg("Starting ingestion")

	docs, err := p.parser.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	log.Info().Int("tables", len(docs)).Msg("Metadata file parsed")

	// The embedding input combines description and schema so both
	// vocabulary levels are searchable.
	texts := make([]string, 0, len(docs))
	metas := make([]database.TableMetadata, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Description+"\n"+doc.Schema)
		metas = append(metas, database.TableMetadata{
			ID:          uuid.New().String(),
			Name:        doc.Name,
			Description: doc.Description,
			SchemaText:  doc.Schema,
		})
	}

	embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	log.Info().Msg("Embeddings generated successfully")

	if err := p.db.StoreTableMetadataBatch(ctx, metas, embeddings); err != nil {
		return fmt.Errorf("failed to store table metadata: %w", err)
	}

	log.Info().Int("tables", len(metas)).Msg("Ingestion complete")
	return nil
}
