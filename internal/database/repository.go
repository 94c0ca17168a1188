package database

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// StoreTableMetadata upserts one table description with its embedding.
func (db *DB) StoreTableMetadata(ctx context.Context, meta TableMetadata, embedding []float32) error {
	query := `
        INSERT INTO table_metadata (id, name, description, schema_text, embedding, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (name) DO UPDATE SET
            description = EXCLUDED.description,
            schema_text = EXCLUDED.schema_text,
            embedding = EXCLUDED.embedding,
            updated_at = NOW()
    `

	vector := pgvector.NewVector(embedding)
	_, err := db.Pool.Exec(ctx, query, meta.ID, meta.Name, meta.Description, meta.SchemaText, vector)
	if err != nil {
		return fmt.Errorf("failed to store table metadata for %s: %w", meta.Name, err)
	}

	log.Info().Str("table", meta.Name).Msg("Table metadata stored")
	return nil
}

// StoreTableMetadataBatch upserts a set of table descriptions in one
// transaction. Either every table lands or none do.
func (db *DB) StoreTableMetadataBatch(ctx context.Context, metas []TableMetadata, embeddings [][]float32) error {
	if len(metas) != len(embeddings) {
		return fmt.Errorf("metadata/embedding count mismatch: %d vs %d", len(metas), len(embeddings))
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO table_metadata (id, name, description, schema_text, embedding, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (name) DO UPDATE SET
            description = EXCLUDED.description,
            schema_text = EXCLUDED.schema_text,
            embedding = EXCLUDED.embedding,
            updated_at = NOW()
    `

	for i, meta := range metas {
		vector := pgvector.NewVector(embeddings[i])
		if _, err := tx.Exec(ctx, query, meta.ID, meta.Name, meta.Description, meta.SchemaText, vector); err != nil {
			return fmt.Errorf("failed to store table %s: %w", meta.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().Int("tables", len(metas)).Msg("Table metadata batch stored")
	return nil
}

// DeleteTableMetadata removes one table description by name.
func (db *DB) DeleteTableMetadata(ctx context.Context, name string) error {
	query := `DELETE FROM table_metadata WHERE name = $1`

	result, err := db.Pool.Exec(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete table metadata for %s: %w", name, err)
	}

	if result.RowsAffected() == 0 {
		log.Warn().Str("table", name).Msg("Table metadata not found")
	} else {
		log.Info().Str("table", name).Msg("Table metadata deleted")
	}

	return nil
}

// ListTableNames returns the names of every ingested table. This is the
// source of the guardrail known-table allow-list.
func (db *DB) ListTableNames(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM table_metadata ORDER BY name`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch table names: %w", err)
	}

	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return names, nil
}

// ListTables returns name and description for every ingested table,
// for the table-routing prompt.
func (db *DB) ListTables(ctx context.Context) ([]TableMetadata, error) {
	query := `SELECT id, name, description, schema_text FROM table_metadata ORDER BY name`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch tables: %w", err)
	}

	defer rows.Close()

	var tables []TableMetadata
	for rows.Next() {
		var meta TableMetadata
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.SchemaText); err != nil {
			return nil, fmt.Errorf("failed to scan table metadata: %w", err)
		}
		tables = append(tables, meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tables, nil
}

// GetTableByName returns the stored metadata for one table.
func (db *DB) GetTableByName(ctx context.Context, name string) (*TableMetadata, error) {
	query := `SELECT id, name, description, schema_text FROM table_metadata WHERE name = $1`

	var meta TableMetadata
	row := db.Pool.QueryRow(ctx, query, name)
	if err := row.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.SchemaText); err != nil {
		return nil, fmt.Errorf("failed to fetch table %s: %w", name, err)
	}

	return &meta, nil
}

// SemanticSearch returns the tables closest to the query embedding.
func (db *DB) SemanticSearch(ctx context.Context, queryEmbeddings []float32, limit int) ([]TableMetadata, error) {
	pgvectorEmbeddings := pgvector.NewVector(queryEmbeddings)

	query := `
	SELECT
	  id,
	  name,
	  description,
	  schema_text,
	  embedding <=> $1 AS distance
	FROM table_metadata
	ORDER BY distance ASC
	LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, pgvectorEmbeddings, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query the database: %w", err)
	}

	defer rows.Close()

	var tables []TableMetadata
	for rows.Next() {
		var meta TableMetadata
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.SchemaText, &meta.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan table metadata: %w", err)
		}
		tables = append(tables, meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tables, nil
}

// KeywordSearch matches table descriptions with full-text search, used
// when no embedding is available for the query.
func (db *DB) KeywordSearch(ctx context.Context, userQuery string, limit int) ([]TableMetadata, error) {
	query := `
		SELECT
			id,
			name,
			description,
			schema_text,
			ts_rank(description_tsvector, plainto_tsquery('english', $1)) AS rank
		FROM table_metadata
		WHERE description_tsvector @@ plainto_tsquery('english', $1)
		ORDER BY rank DESC
		LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, userQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	defer rows.Close()

	var tables []TableMetadata
	for rows.Next() {
		var meta TableMetadata
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Description, &meta.SchemaText, &meta.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan table metadata: %w", err)
		}
		tables = append(tables, meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tables, nil
}
