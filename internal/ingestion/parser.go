package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TableDoc is one entry of a metadata file: everything the retriever
// and SQL prompt need to know about a table.
type TableDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      string `json:"schema"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads a JSON metadata file holding an array of table
// descriptions.
func (p *Parser) ParseFile(path string) ([]TableDoc, error) {
	path = strings.TrimSpace(path)

	ext := filepath.Ext(path)
	if ext != ".json" {
		return nil, fmt.Errorf("unsupported file type %s (expected .json)", ext)
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if len(bytes) == 0 {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	var docs []TableDoc
	if err := json.Unmarshal(bytes, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("file %s contains no table entries", path)
	}

	for i, doc := range docs {
		if doc.Name == "" {
			return nil, fmt.Errorf("entry %d is missing a table name", i)
		}
		if doc.Schema == "" {
			return nil, fmt.Errorf("table %s is missing its schema text", doc.Name)
		}
	}

	return docs, nil
}
