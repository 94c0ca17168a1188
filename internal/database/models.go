package database

import "fmt"

// TableMetadata is one ingested table description: the schema text is
// what the SQL generation prompt receives.
type TableMetadata struct {
	ID          string
	Name        string
	Description string
	SchemaText  string
	Distance    float64
	Rank        float64
}

func (t *TableMetadata) Print() string {
	return fmt.Sprintf("Table: %s - %s", t.Name, t.Description)
}
