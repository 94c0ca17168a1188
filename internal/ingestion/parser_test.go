package ingestion

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	content := `[
		{"name": "customer_information", "description": "Customer profiles", "schema": "CREATE TABLE customer_information (id INT)"},
		{"name": "transaction_history", "description": "Transactions", "schema": "CREATE TABLE transaction_history (id INT)"}
	]`
	path := writeFile(t, "tables.json", content)

	docs, err := NewParser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("docs: %d, want: 2", len(docs))
	}
	if docs[0].Name != "customer_information" {
		t.Errorf("first table: %q", docs[0].Name)
	}
	if docs[1].Schema == "" {
		t.Errorf("second table missing schema")
	}
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "wrong extension", file: "tables.txt", content: "[]"},
		{name: "empty file", file: "tables.json", content: ""},
		{name: "invalid JSON", file: "tables.json", content: "{not json"},
		{name: "empty array", file: "tables.json", content: "[]"},
		{name: "missing name", file: "tables.json", content: `[{"description": "x", "schema": "y"}]`},
		{name: "missing schema", file: "tables.json", content: `[{"name": "t", "description": "x"}]`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeFile(t, test.file, test.content)
			if _, err := NewParser().ParseFile(path); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
