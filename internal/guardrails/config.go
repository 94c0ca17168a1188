package guardrails

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable limits consumed by the Engine. It is
// read-only during validation; apply changes through Engine.UpdateConfig
// at startup/reconfiguration time only.
type Config struct {
	// Row limits
	MaxRows          int `yaml:"max_rows" json:"max_rows"`
	DefaultRowLimit  int `yaml:"default_row_limit" json:"default_row_limit"`
	WarnRowThreshold int `yaml:"warn_row_threshold" json:"warn_row_threshold"`

	// Performance
	MaxJoins       int `yaml:"max_joins" json:"max_joins"`
	MaxSubqueries  int `yaml:"max_subqueries" json:"max_subqueries"`
	MaxQueryLength int `yaml:"max_query_length" json:"max_query_length"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// Safety
	AllowModifications    bool `yaml:"allow_modifications" json:"allow_modifications"`
	AllowSchemaChanges    bool `yaml:"allow_schema_changes" json:"allow_schema_changes"`
	RequireWhereForDelete bool `yaml:"require_where_for_delete" json:"require_where_for_delete"`

	// Schema
	ValidateTables  bool     `yaml:"validate_tables" json:"validate_tables"`
	ValidateColumns bool     `yaml:"validate_columns" json:"validate_columns"`
	KnownTables     []string `yaml:"known_tables" json:"known_tables"`
}

// DefaultConfig returns the documented default limits.
func DefaultConfig() Config {
	return Config{
		MaxRows:          10000,
		DefaultRowLimit:  1000,
		WarnRowThreshold: 5000,

		MaxJoins:       5,
		MaxSubqueries:  3,
		MaxQueryLength: 5000,
		TimeoutSeconds: 30,

		AllowModifications:    false,
		AllowSchemaChanges:    false,
		RequireWhereForDelete: true,

		ValidateTables:  true,
		ValidateColumns: false,
		KnownTables: []string{
			"customer_information",
			"transaction_history",
			"crs",
			"crs_account_report",
			"crs_countrycode",
			"crs_messagespec",
		},
	}
}

// LoadConfigFile reads limit overrides from a YAML file on top of the
// defaults. Keys absent from the file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read guardrails config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse guardrails config: %w", err)
	}

	return cfg, nil
}
