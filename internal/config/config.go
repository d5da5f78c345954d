package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/model"
)

// FileName is the config file at the root of a household repo.
const FileName = "tally.yaml"

// ErrUnknownSource is returned when a source ID is not configured.
var ErrUnknownSource = errors.New("unknown source")

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Household HouseholdConfig `yaml:"household"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Sources   []SourceConfig  `yaml:"sources,omitempty"`
	Suggest   SuggestConfig   `yaml:"suggest"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Git       GitConfig       `yaml:"git"`
}

// HouseholdConfig names the household and its members.
type HouseholdConfig struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members,omitempty"`
}

// LedgerConfig locates the ledger file, relative to the repo root.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig is one configured import source.
type SourceConfig struct {
	ID                string          `yaml:"id"`
	Name              string          `yaml:"name"`
	FlipIncomeExpense bool            `yaml:"flip_income_expense,omitempty"`
	DateFormat        string          `yaml:"date_format,omitempty"`
	Mappings          []MappingConfig `yaml:"mappings"`
}

// MappingConfig maps one CSV header to a standard column.
type MappingConfig struct {
	CSVColumn      string `yaml:"csv_column"`
	StandardColumn string `yaml:"standard_column"`
}

// SuggestConfig tunes category suggestion.
type SuggestConfig struct {
	MaxCandidates int     `yaml:"max_candidates"`
	MinSimilarity float64 `yaml:"min_similarity"`
	Learned       bool    `yaml:"learned"`
	LearnedFloor  float64 `yaml:"learned_floor"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new household.
func Default(householdName string, members []string) *Config {
	b := categorize.DefaultBudget()
	return &Config{
		Household: HouseholdConfig{
			Name:    householdName,
			Members: members,
		},
		Ledger: LedgerConfig{Path: "ledger.csv"},
		Suggest: SuggestConfig{
			MaxCandidates: b.MaxCandidates,
			MinSimilarity: b.MinSimilarity,
			Learned:       b.Learned,
			LearnedFloor:  b.LearnedFloor,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{Addr: ":8080"},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// Validate checks every configured source mapping and rejects duplicate IDs.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for _, sc := range c.Sources {
		if seen[sc.ID] {
			return fmt.Errorf("source %s: configured twice", sc.ID)
		}
		seen[sc.ID] = true
		if err := sc.Model().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Source returns the configured source with the given ID.
func (c *Config) Source(id string) (model.Source, error) {
	for _, sc := range c.Sources {
		if sc.ID == id {
			return sc.Model(), nil
		}
	}
	return model.Source{}, fmt.Errorf("%w: %q", ErrUnknownSource, id)
}

// Budget converts the suggest section to a categorize.Budget.
func (c *Config) Budget() categorize.Budget {
	return categorize.Budget{
		MaxCandidates: c.Suggest.MaxCandidates,
		MinSimilarity: c.Suggest.MinSimilarity,
		Learned:       c.Suggest.Learned,
		LearnedFloor:  c.Suggest.LearnedFloor,
	}
}

// LedgerPath returns the ledger path, defaulting to ledger.csv.
func (c *Config) LedgerPath() string {
	if c.Ledger.Path == "" {
		return "ledger.csv"
	}
	return c.Ledger.Path
}

// Model converts a SourceConfig to a model.Source.
func (sc SourceConfig) Model() model.Source {
	mappings := make([]model.ColumnMapping, len(sc.Mappings))
	for i, m := range sc.Mappings {
		mappings[i] = model.ColumnMapping{
			CSVColumn:      m.CSVColumn,
			StandardColumn: model.StandardColumn(m.StandardColumn),
		}
	}
	return model.Source{
		ID:                sc.ID,
		Name:              sc.Name,
		Mappings:          mappings,
		FlipIncomeExpense: sc.FlipIncomeExpense,
		DateFormat:        sc.DateFormat,
	}
}
