package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func checkingSource() SourceConfig {
	return SourceConfig{
		ID:         "chase-checking",
		Name:       "Chase Checking",
		DateFormat: "01/02/2006",
		Mappings: []MappingConfig{
			{CSVColumn: "Posting Date", StandardColumn: "Transaction Date"},
			{CSVColumn: "Description", StandardColumn: "Description"},
			{CSVColumn: "Amount", StandardColumn: "Amount"},
			{CSVColumn: "Balance", StandardColumn: "Ignore"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := Default("Smith Household", []string{"alice", "bob"})
	cfg.Sources = []SourceConfig{checkingSource()}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Household, got.Household)
	assert.Equal(t, cfg.Ledger, got.Ledger)
	assert.Equal(t, cfg.Log, got.Log)
	assert.Equal(t, cfg.Server, got.Server)
	assert.Equal(t, cfg.Git, got.Git)
	assert.Equal(t, cfg.Suggest.MaxCandidates, got.Suggest.MaxCandidates)
	assert.InDelta(t, cfg.Suggest.MinSimilarity, got.Suggest.MinSimilarity, 0.001)
	assert.InDelta(t, cfg.Suggest.LearnedFloor, got.Suggest.LearnedFloor, 0.001)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, checkingSource(), got.Sources[0])
}

func TestDefaults(t *testing.T) {
	cfg := Default("Home", []string{"alice"})

	assert.Equal(t, "Home", cfg.Household.Name)
	assert.Equal(t, []string{"alice"}, cfg.Household.Members)
	assert.Equal(t, "ledger.csv", cfg.LedgerPath())
	assert.Equal(t, 500, cfg.Suggest.MaxCandidates)
	assert.InDelta(t, 0.5, cfg.Suggest.MinSimilarity, 0.001)
	assert.False(t, cfg.Suggest.Learned)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.Git.AutoCommit)
	assert.Empty(t, cfg.Sources)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Smith Household", []string{"alice", "bob"})
	cfg.Sources = []SourceConfig{checkingSource()}
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Smith Household")
	assert.Contains(t, contents, "csv_column: Posting Date")
	assert.Contains(t, contents, "standard_column: Transaction Date")
	assert.Contains(t, contents, "max_candidates: 500")
	assert.Contains(t, contents, "auto_commit: false")
}

func TestSource(t *testing.T) {
	cfg := Default("Home", nil)
	cfg.Sources = []SourceConfig{checkingSource()}

	src, err := cfg.Source("chase-checking")
	require.NoError(t, err)
	assert.Equal(t, "Chase Checking", src.Name)
	assert.Equal(t, "01/02/2006", src.DateFormat)
	require.Len(t, src.Mappings, 4)
	assert.Equal(t, model.ColumnDate, src.Mappings[0].StandardColumn)

	_, err = cfg.Source("nope")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestValidate(t *testing.T) {
	dup := checkingSource()
	dup.Mappings = append(dup.Mappings, MappingConfig{CSVColumn: "Memo", StandardColumn: "Description"})

	missing := checkingSource()
	missing.Mappings = missing.Mappings[:2]

	unknown := checkingSource()
	unknown.Mappings[3].StandardColumn = "Balance"

	tests := []struct {
		name    string
		sources []SourceConfig
		wantErr string
	}{
		{"valid", []SourceConfig{checkingSource()}, ""},
		{"duplicate id", []SourceConfig{checkingSource(), checkingSource()}, "configured twice"},
		{"column mapped twice", []SourceConfig{dup}, "mapped from both"},
		{"required column missing", []SourceConfig{missing}, "no column mapped"},
		{"unknown column", []SourceConfig{unknown}, "unknown standard column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("Home", nil)
			cfg.Sources = tt.sources
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBudget(t *testing.T) {
	cfg := Default("Home", nil)
	cfg.Suggest.Learned = true
	b := cfg.Budget()
	assert.Equal(t, 500, b.MaxCandidates)
	assert.True(t, b.Learned)
	assert.InDelta(t, 0.9, b.LearnedFloor, 0.001)
}
