package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tally-dev/tally/internal/model"
)

// DefaultPath is the ledger location relative to the household repo root.
const DefaultPath = "ledger.csv"

// Store reads and writes the ledger file.
type Store struct {
	path string
}

// NewStore creates a Store for the ledger at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger file path.
func (s *Store) Path() string { return s.path }

// Load reads the whole ledger. A missing file is an empty ledger.
func (s *Store) Load() ([]model.Transaction, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", s.path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", s.path, err)
	}
	return txns, nil
}

// Save replaces the ledger with txns. The file is written next to the
// destination and renamed into place so readers never see a partial ledger.
func (s *Store) Save(txns []model.Transaction) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := WriteTransactions(tmp, txns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}
