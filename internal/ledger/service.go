package ledger

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/categorize"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/importlog"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/transfer"
)

var (
	// ErrNotFound is returned when a transaction ID is not in the ledger.
	ErrNotFound = errors.New("transaction not found")
	// ErrNoSource is returned when an import names neither a source nor a format.
	ErrNoSource = errors.New("import needs a source or a format")
	// ErrInvalidLedger is returned when a change would break a ledger invariant.
	ErrInvalidLedger = errors.New("ledger validation failed")
)

// Service owns one household ledger. Writers are serialized so each
// read-compute-write cycle sees the previous one's result.
type Service struct {
	mu       sync.Mutex
	repoRoot string
	cfg      *config.Config
	store    *Store
	importer *importer.Importer
	detector *transfer.Detector
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for service events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the clock used for import timestamps and the import log.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a ledger Service for the household repo at repoRoot.
func NewService(repoRoot string, cfg *config.Config, ids id.Generator, opts ...Option) *Service {
	s := &Service{
		repoRoot: repoRoot,
		cfg:      cfg,
		store:    NewStore(filepath.Join(repoRoot, cfg.LedgerPath())),
		detector: transfer.New(ids),
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.importer = importer.New(ids, categorize.NewSuggester(cfg.Budget()), importer.WithClock(s.now))
	return s
}

// ImportParams describes one export to ingest.
type ImportParams struct {
	Reader io.Reader
	// SourceID selects a configured mapped source. When empty, Format picks a
	// built-in parser ("chase", "ofx").
	SourceID string
	Format   string
	User     string
	// Name labels the import in logs and commit messages, usually the file name.
	Name string
}

// ImportReport summarizes one import.
type ImportReport struct {
	Imported   int
	Skipped    int
	Duplicates int
	AutoFilled []importer.AutoFill
	Transfers  []model.TransferPair
	Commit     string
}

// DetectReport summarizes a detection pass.
type DetectReport struct {
	Transfers []model.TransferPair
	Commit    string
}

// TransferView is one persisted transfer with both legs.
type TransferView struct {
	TransferID string
	Type       model.TransferType
	Excluded   bool
	Overridden bool
	Credit     model.Transaction
	Debit      model.Transaction
	Confidence decimal.Decimal
}

// Snapshot returns the current ledger.
func (s *Service) Snapshot() ([]model.Transaction, error) {
	return s.store.Load()
}

// Import ingests an export, merges it into the ledger, detects transfers and
// persists the result.
func (s *Service) Import(p ImportParams) (ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Load()
	if err != nil {
		return ImportReport{}, err
	}

	res, source, err := s.ingest(p, existing)
	if err != nil {
		return ImportReport{}, err
	}

	merged := Merge(existing, res.Transactions)
	detected := s.detector.Detect(merged.Ledger)

	if err := s.save(detected.Ledger); err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{
		Imported:   merged.Added,
		Skipped:    res.Skipped,
		Duplicates: merged.Duplicates,
		AutoFilled: res.AutoFilled,
		Transfers:  detected.Pairs,
	}

	entry := importlog.Entry{
		Timestamp:  s.now().UTC(),
		Action:     importlog.ActionImport,
		Source:     source,
		User:       p.User,
		Imported:   report.Imported,
		Skipped:    report.Skipped,
		Duplicates: report.Duplicates,
		AutoFilled: len(report.AutoFilled),
		Transfers:  len(report.Transfers),
	}
	msg := fmt.Sprintf("import: %s (%d new, %d transfers)", importName(p, source), report.Imported, len(report.Transfers))
	report.Commit, err = s.record(entry, msg)
	if err != nil {
		return report, err
	}

	s.log.Info().
		Str("source", source).
		Str("user", p.User).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("duplicates", report.Duplicates).
		Int("auto_filled", len(report.AutoFilled)).
		Int("transfers", len(report.Transfers)).
		Msg("import complete")
	return report, nil
}

func (s *Service) ingest(p ImportParams, existing []model.Transaction) (importer.Result, string, error) {
	opts := importer.ImportOptions{User: p.User}

	if p.SourceID != "" {
		src, err := s.cfg.Source(p.SourceID)
		if err != nil {
			return importer.Result{}, "", err
		}
		data, err := io.ReadAll(p.Reader)
		if err != nil {
			return importer.Result{}, "", fmt.Errorf("reading import: %w", err)
		}
		return s.importer.ImportMapped(string(data), src, existing, opts), src.ID, nil
	}

	if p.Format == "" {
		return importer.Result{}, "", ErrNoSource
	}
	res, err := s.importer.ImportFormat(p.Format, p.Reader, opts)
	if err != nil {
		return importer.Result{}, "", err
	}
	return res, strings.ToLower(p.Format), nil
}

// Detect re-runs transfer detection over the stored ledger. Nothing is
// written when no new pair is found.
func (s *Service) Detect() (DetectReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Load()
	if err != nil {
		return DetectReport{}, err
	}

	detected := s.detector.Detect(existing)
	report := DetectReport{Transfers: detected.Pairs}
	if len(detected.Pairs) == 0 {
		s.log.Debug().Int("transactions", len(existing)).Msg("no new transfers")
		return report, nil
	}

	if err := s.save(detected.Ledger); err != nil {
		return DetectReport{}, err
	}

	entry := importlog.Entry{
		Timestamp: s.now().UTC(),
		Action:    importlog.ActionDetect,
		Transfers: len(detected.Pairs),
	}
	report.Commit, err = s.record(entry, fmt.Sprintf("detect: %d transfers", len(detected.Pairs)))
	if err != nil {
		return report, err
	}

	s.log.Info().Int("transfers", len(detected.Pairs)).Msg("detection complete")
	return report, nil
}

// Override takes manual control of a transaction's transfer flags. The
// detector never touches an overridden transaction again.
func (s *Service) Override(txnID string, excluded bool) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns, err := s.store.Load()
	if err != nil {
		return model.Transaction{}, err
	}

	idx := -1
	for i, t := range txns {
		if t.ID == txnID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, txnID)
	}

	updated := model.CloneAll(txns)
	t := &updated[idx]
	if t.Transfer == nil {
		t.Transfer = &model.TransferInfo{}
	}
	t.Transfer.UserOverride = true
	t.Transfer.ExcludedFromCalculations = excluded

	if err := s.save(updated); err != nil {
		return model.Transaction{}, err
	}

	entry := importlog.Entry{
		Timestamp: s.now().UTC(),
		Action:    importlog.ActionOverride,
		Source:    t.Metadata.SourceKey(),
		User:      t.User,
	}
	if _, err := s.record(entry, fmt.Sprintf("override: %s excluded=%t", txnID, excluded)); err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().Str("id", txnID).Bool("excluded", excluded).Msg("transfer override")
	return t.Clone(), nil
}

// Transfers lists every persisted transfer, newest first.
func (s *Service) Transfers() ([]TransferView, error) {
	txns, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	legs := make(map[string][]model.Transaction)
	var order []string
	for _, t := range txns {
		if !t.IsPaired() {
			continue
		}
		tid := t.Transfer.TransferID
		if _, ok := legs[tid]; !ok {
			order = append(order, tid)
		}
		legs[tid] = append(legs[tid], t)
	}

	views := make([]TransferView, 0, len(order))
	for _, tid := range order {
		pair := legs[tid]
		if len(pair) != 2 {
			s.log.Warn().Str("transfer_id", tid).Int("legs", len(pair)).Msg("skipping incomplete transfer")
			continue
		}
		credit, debit := pair[0], pair[1]
		if credit.Type != model.TypeIncome {
			credit, debit = debit, credit
		}
		views = append(views, TransferView{
			TransferID: tid,
			Type:       credit.Transfer.TransferType,
			Excluded:   credit.Transfer.ExcludedFromCalculations && debit.Transfer.ExcludedFromCalculations,
			Overridden: credit.IsOverridden() || debit.IsOverridden(),
			Credit:     credit,
			Debit:      debit,
			Confidence: transfer.Confidence(credit, debit),
		})
	}
	return views, nil
}

// save validates txns and replaces the stored ledger.
func (s *Service) save(txns []model.Transaction) error {
	if verrs := Validate(txns); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("%w: %s", ErrInvalidLedger, strings.Join(msgs, "; "))
	}
	return s.store.Save(txns)
}

// record appends to the import log and, when auto-commit is on, commits the
// repo. Returns the commit hash, or "" when nothing was committed.
func (s *Service) record(entry importlog.Entry, message string) (string, error) {
	if err := importlog.Append(s.repoRoot, entry); err != nil {
		return "", err
	}
	if !s.cfg.Git.AutoCommit || !gitops.IsRepo(s.repoRoot) {
		return "", nil
	}

	author := gitops.Author{Name: s.cfg.Git.AuthorName, Email: s.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(s.repoRoot, message, author)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	s.log.Debug().Str("commit", hash).Msg("committed")
	return hash, nil
}

func importName(p ImportParams, source string) string {
	if p.Name != "" {
		return p.Name
	}
	return source
}
