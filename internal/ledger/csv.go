package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Header is the CSV header for ledger.csv.
const Header = "id,date,description,category,amount,type,user,labels,source_id,source_name,imported_at,is_transfer,transfer_id,transfer_type,excluded,user_override"

const (
	numFields      = 16
	dateFormat     = "2006-01-02"
	labelSep       = ";"
	colID          = 0
	colDate        = 1
	colDesc        = 2
	colCategory    = 3
	colAmount      = 4
	colType        = 5
	colUser        = 6
	colLabels      = 7
	colSourceID    = 8
	colSourceName  = 9
	colImportedAt  = 10
	colIsTransfer  = 11
	colTransferID  = 12
	colTransferTyp = 13
	colExcluded    = 14
	colOverride    = 15
)

// ReadTransactions reads all transactions from a ledger.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// WriteTransactions writes transactions to a ledger.csv writer (including header).
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = t.ID
	row[colDate] = t.Date.Format(dateFormat)
	row[colDesc] = t.Description
	row[colCategory] = t.Category
	row[colAmount] = formatAmount(t.Amount)
	row[colType] = string(t.Type)
	row[colUser] = t.User
	row[colLabels] = strings.Join(t.Labels, labelSep)
	row[colSourceID] = t.Metadata.SourceID
	row[colSourceName] = t.Metadata.SourceName
	if !t.Metadata.ImportedAt.IsZero() {
		row[colImportedAt] = t.Metadata.ImportedAt.Format(time.RFC3339)
	}

	if ti := t.Transfer; ti != nil {
		row[colIsTransfer] = strconv.FormatBool(ti.IsTransfer)
		row[colTransferID] = ti.TransferID
		row[colTransferTyp] = string(ti.TransferType)
		row[colExcluded] = strconv.FormatBool(ti.ExcludedFromCalculations)
		row[colOverride] = strconv.FormatBool(ti.UserOverride)
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var importedAt time.Time
	if record[colImportedAt] != "" {
		importedAt, err = time.Parse(time.RFC3339, record[colImportedAt])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing imported_at %q: %w", record[colImportedAt], err)
		}
	}

	var labels []string
	if record[colLabels] != "" {
		labels = strings.Split(record[colLabels], labelSep)
	}

	t := model.Transaction{
		ID:          record[colID],
		Date:        date,
		Description: record[colDesc],
		Category:    record[colCategory],
		Amount:      amount,
		Type:        model.TxnType(record[colType]),
		User:        record[colUser],
		Labels:      labels,
		Metadata: model.Metadata{
			SourceID:   record[colSourceID],
			SourceName: record[colSourceName],
			ImportedAt: importedAt,
		},
	}

	if record[colIsTransfer] != "" {
		ti, err := unmarshalTransfer(record)
		if err != nil {
			return model.Transaction{}, err
		}
		t.Transfer = ti
	}
	return t, nil
}

func unmarshalTransfer(record []string) (*model.TransferInfo, error) {
	flags := make([]bool, 0, 3)
	for _, col := range []int{colIsTransfer, colExcluded, colOverride} {
		b, err := strconv.ParseBool(record[col])
		if err != nil {
			return nil, fmt.Errorf("parsing transfer flag %q: %w", record[col], err)
		}
		flags = append(flags, b)
	}
	return &model.TransferInfo{
		IsTransfer:               flags[0],
		TransferID:               record[colTransferID],
		TransferType:             model.TransferType(record[colTransferTyp]),
		ExcludedFromCalculations: flags[1],
		UserOverride:             flags[2],
	}, nil
}

// formatAmount keeps cents visible without dropping finer precision.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}
