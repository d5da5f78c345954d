package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func bankASource() model.Source {
	return model.Source{
		ID:   "bankA",
		Name: "Bank A Checking",
		Mappings: []model.ColumnMapping{
			{CSVColumn: "Date", StandardColumn: model.ColumnDate},
			{CSVColumn: "Memo", StandardColumn: model.ColumnDescription},
			{CSVColumn: "Category", StandardColumn: model.ColumnCategory},
			{CSVColumn: "Value", StandardColumn: model.ColumnAmount},
			{CSVColumn: "Balance", StandardColumn: model.ColumnIgnore},
		},
	}
}

func TestMappedParser_MapsByHeaderName(t *testing.T) {
	doc := "Balance,Value,Date,Memo,Extra\n" +
		"900.00,-4.50,2024-01-01,Coffee,x\n" +
		`1000.00,"1,500.00",2024-01-02,Payroll,y` + "\n"
	p := &MappedParser{Source: bankASource()}
	parsed, err := p.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)

	assert.Equal(t, "Coffee", parsed.Rows[0].Description)
	assert.Equal(t, "-4.5", parsed.Rows[0].Amount.String())
	assert.Equal(t, "", parsed.Rows[0].Category)
	assert.Equal(t, "1500", parsed.Rows[1].Amount.String())
	assert.Equal(t, 2, parsed.Rows[1].Row)
}

func TestMappedParser_FiltersIncompleteRows(t *testing.T) {
	doc := "Date,Memo,Value\n" +
		"2024-01-01,Coffee,-4.50\n" +
		",No date,-1.00\n" +
		"2024-01-02,,-2.00\n" +
		"2024-01-03,Zero,0.00\n" +
		"2024-01-04,Garbage,abc\n" +
		"garbage,Bad date,-3.00\n"
	p := &MappedParser{Source: bankASource()}
	parsed, err := p.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, 5, parsed.Skipped)
}

func TestMappedParser_Flip(t *testing.T) {
	src := bankASource()
	src.FlipIncomeExpense = true
	doc := "Date,Memo,Value\n2024-01-01,Card purchase,25.00\n2024-01-02,Card refund,-5.00\n"
	p := &MappedParser{Source: src}
	parsed, err := p.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
	assert.True(t, parsed.Rows[0].Amount.IsNegative())
	assert.True(t, parsed.Rows[1].Amount.IsPositive())
}

func TestMappedParser_MissingRequiredColumnDropsEverything(t *testing.T) {
	src := model.Source{ID: "noamount", Mappings: []model.ColumnMapping{
		{CSVColumn: "Date", StandardColumn: model.ColumnDate},
		{CSVColumn: "Memo", StandardColumn: model.ColumnDescription},
	}}
	doc := "Date,Memo,Value\n2024-01-01,Coffee,-4.50\n"
	p := &MappedParser{Source: src}
	parsed, err := p.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, parsed.Rows)
	assert.Equal(t, 1, parsed.Skipped)
}

func TestMappedParser_SourceDateFormat(t *testing.T) {
	src := bankASource()
	src.DateFormat = "02/01/2006"
	doc := "Date,Memo,Value\n13/02/2024,Lunch,-9.00\n"
	p := &MappedParser{Source: src}
	parsed, err := p.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 1)
	assert.Equal(t, 13, parsed.Rows[0].Date.Day())
	assert.Equal(t, 2, int(parsed.Rows[0].Date.Month()))
}
