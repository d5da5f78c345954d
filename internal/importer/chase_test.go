package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readChaseFixture(t *testing.T) Parsed {
	t.Helper()
	data, err := os.ReadFile("../../testdata/chase_card.csv")
	require.NoError(t, err)

	p := &ChaseParser{}
	parsed, err := p.Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	return parsed
}

func TestChaseParser_Parse(t *testing.T) {
	parsed := readChaseFixture(t)
	require.Len(t, parsed.Rows, 5)
	// payment, bad date, short row
	assert.Equal(t, 3, parsed.Skipped)

	first := parsed.Rows[0]
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", first.Description)
	assert.Equal(t, "Shopping", first.Category)
	assert.Equal(t, "-4.00", first.Amount.StringFixed(2))
	assert.Equal(t, 2025, first.Date.Year())
	assert.Equal(t, 1, int(first.Date.Month()))
	assert.Equal(t, 3, first.Date.Day())
	assert.Equal(t, 1, first.Row)
}

func TestChaseParser_CleansAmounts(t *testing.T) {
	parsed := readChaseFixture(t)
	byDesc := make(map[string]string)
	for _, r := range parsed.Rows {
		byDesc[r.Description] = r.Amount.StringFixed(2)
	}
	assert.Equal(t, "-1023.45", byDesc["TRADER JOE'S #552"])
	assert.Equal(t, "-6.75", byDesc["CORNER CAFE"])
	assert.Equal(t, "12.99", byDesc["AMAZON MKTPL REFUND"])
	assert.Equal(t, "0.00", byDesc["MYSTERY FEE"], "unparsable amount defaults to zero")
}

func TestChaseParser_DropsPayments(t *testing.T) {
	for _, r := range readChaseFixture(t).Rows {
		assert.NotContains(t, r.Description, "Payment Thank You")
	}
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	parsed, err := p.Parse(strings.NewReader("Transaction Date,Post Date,Description,Category,Type,Amount\n"))
	require.NoError(t, err)
	assert.Nil(t, parsed.Rows)
	assert.Zero(t, parsed.Skipped)
}

func TestChaseParser_Format(t *testing.T) {
	p := &ChaseParser{}
	assert.Equal(t, "chase", p.Format())
}

func TestChaseParser_Reference(t *testing.T) {
	parsed := readChaseFixture(t)
	// Reference format: chase_YYYYMMDD_<prefix>
	assert.Equal(t, "chase_20250103_GITHUBPROS", parsed.Rows[0].Reference)
}
