package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

const sampleOFX = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<?OFX OFXHEADER="200" VERSION="203" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>
<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS><CODE>0</CODE><SEVERITY>INFO</SEVERITY></STATUS>
<DTSERVER>20240105120000.000[-5:EST]</DTSERVER>
<LANGUAGE>ENG</LANGUAGE>
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1001</TRNUID>
<STATUS><CODE>0</CODE><SEVERITY>INFO</SEVERITY></STATUS>
<STMTRS>
<CURDEF>USD</CURDEF>
<BANKACCTFROM><BANKID>121000248</BANKID><ACCTID>000123</ACCTID><ACCTTYPE>CHECKING</ACCTTYPE></BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000.000[-5:EST]</DTSTART>
<DTEND>20240105120000.000[-5:EST]</DTEND>
<STMTTRN>
<TRNTYPE>DEBIT</TRNTYPE>
<DTPOSTED>20240102120000.000[-5:EST]</DTPOSTED>
<TRNAMT>-100.00</TRNAMT>
<FITID>A1</FITID>
<NAME>Transfer to savings</NAME>
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT</TRNTYPE>
<DTPOSTED>20240103120000.000[-5:EST]</DTPOSTED>
<TRNAMT>2500.50</TRNAMT>
<FITID>A2</FITID>
<NAME>Payroll</NAME>
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL><BALAMT>4000.00</BALAMT><DTASOF>20240105120000.000[-5:EST]</DTASOF></LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestOFXParser_Parse(t *testing.T) {
	p := &OFXParser{}
	parsed, err := p.Parse(strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)

	assert.Equal(t, "Transfer to savings", parsed.Rows[0].Description)
	assert.Equal(t, "-100.00", parsed.Rows[0].Amount.StringFixed(2))
	assert.Equal(t, 2, parsed.Rows[0].Date.Day())
	assert.Equal(t, "A1", parsed.Rows[0].Reference)
	assert.Equal(t, "2500.50", parsed.Rows[1].Amount.StringFixed(2))
}

func TestImportFormat_OFX(t *testing.T) {
	res, err := newTestImporter().ImportFormat("ofx", strings.NewReader(sampleOFX), ImportOptions{User: "bob"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, model.TypeExpense, res.Transactions[0].Type)
	assert.Equal(t, model.TypeIncome, res.Transactions[1].Type)
	assert.Equal(t, ManualSourceName, res.Transactions[0].Metadata.SourceName)
}

func TestOFXParser_Garbage(t *testing.T) {
	p := &OFXParser{}
	_, err := p.Parse(strings.NewReader("this is not ofx"))
	assert.Error(t, err)
}

func TestImportFormat_OFXGarbageIsParseError(t *testing.T) {
	_, err := newTestImporter().ImportFormat("ofx", strings.NewReader("this is not ofx"), ImportOptions{})
	assert.ErrorIs(t, err, ErrParse)
}
