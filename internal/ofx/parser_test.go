package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-ledger/internal/model"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250101120000[0:GMT]
<DTEND>20250131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250105120000[0:GMT]
<TRNAMT>-325.50
<FITID>2025010501
<NAME>POS PURCHASE HALAL MEAT SUPPLY
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250109120000[0:GMT]
<TRNAMT>-88.10
<FITID>2025010901
<NAME>DEBIT
<MEMO>GREEN VALLEY PRODUCE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250110120000[0:GMT]
<TRNAMT>1500.00
<FITID>2025011001
<NAME>CARD SETTLEMENT
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>4000.00
<DTASOF>20250131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20250101120000[0:GMT]
<DTEND>20250131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250112120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2025011201
<NAME>01/12 CLEANCO SUPPLIES
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-45.99
<DTASOF>20250131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile_Bank(t *testing.T) {
	entries, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, "1234567890", first.Account)
	assert.Equal(t, "2025010501", first.FITID)
	assert.Equal(t, "1234567890:2025010501", first.ExternalID())
	assert.Equal(t, "-325.5", first.Amount.String())
	assert.Equal(t, "HALAL MEAT SUPPLY", first.Payee)
	assert.True(t, first.IsDebit())

	assert.Equal(t, "GREEN VALLEY PRODUCE", entries[1].Payee, "generic names fall back to the memo")
	assert.False(t, entries[2].IsDebit())
}

func TestParseFile_CreditCard(t *testing.T) {
	entries, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "4111111111111111", entries[0].Account)
	assert.Equal(t, "CLEANCO SUPPLIES", entries[0].Payee)
}

func TestParseFile_Invalid(t *testing.T) {
	_, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader("not an ofx file"))
	assert.Error(t, err)
}

func TestExpenses(t *testing.T) {
	entries, err := NewParser(nil).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	expenses := Expenses(entries, 7, 3)
	require.Len(t, expenses, 2, "credits are not expenses")

	e := expenses[0]
	assert.Equal(t, "325.5", e.Amount.String())
	assert.Equal(t, 7, e.CategoryID)
	assert.Equal(t, int64(3), e.UserID)
	assert.Equal(t, "HALAL MEAT SUPPLY", e.Notes)
	assert.Equal(t, "1234567890:2025010501", e.ExternalID)
	assert.Equal(t, model.Day(e.Date), e.Date)
	assert.Equal(t, "2025-01-05", e.Date.Format(model.DateLayout))
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  OFXHEADER:100\n<SEVERITY>Warn</SEVERITY>\n<CODE\n"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "OFXHEADER:100"))
	assert.Contains(t, out, "<SEVERITY>WARN</SEVERITY>")
	assert.Contains(t, out, "<CODE>\n")
}
