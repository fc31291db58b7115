package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

const statementHeader = "document_key,entry_no,debit,credit,payer_name,payer_tax_id,payer_account,beneficiary_name,beneficiary_tax_id,beneficiary_account,correspondent_account,memo,value_date,booking_date,debit_currency,credit_currency"

func TestStatementParser_Parse(t *testing.T) {
	input := statementHeader + "\n" +
		`DOC-1,1,,100.50,ACME LLC,204567890,GE29TB0000000123,Our Co,400000001,GE29TB0000000999,,salary march,01.03.2024,02.03.2024,GEL,GEL` + "\n" +
		`DOC-1,2,40,,Our Co,400000001,GE29TB0000000999,Rent Lord,405111222,GE29TB0000000777,GE29TB0000000778,office rent,05.03.2024,05.03.2024,GEL,GEL` + "\n"

	rows, err := (&StatementParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "DOC-1", rows[0].DocumentKey)
	assert.Equal(t, 1, rows[0].EntryNo)
	assert.True(t, rows[0].Credit.Equal(dec("100.50")))
	assert.True(t, rows[0].Debit.IsZero())
	assert.Equal(t, "204567890", rows[0].PayerTaxID)
	assert.Equal(t, "salary march", rows[0].Memo)
	assert.Equal(t, "01.03.2024", rows[0].ValueDateText)

	assert.True(t, rows[1].Debit.Equal(dec("40")))
	assert.Equal(t, "GE29TB0000000778", rows[1].CorrespondentAccount)
}

func TestStatementParser_HeaderOnly(t *testing.T) {
	rows, err := (&StatementParser{}).Parse(strings.NewReader(statementHeader + "\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStatementParser_BadAmount(t *testing.T) {
	input := statementHeader + "\n" +
		`DOC-1,1,,not-a-number,,,,,,,,x,01.03.2024,01.03.2024,GEL,GEL` + "\n"

	_, err := (&StatementParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("statement"))
	assert.NotNil(t, r.Get("STATEMENT"))
	assert.Nil(t, r.Get("unknown"))

	assert.Panics(t, func() { r.Register(&StatementParser{}) })
}
