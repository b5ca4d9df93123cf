package txcsv

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ayo6706/txledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderParsesAllKinds(t *testing.T) {
	input := `type, client, tx, amount
deposit, 1, 1, 1.0
withdrawal, 1, 2, 0.5
dispute, 1, 1,
resolve, 1, 1,
chargeback, 1, 1
`
	ops, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Len(t, ops, 5)

	assert.Equal(t, models.Deposit, ops[0].Kind)
	assert.Equal(t, models.ClientID(1), ops[0].Client)
	assert.Equal(t, models.TxID(1), ops[0].Tx)
	require.NotNil(t, ops[0].Amount)
	assert.True(t, ops[0].Amount.Equal(decimal.NewFromInt(1)))

	assert.Equal(t, models.Withdrawal, ops[1].Kind)
	assert.True(t, ops[1].Amount.Equal(decimal.RequireFromString("0.5")))

	for _, o := range ops[2:] {
		assert.Nil(t, o.Amount, "%s carries no amount", o.Kind)
	}
	assert.Equal(t, models.Chargeback, ops[4].Kind)
}

func TestReaderToleratesWhitespaceAndCase(t *testing.T) {
	input := "  Type ,Client,  TX ,Amount  \n  DEPOSIT  ,  3 ,\t7 ,  2.7420  \n"
	ops, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.Deposit, ops[0].Kind)
	assert.Equal(t, models.ClientID(3), ops[0].Client)
	assert.Equal(t, models.TxID(7), ops[0].Tx)
	assert.Equal(t, "2.742", ops[0].Amount.String())
}

func TestReaderColumnOrderFollowsHeader(t *testing.T) {
	input := "client,tx,amount,type\n2,9,4.5,deposit\n"
	ops, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.ClientID(2), ops[0].Client)
	assert.Equal(t, models.TxID(9), ops[0].Tx)
	assert.Equal(t, models.Deposit, ops[0].Kind)
}

func TestReaderSkipsBlankRows(t *testing.T) {
	input := "type,client,tx,amount\n\ndeposit,1,1,1\n , , , \ndeposit,1,2,1\n"
	ops, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestReaderEmptyInput(t *testing.T) {
	ops, err := NewReader(strings.NewReader("")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, ops)

	_, err = NewReader(strings.NewReader("")).Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		line  int
		msg   string
	}{
		{name: "unknown type", input: "type,client,tx,amount\ndeposit,1,1,1\ntransfer,1,2,1\n", line: 3, msg: "unknown operation type"},
		{name: "bad amount", input: "type,client,tx,amount\ndeposit,1,1,abc\n", line: 2, msg: "invalid amount"},
		{name: "client out of range", input: "type,client,tx,amount\ndeposit,70000,1,1\n", line: 2, msg: "invalid client id"},
		{name: "negative client", input: "type,client,tx,amount\ndeposit,-1,1,1\n", line: 2, msg: "invalid client id"},
		{name: "tx out of range", input: "type,client,tx,amount\ndeposit,1,5000000000,1\n", line: 2, msg: "invalid tx id"},
		{name: "missing tx", input: "type,client,tx,amount\ndeposit,1\n", line: 2, msg: "invalid tx id"},
		{name: "missing header column", input: "type,client,amount\ndeposit,1,1\n", line: 1, msg: `missing "tx" column`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tc.input)).ReadAll()
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
			assert.Equal(t, tc.line, perr.Line)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestReaderNegativeAmountIsNotAParseError(t *testing.T) {
	ops, err := NewReader(strings.NewReader("type,client,tx,amount\nwithdrawal,1,1,-3\n")).ReadAll()
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.True(t, ops[0].Amount.IsNegative())
}

func TestWriterRoundTrip(t *testing.T) {
	amt := decimal.RequireFromString("12.3456")
	in := []models.Operation{
		{Kind: models.Deposit, Client: 1, Tx: 1, Amount: &amt},
		{Kind: models.Dispute, Client: 1, Tx: 1},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, o := range in {
		require.NoError(t, w.Write(o))
	}
	require.NoError(t, w.Flush())

	assert.Equal(t, "type,client,tx,amount\ndeposit,1,1,12.3456\ndispute,1,1,\n", buf.String())

	out, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Amount.Equal(amt))
	assert.Nil(t, out[1].Amount)
}
