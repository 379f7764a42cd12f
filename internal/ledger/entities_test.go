package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	acc := NewAccount(157)
	assert.Equal(t, ClientID(157), acc.ID)
	assert.True(t, acc.Available.IsZero())
	assert.True(t, acc.Held.IsZero())
	assert.False(t, acc.Locked)
	assert.Empty(t, acc.History)
}

func TestAccountTotal(t *testing.T) {
	acc := NewAccount(157)
	acc.Available = amt("54.7345")
	acc.Held = amt("3.5678")
	assert.Equal(t, "58.3023", acc.Total().String())
}

func TestAccountClone_IsDeep(t *testing.T) {
	acc := NewAccount(1)
	require.NoError(t, Execute(Deposit(1, 1, amt("1")), acc))
	cp := acc.Clone()
	acc.History[1].Disputed = true
	assert.False(t, cp.History[1].Disputed)
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"6":        "6.0",
		"6.000":    "6.0",
		"0":        "0.0",
		"35.7611":  "35.7611",
		"35.76110": "35.7611",
		"-8":       "-8.0",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(amt(in)), in)
	}
}

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind("  " + name + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("transfer")
	require.Error(t, err)
}

func TestOperationValue(t *testing.T) {
	v, ok := Deposit(1, 1, amt("2")).Value()
	assert.True(t, ok)
	assert.Equal(t, "2", v.String())

	for _, op := range []Operation{Dispute(1, 1), Resolve(1, 1), Chargeback(1, 1)} {
		_, ok := op.Value()
		assert.False(t, ok, op.Kind.String())
	}
}
