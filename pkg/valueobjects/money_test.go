package valueobjects

import (
	"encoding/json"
	"testing"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minors(parts []Money) []int64 {
	out := make([]int64, len(parts))
	for i, p := range parts {
		out[i] = p.MinorUnits()
	}
	return out
}

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name        string
		amount      decimal.Decimal
		currency    Currency
		wantMinor   int64
		shouldError bool
	}{
		{"valid money", decimal.New(1099, -2), USD, 1099, false},
		{"negative allowed", decimal.New(-1099, -2), PHP, -1099, false},
		{"trailing zeros", decimal.New(10500, -3), EUR, 1050, false},
		{"invalid currency", decimal.New(1099, -2), "XXX", 0, true},
		{"too many decimal places", decimal.New(10999, -3), USD, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			money, err := NewMoney(tt.amount, tt.currency)
			if tt.shouldError {
				assert.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMinor, money.MinorUnits())
			assert.Equal(t, tt.currency, money.Currency())
		})
	}
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("33.34", "php")
	require.NoError(t, err)
	assert.Equal(t, int64(3334), m.MinorUnits())
	assert.Equal(t, PHP, m.Currency())
	assert.Equal(t, "33.34", m.String())

	_, err = NewMoneyFromString("abc", "PHP")
	assert.Error(t, err)
}

func TestMoney_Divide(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{"even", 9000, 3, []int64{3000, 3000, 3000}},
		{"one extra cent", 10000, 3, []int64{3334, 3333, 3333}},
		{"two extra cents", 1001, 3, []int64{334, 334, 333}},
		{"less than n cents", 2, 3, []int64{1, 1, 0}},
		{"negative", -10000, 3, []int64{-3334, -3333, -3333}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := New(tt.total, PHP).Divide(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, minors(parts))
		})
	}

	_, err := New(100, PHP).Divide(0)
	assert.Error(t, err)
}

func TestMoney_Allocate(t *testing.T) {
	weights := []decimal.Decimal{
		decimal.New(3333, -2),
		decimal.New(3333, -2),
		decimal.New(3334, -2),
	}
	parts, err := New(10000, USD).Allocate(weights)
	require.NoError(t, err)
	assert.Equal(t, []int64{3333, 3333, 3334}, minors(parts))

	parts, err = New(100, USD).Allocate([]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, []int64{34, 33, 33}, minors(parts))

	parts, err = New(101, USD).Allocate([]decimal.Decimal{decimal.Zero, decimal.NewFromInt(50), decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 51, 50}, minors(parts), "zero weight never takes a leftover unit")

	parts, err = New(100, USD).Allocate([]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.Equal(t, []int64{33, 67}, minors(parts), "leftover goes to the largest remainder")

	_, err = New(100, USD).Allocate([]decimal.Decimal{decimal.Zero})
	assert.Error(t, err)

	_, err = New(100, USD).Allocate([]decimal.Decimal{decimal.NewFromInt(-1), decimal.NewFromInt(2)})
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := New(500, PHP)
	b := New(1200, PHP)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1700), sum.MinorUnits())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(-700), diff.MinorUnits())
	assert.True(t, diff.IsNegative())
	assert.Equal(t, int64(700), diff.Abs().MinorUnits())
	assert.Equal(t, int64(700), diff.Neg().MinorUnits())

	cmp, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	_, err = a.Add(New(1, USD))
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, ErrCurrencyMismatch, appErr.Code)

	assert.Equal(t, int64(250), a.Multiply(decimal.New(5, -1)).MinorUnits())
	assert.Equal(t, int64(2), New(3, PHP).Multiply(decimal.New(5, -1)).MinorUnits())
	assert.True(t, Zero(PHP).IsZero())
	assert.True(t, a.Equals(New(500, PHP)))
	assert.False(t, a.Equals(New(500, USD)))
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: New(-3330, PHP)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"-33.30"}`, string(data))

	var decoded struct {
		Amount Money `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.5"}`), &decoded))
	assert.Equal(t, int64(1250), decoded.Amount.MinorUnits())

	require.Error(t, json.Unmarshal([]byte(`{"amount":"1.001"}`), &decoded))
}
