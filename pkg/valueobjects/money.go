// Package valueobjects holds immutable domain values shared across the ledger.
package valueobjects

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code with two minor digits.
type Currency string

const (
	PHP Currency = "PHP"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	AUD Currency = "AUD"
	CAD Currency = "CAD"
	SGD Currency = "SGD"
	INR Currency = "INR"
)

var validCurrencies = map[Currency]bool{
	PHP: true,
	USD: true,
	EUR: true,
	GBP: true,
	AUD: true,
	CAD: true,
	SGD: true,
	INR: true,
}

// minorDigits is the number of fractional digits every supported currency uses.
const minorDigits = 2

var hundred = decimal.NewFromInt(100)

// ParseCurrency normalises and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !validCurrencies[c] {
		return "", errors.ValidationFailed(
			"invalid currency",
			fmt.Sprintf("currency %s is not supported", code),
		).WithCode(ErrInvalidCurrency)
	}
	return c, nil
}

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	return validCurrencies[c]
}

// Money is an exact amount in minor units (cents) of a single currency.
// It may be negative; balances use the sign.
type Money struct {
	minor    int64
	currency Currency
}

// New builds Money from minor units without validation.
func New(minor int64, currency Currency) Money {
	return Money{minor: minor, currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// NewMoney converts a decimal amount to Money, rejecting unsupported
// currencies and amounts finer than one minor unit.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, errors.ValidationFailed(
			"invalid currency",
			fmt.Sprintf("currency %s is not supported", currency),
		).WithCode(ErrInvalidCurrency)
	}

	scaled := amount.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Money{}, errors.ValidationFailed(
			"invalid amount",
			fmt.Sprintf("amount cannot have more than %d decimal places", minorDigits),
		).WithCode(ErrInvalidAmount)
	}

	return Money{minor: scaled.IntPart(), currency: currency}, nil
}

// NewMoneyFromString parses a decimal string such as "33.34".
func NewMoneyFromString(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, errors.ValidationFailed("invalid amount format", err.Error()).WithCode(ErrInvalidAmount)
	}
	cur, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d, cur)
}

// MinorUnits returns the amount in cents.
func (m Money) MinorUnits() int64 {
	return m.minor
}

// Amount returns the amount as a decimal in major units.
func (m Money) Amount() decimal.Decimal {
	return decimal.New(m.minor, -minorDigits)
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// WithCurrency returns the same amount tagged with currency.
func (m Money) WithCurrency(currency Currency) Money {
	return Money{minor: m.minor, currency: currency}
}

func (m Money) sameCurrency(other Money, op string) error {
	if m.currency != other.currency {
		return errors.ValidationFailed(
			"currency mismatch",
			fmt.Sprintf("cannot %s %s and %s", op, m.currency, other.currency),
		).WithCode(ErrCurrencyMismatch)
	}
	return nil
}

// Add adds two monetary values of the same currency
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other, "add"); err != nil {
		return Money{}, err
	}
	return Money{minor: m.minor + other.minor, currency: m.currency}, nil
}

// Subtract subtracts other from m. The result may be negative.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other, "subtract"); err != nil {
		return Money{}, err
	}
	return Money{minor: m.minor - other.minor, currency: m.currency}, nil
}

// Multiply scales m by factor, rounding half away from zero to the minor unit.
func (m Money) Multiply(factor decimal.Decimal) Money {
	scaled := decimal.NewFromInt(m.minor).Mul(factor).Round(0)
	return Money{minor: scaled.IntPart(), currency: m.currency}
}

// Divide splits m into n parts whose sum is exactly m. Parts differ by at
// most one minor unit and the extra units go to the first parts.
func (m Money) Divide(n int) ([]Money, error) {
	if n <= 0 {
		return nil, errors.ValidationFailed(
			"invalid split",
			"number of parts must be positive",
		).WithCode(ErrInvalidSplit)
	}

	sign := int64(1)
	total := m.minor
	if total < 0 {
		sign, total = -1, -total
	}

	base := total / int64(n)
	remainder := total % int64(n)

	parts := make([]Money, n)
	for i := range parts {
		v := base
		if int64(i) < remainder {
			v++
		}
		parts[i] = Money{minor: sign * v, currency: m.currency}
	}
	return parts, nil
}

// Allocate splits m proportionally to weights. Each part is floored to the
// minor unit and the leftover units go one each to the parts with the largest
// remainders, so the parts always sum to m.
func (m Money) Allocate(weights []decimal.Decimal) ([]Money, error) {
	if len(weights) == 0 {
		return nil, errors.ValidationFailed("invalid split", "no weights given").WithCode(ErrInvalidSplit)
	}
	if m.minor < 0 {
		return nil, errors.ValidationFailed("invalid split", "cannot allocate a negative amount").WithCode(ErrInvalidAmount)
	}

	sum := decimal.Zero
	for _, w := range weights {
		if w.IsNegative() {
			return nil, errors.ValidationFailed("invalid split", "weights cannot be negative").WithCode(ErrInvalidSplit)
		}
		sum = sum.Add(w)
	}
	if sum.IsZero() {
		return nil, errors.ValidationFailed("invalid split", "weights sum to zero").WithCode(ErrInvalidSplit)
	}

	total := decimal.NewFromInt(m.minor)
	parts := make([]Money, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	eligible := make([]int, 0, len(weights))
	var allocated int64
	for i, w := range weights {
		exact := total.Mul(w)
		share := exact.Div(sum).Floor()
		if share.Mul(sum).GreaterThan(exact) {
			share = share.Sub(decimal.NewFromInt(1))
		}
		parts[i] = Money{minor: share.IntPart(), currency: m.currency}
		allocated += parts[i].minor
		// scaled by sum so the comparison stays exact
		remainders[i] = exact.Sub(share.Mul(sum))
		if w.IsPositive() {
			eligible = append(eligible, i)
		}
	}

	// Leftover units go to the largest fractional remainders, ties by
	// position. Zero weights never receive one.
	sort.SliceStable(eligible, func(a, b int) bool {
		return remainders[eligible[a]].GreaterThan(remainders[eligible[b]])
	})
	for k := 0; allocated < m.minor; k = (k + 1) % len(eligible) {
		parts[eligible[k]].minor++
		allocated++
	}
	return parts, nil
}

// Abs returns the absolute value
func (m Money) Abs() Money {
	if m.minor < 0 {
		return Money{minor: -m.minor, currency: m.currency}
	}
	return m
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{minor: -m.minor, currency: m.currency}
}

func (m Money) IsZero() bool {
	return m.minor == 0
}

func (m Money) IsPositive() bool {
	return m.minor > 0
}

func (m Money) IsNegative() bool {
	return m.minor < 0
}

// Equals checks if two monetary values are equal
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.minor == other.minor
}

// Compare returns -1, 0 or 1.
func (m Money) Compare(other Money) (int, error) {
	if err := m.sameCurrency(other, "compare"); err != nil {
		return 0, err
	}
	switch {
	case m.minor < other.minor:
		return -1, nil
	case m.minor > other.minor:
		return 1, nil
	default:
		return 0, nil
	}
}

// String renders the amount with exactly two decimals, e.g. "-33.30".
func (m Money) String() string {
	return m.Amount().StringFixed(minorDigits)
}

// MarshalJSON encodes the amount as a decimal string. The currency travels
// on the enclosing object.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or number. The currency is left
// empty and must be set by the caller with WithCurrency.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return errors.ValidationFailed("invalid amount format", err.Error()).WithCode(ErrInvalidAmount)
	}
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return errors.ValidationFailed(
			"invalid amount",
			fmt.Sprintf("amount cannot have more than %d decimal places", minorDigits),
		).WithCode(ErrInvalidAmount)
	}
	m.minor = scaled.IntPart()
	return nil
}

const (
	ErrInvalidAmount    = "INVALID_AMOUNT"
	ErrInvalidCurrency  = "INVALID_CURRENCY"
	ErrCurrencyMismatch = "CURRENCY_MISMATCH"
	ErrInvalidSplit     = "INVALID_SPLIT"
)
