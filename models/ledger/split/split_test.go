package split

import (
	"testing"

	apperrors "github.com/NomadCrew/nomad-crew-ledger/errors"
	"github.com/NomadCrew/nomad-crew-ledger/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-ledger/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func php(minor int64) valueobjects.Money {
	return valueobjects.New(minor, valueobjects.PHP)
}

func members(ids ...string) []types.ParticipantInput {
	out := make([]types.ParticipantInput, len(ids))
	for i, id := range ids {
		out[i] = types.ParticipantInput{MemberID: id}
	}
	return out
}

func amounts(splits []types.Split) map[string]int64 {
	out := make(map[string]int64, len(splits))
	for _, s := range splits {
		out[s.MemberID] = s.Amount.MinorUnits()
	}
	return out
}

func dec(v int64, exp int32) *decimal.Decimal {
	d := decimal.New(v, exp)
	return &d
}

func TestEqual(t *testing.T) {
	t.Run("remainder goes to first member by id", func(t *testing.T) {
		splits, err := Compute(types.SplitEqual, Request{Total: php(10000), PaidBy: "A", Participants: members("C", "A", "B")})
		require.NoError(t, err)
		require.Len(t, splits, 3)
		assert.Equal(t, "A", splits[0].MemberID)
		assert.Equal(t, map[string]int64{"A": 3334, "B": 3333, "C": 3333}, amounts(splits))
		assert.Equal(t, int64(10000), Sum(splits))
	})

	t.Run("even split", func(t *testing.T) {
		splits, err := Compute(types.SplitEqual, Request{Total: php(30000), PaidBy: "A", Participants: members("A", "B", "C")})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"A": 10000, "B": 10000, "C": 10000}, amounts(splits))
	})

	t.Run("empty participants", func(t *testing.T) {
		_, err := Compute(types.SplitEqual, Request{Total: php(100), PaidBy: "A"})
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeEmptyParticipantSet, appErr.Code)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		_, err := Compute(types.SplitEqual, Request{Total: php(100), PaidBy: "A", Participants: members("A", "A")})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestInvalidTotal(t *testing.T) {
	for _, total := range []int64{0, -100} {
		_, err := Compute(types.SplitEqual, Request{Total: php(total), PaidBy: "A", Participants: members("A")})
		require.Error(t, err)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeInvalidAmount, appErr.Code)
	}
}

func TestUnknownStrategy(t *testing.T) {
	_, err := Compute("Shares", Request{Total: php(100), Participants: members("A")})
	require.Error(t, err)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, apperrors.CodeUnknownStrategy, appErr.Code)
}

func TestPaidFor(t *testing.T) {
	t.Run("payer excluded", func(t *testing.T) {
		splits, err := Compute(types.SplitPaidFor, Request{Total: php(6000), PaidBy: "A", Participants: members("A", "B", "C")})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"B": 3000, "C": 3000}, amounts(splits))
	})

	t.Run("only the payer listed", func(t *testing.T) {
		_, err := Compute(types.SplitPaidFor, Request{Total: php(6000), PaidBy: "A", Participants: members("A")})
		require.Error(t, err)
		appErr, _ := apperrors.As(err)
		assert.Equal(t, apperrors.CodeEmptyParticipantSet, appErr.Code)
	})
}

func TestCustom(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Amount: dec(2000, -2)},
			{MemberID: "B", Amount: dec(8000, -2)},
		}}
		splits, err := Compute(types.SplitCustom, req)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"A": 2000, "B": 8000}, amounts(splits))
	})

	t.Run("one cent off is absorbed", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Amount: dec(3333, -2)},
			{MemberID: "B", Amount: dec(3333, -2)},
			{MemberID: "C", Amount: dec(3333, -2)},
		}}
		splits, err := Compute(types.SplitCustom, req)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), Sum(splits))
		assert.Equal(t, int64(3334), amounts(splits)["A"])
	})

	t.Run("mismatch", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Amount: dec(5000, -2)},
			{MemberID: "B", Amount: dec(4000, -2)},
		}}
		_, err := Compute(types.SplitCustom, req)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.SplitMismatchError))
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("missing amount", func(t *testing.T) {
		_, err := Compute(types.SplitCustom, Request{Total: php(100), PaidBy: "A", Participants: members("A")})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("negative share", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Amount: dec(-1000, -2)},
			{MemberID: "B", Amount: dec(11000, -2)},
		}}
		_, err := Compute(types.SplitCustom, req)
		require.Error(t, err)
		appErr, _ := apperrors.As(err)
		assert.Equal(t, apperrors.CodeNegativeShare, appErr.Code)
	})
}

func TestPercentage(t *testing.T) {
	t.Run("thirds", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Percentage: dec(3333, -2)},
			{MemberID: "B", Percentage: dec(3333, -2)},
			{MemberID: "C", Percentage: dec(3334, -2)},
		}}
		splits, err := Compute(types.SplitPercentage, req)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"A": 3333, "B": 3333, "C": 3334}, amounts(splits))
		require.NotNil(t, splits[0].Percentage)
	})

	t.Run("remainder to first by id", func(t *testing.T) {
		req := Request{Total: php(1001), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "B", Percentage: dec(50, 0)},
			{MemberID: "A", Percentage: dec(50, 0)},
		}}
		splits, err := Compute(types.SplitPercentage, req)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"A": 501, "B": 500}, amounts(splits))
	})

	t.Run("zero percent pays nothing", func(t *testing.T) {
		req := Request{Total: php(101), PaidBy: "a", Participants: []types.ParticipantInput{
			{MemberID: "a", Percentage: dec(0, 0)},
			{MemberID: "b", Percentage: dec(50, 0)},
			{MemberID: "c", Percentage: dec(50, 0)},
		}}
		splits, err := Compute(types.SplitPercentage, req)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"a": 0, "b": 51, "c": 50}, amounts(splits))
	})

	t.Run("within tolerance", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Percentage: dec(3333, -2)},
			{MemberID: "B", Percentage: dec(3333, -2)},
			{MemberID: "C", Percentage: dec(3333, -2)},
		}}
		splits, err := Compute(types.SplitPercentage, req)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), Sum(splits))
	})

	t.Run("does not add up", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Percentage: dec(50, 0)},
			{MemberID: "B", Percentage: dec(40, 0)},
		}}
		_, err := Compute(types.SplitPercentage, req)
		assert.True(t, apperrors.IsType(err, apperrors.SplitMismatchError))
	})

	t.Run("over one hundred", func(t *testing.T) {
		req := Request{Total: php(10000), PaidBy: "A", Participants: []types.ParticipantInput{
			{MemberID: "A", Percentage: dec(150, 0)},
			{MemberID: "B", Percentage: dec(-50, 0)},
		}}
		_, err := Compute(types.SplitPercentage, req)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSplitCompleteness(t *testing.T) {
	for total := int64(1); total <= 250; total++ {
		for n := 1; n <= 7; n++ {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = string(rune('A' + i))
			}
			splits, err := Compute(types.SplitEqual, Request{Total: php(total), PaidBy: "A", Participants: members(ids...)})
			require.NoError(t, err)
			require.Equal(t, total, Sum(splits), "total=%d n=%d", total, n)
		}
	}
}
