package emi

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func amounts(p Plan) []string {
	out := make([]string, len(p.Installments))
	for i, inst := range p.Installments {
		out[i] = inst.Amount.StringFixed(2)
	}
	return out
}

func dueDates(p Plan) []string {
	out := make([]string, len(p.Installments))
	for i, inst := range p.Installments {
		out[i] = inst.DueDate.String()
	}
	return out
}

func mustGenerate(t *testing.T, balance string, start string, count int) Plan {
	t.Helper()
	plan, err := Generate(decimal.RequireFromString(balance), core.MustParseDate(start), count)
	require.NoError(t, err)
	return plan
}

func TestRedistribute(t *testing.T) {
	tests := []struct {
		total string
		n     int
		want  []string
	}{
		{total: "1000", n: 3, want: []string{"333.33", "333.33", "333.34"}},
		{total: "1000", n: 4, want: []string{"250.00", "250.00", "250.00", "250.00"}},
		{total: "100", n: 6, want: []string{"16.67", "16.67", "16.67", "16.67", "16.67", "16.65"}},
		{total: "0.05", n: 2, want: []string{"0.03", "0.02"}},
		{total: "0.04", n: 6, want: []string{"0.00", "0.00", "0.00", "0.00", "0.00", "0.04"}},
		{total: "0", n: 2, want: []string{"0.00", "0.00"}},
		{total: "10", n: 0},
	}
	for _, tt := range tests {
		t.Run(tt.total, func(t *testing.T) {
			shares := Redistribute(decimal.RequireFromString(tt.total), tt.n)
			got := make([]string, 0, len(shares))
			for _, s := range shares {
				got = append(got, s.StringFixed(2))
			}
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
			assert.True(t, Sum(shares...).Equal(decimal.RequireFromString(tt.total)))
		})
	}
}

func TestGenerate(t *testing.T) {
	plan := mustGenerate(t, "1000", "2024-01-31", 3)

	assert.Equal(t, []string{"333.33", "333.33", "333.34"}, amounts(plan))
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31"}, dueDates(plan))
	for i, inst := range plan.Installments {
		assert.Equal(t, i+1, inst.Month)
	}
	assert.True(t, plan.Total().Equal(plan.Balance))
	assert.Empty(t, plan.Validate())

	// same inputs, same plan
	again := mustGenerate(t, "1000", "2024-01-31", 3)
	assert.Equal(t, plan, again)

	plan = mustGenerate(t, "100", "2024-01-01", 0)
	assert.Len(t, plan.Installments, DefaultCount)
	assert.Equal(t, "2024-10-01", plan.Installments[9].DueDate.String())

	plan = mustGenerate(t, "1200", "2024-01-01", MaxCount)
	assert.Len(t, plan.Installments, MaxCount)
	assert.True(t, plan.Total().Equal(plan.Balance))
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		balance    string
		start      string
		count      int
		wantFields []string
	}{
		{name: "zero balance", balance: "0", start: "2024-01-01", wantFields: []string{"balanceAmount"}},
		{name: "negative balance", balance: "-5", start: "2024-01-01", wantFields: []string{"balanceAmount"}},
		{name: "no start date", balance: "100", wantFields: []string{"emiStartDate"}},
		{name: "nothing", balance: "0", wantFields: []string{"balanceAmount", "emiStartDate"}},
		{name: "too many installments", balance: "100", start: "2024-01-01", count: MaxCount + 1, wantFields: []string{"count"}},
		{name: "huge count", balance: "100", start: "2024-01-01", count: 1 << 30, wantFields: []string{"count"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := tt.count
			if count == 0 {
				count = 3
			}
			_, err := Generate(decimal.RequireFromString(tt.balance), core.MustParseDate(tt.start), count)
			require.Error(t, err)

			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, core.FieldErrorMap(verr.Fields), f)
			}
		})
	}
}

func TestPlan_EditAmount(t *testing.T) {
	t.Run("redistributes the rest", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-01", 4)
		require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(400)))

		assert.Equal(t, []string{"400.00", "200.00", "200.00", "200.00"}, amounts(plan))
		assert.True(t, plan.CustomAmounts.Has(0))
		assert.True(t, plan.Total().Equal(plan.Balance))

		require.NoError(t, plan.EditAmount(3, decimal.NewFromInt(100)))
		assert.Equal(t, []string{"400.00", "250.00", "250.00", "100.00"}, amounts(plan))
		assert.Empty(t, plan.Validate())
	})

	t.Run("same edit twice", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-01", 3)
		require.NoError(t, plan.EditAmount(1, decimal.NewFromInt(100)))
		once := amounts(plan)
		require.NoError(t, plan.EditAmount(1, decimal.NewFromInt(100)))
		assert.Equal(t, once, amounts(plan))
	})

	t.Run("exceeding balance", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-01", 4)
		require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(1200)))

		assert.Equal(t, []string{"1200.00", "250.00", "250.00", "250.00"}, amounts(plan))
		errs := plan.Validate()
		require.Len(t, errs, 1)
		assert.Equal(t, core.FieldError{Field: "emiInstallments", Error: "Total EMI exceeds Balance"}, errs[0])
	})

	t.Run("every installment customized", func(t *testing.T) {
		plan := mustGenerate(t, "300", "2024-01-01", 2)
		require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(100)))
		require.NoError(t, plan.EditAmount(1, decimal.NewFromInt(100)))
		assert.Equal(t, []string{"100.00", "100.00"}, amounts(plan))
	})

	t.Run("negative amount", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-01", 4)
		err := plan.EditAmount(0, decimal.NewFromInt(-1))
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "emiInstallments.0.amount", verr.Fields[0].Field)
	})

	t.Run("out of range", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-01", 4)
		assert.Equal(t, ErrNotFound, plan.EditAmount(4, decimal.NewFromInt(1)))
		assert.Equal(t, ErrNotFound, plan.EditAmount(-1, decimal.NewFromInt(1)))
	})
}

func TestPlan_ResetAmount(t *testing.T) {
	plan := mustGenerate(t, "1000", "2024-01-01", 4)
	require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(400)))
	require.NoError(t, plan.ResetAmount(0))

	assert.False(t, plan.CustomAmounts.Has(0))
	assert.Equal(t, []string{"250.00", "250.00", "250.00", "250.00"}, amounts(plan))
}

func TestPlan_EditDate(t *testing.T) {
	t.Run("cascades", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-15", 4)
		require.NoError(t, plan.EditDate(1, core.MustParseDate("2024-03-01"), false))
		assert.Equal(t, []string{"2024-01-15", "2024-03-01", "2024-04-01", "2024-05-01"}, dueDates(plan))
	})

	t.Run("custom date is pinned", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-15", 4)
		require.NoError(t, plan.EditDate(2, core.MustParseDate("2024-06-30"), true))
		assert.Equal(t, []string{"2024-01-15", "2024-02-15", "2024-06-30", "2024-04-15"}, dueDates(plan))

		require.NoError(t, plan.EditDate(0, core.MustParseDate("2024-02-01"), false))
		assert.Equal(t, []string{"2024-02-01", "2024-03-01", "2024-06-30", "2024-05-01"}, dueDates(plan))
	})

	t.Run("reset", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-15", 4)
		require.NoError(t, plan.EditDate(2, core.MustParseDate("2024-06-30"), true))
		require.NoError(t, plan.ResetDate(2))
		assert.False(t, plan.CustomDates.Has(2))
		assert.Equal(t, "2024-03-15", plan.Installments[2].DueDate.String())
	})

	t.Run("missing date", func(t *testing.T) {
		plan := mustGenerate(t, "1000", "2024-01-15", 4)
		var verr *core.ValidationError
		require.ErrorAs(t, plan.EditDate(1, core.Date{}, false), &verr)
		assert.Equal(t, "emiInstallments.1.dueDate", verr.Fields[0].Field)
	})
}

func TestPlan_Remove(t *testing.T) {
	plan := mustGenerate(t, "1000", "2024-01-15", 4)
	require.NoError(t, plan.EditAmount(1, decimal.NewFromInt(400)))
	require.NoError(t, plan.EditDate(3, core.MustParseDate("2024-12-01"), true))

	require.NoError(t, plan.Remove(0))

	require.Len(t, plan.Installments, 3)
	for i, inst := range plan.Installments {
		assert.Equal(t, i+1, inst.Month)
	}
	assert.Equal(t, []string{"333.33", "333.33", "333.34"}, amounts(plan))
	assert.Equal(t, []string{"2024-01-15", "2024-02-15", "2024-03-15"}, dueDates(plan))
	assert.Equal(t, []int{0}, plan.CustomAmounts.Sorted())
	assert.Equal(t, []int{2}, plan.CustomDates.Sorted())

	assert.Equal(t, ErrNotFound, plan.Remove(3))

	require.NoError(t, plan.Remove(2))
	require.NoError(t, plan.Remove(1))
	require.NoError(t, plan.Remove(0))
	assert.True(t, plan.IsEmpty())
	assert.Empty(t, plan.Validate())
}

func TestPlan_SetBalance(t *testing.T) {
	plan := mustGenerate(t, "1000", "2024-01-01", 4)
	require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(100)))

	plan.SetBalance(decimal.NewFromInt(700))
	assert.Equal(t, []string{"100.00", "200.00", "200.00", "200.00"}, amounts(plan))

	plan.SetBalance(decimal.NewFromInt(50))
	assert.NotEmpty(t, plan.Validate())
}

func TestPlan_SetStartDate(t *testing.T) {
	plan := mustGenerate(t, "1000", "2024-01-15", 3)
	require.NoError(t, plan.EditDate(1, core.MustParseDate("2024-02-20"), true))

	plan.SetStartDate(core.MustParseDate("2024-03-31"))
	assert.Equal(t, []string{"2024-03-31", "2024-02-20", "2024-05-31"}, dueDates(plan))
}

func TestPlan_Clear(t *testing.T) {
	plan := mustGenerate(t, "1000", "2024-01-15", 3)
	require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(1)))
	plan.Clear()

	assert.True(t, plan.IsEmpty())
	assert.Empty(t, plan.CustomAmounts)
	assert.Equal(t, "1000", plan.Balance.String())
	assert.Equal(t, "2024-01-15", plan.StartDate.String())
}

func TestPlan_JSON(t *testing.T) {
	plan := mustGenerate(t, "100", "2024-01-15", 2)
	require.NoError(t, plan.EditAmount(1, decimal.RequireFromString("60.5")))

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"balance": 100,
		"startDate": "2024-01-15",
		"installments": [
			{"month": 1, "amount": 39.5, "dueDate": "2024-01-15"},
			{"month": 2, "amount": 60.5, "dueDate": "2024-02-15"}
		],
		"customAmounts": [1],
		"customDates": []
	}`, string(data))

	var decoded Plan
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, amounts(plan), amounts(decoded))
	assert.Equal(t, dueDates(plan), dueDates(decoded))
	assert.True(t, decoded.CustomAmounts.Has(1))
	assert.Empty(t, decoded.CustomDates)
}
