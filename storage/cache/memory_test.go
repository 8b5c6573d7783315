package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/emi"
	"github.com/trezcool/academia/core/enrollment"
)

func TestMemoryStore_Drafts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(core.NewTestConfig())

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	plan, err := emi.Generate(decimal.NewFromInt(1000), core.MustParseDate("2024-01-15"), 4)
	require.NoError(t, err)
	require.NoError(t, plan.EditAmount(0, decimal.NewFromInt(400)))
	d := enrollment.Draft{ID: "d1", StudentName: "Jane", EMIEnabled: true, EMIPlan: plan}

	require.NoError(t, store.SaveDraft(ctx, d))

	got, err := store.GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.StudentName)
	assert.True(t, got.EMIPlan.CustomAmounts.Has(0))

	// callers do not share state with the store
	got.EMIPlan.Installments[1].Amount = decimal.Zero
	got.EMIPlan.CustomAmounts.Add(3)
	again, err := store.GetDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "200", again.EMIPlan.Installments[1].Amount.String())
	assert.False(t, again.EMIPlan.CustomAmounts.Has(3))

	// expiry
	now = now.Add(2 * time.Hour)
	_, err = store.GetDraft(ctx, "d1")
	assert.Equal(t, enrollment.ErrDraftNotFound, err)

	// delete
	require.NoError(t, store.SaveDraft(ctx, d))
	require.NoError(t, store.DeleteDraft(ctx, "d1"))
	assert.Equal(t, enrollment.ErrDraftNotFound, store.DeleteDraft(ctx, "d1"))
}

func TestMemoryStore_EndDates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(core.NewTestConfig())

	_, ok, err := store.GetEndDate(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetEndDate(ctx, "k", core.MustParseDate("2024-06-03")))
	date, ok, err := store.GetEndDate(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-06-03", date.String())
}
