package leave_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAggregator(t *testing.T) (*leave.Aggregator, *memory.LeaveStore) {
	t.Helper()
	store := memory.NewLeaveStore()
	agg := leave.NewAggregator(store, leave.DefaultLimits(), zerolog.Nop())
	return agg, store
}

func putAbono(t *testing.T, store *memory.LeaveStore, person string, mes int, installments ...leave.Installment) {
	t.Helper()
	a := leave.Allotment{
		Type:     leave.TypeAbono,
		PersonID: person,
		Ano:      2026,
		Mes:      mes,
	}
	copy(a.Installments[:], installments)
	_, err := store.Put(context.Background(), a)
	require.NoError(t, err)
}

func putFerias(t *testing.T, store *memory.LeaveStore, person string, mesInicio int, installments ...leave.Installment) {
	t.Helper()
	a := leave.Allotment{
		Type:      leave.TypeFerias,
		PersonID:  person,
		Ano:       2026,
		MesInicio: mesInicio,
	}
	copy(a.Installments[:], installments)
	_, err := store.Put(context.Background(), a)
	require.NoError(t, err)
}

// =============================================================================
// QUOTA AGGREGATION TESTS
// =============================================================================

func TestComputeQuota_MarchAbonoExample(t *testing.T) {
	// GIVEN: Two dated five-day abono installments in March and one
	//        undated March record with no day counts
	// WHEN: Computing the March abono quota
	// THEN: limite 80, previsto 5 (the default entitlement),
	//       marcados 10, saldo 70

	agg, store := newTestAggregator(t)
	ctx := context.Background()

	putAbono(t, store, "p1", 3, leave.Installment{Inicio: "2026-03-02", Fim: "2026-03-06"})
	putAbono(t, store, "p2", 3, leave.Installment{Inicio: "2026-03-09", Fim: "2026-03-13"})
	putAbono(t, store, "p3", 3)

	q, err := agg.ComputeQuota(ctx, leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 80, q.Limite)
	assert.Equal(t, 5, q.Previsto)
	assert.Equal(t, 10, q.Marcados)
	assert.Equal(t, 70, q.Saldo)
}

func TestComputeQuota_MonthStartCrediting(t *testing.T) {
	// GIVEN: An installment starting March 28 and ending April 3
	// WHEN: Computing March and April
	// THEN: The full seven-day span is credited to March, none to April

	agg, store := newTestAggregator(t)
	ctx := context.Background()

	putFerias(t, store, "p1", 3, leave.Installment{Inicio: "2026-03-28", Fim: "2026-04-03"})

	march, err := agg.ComputeQuota(ctx, leave.TypeFerias, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, march.Marcados)

	april, err := agg.ComputeQuota(ctx, leave.TypeFerias, 2026, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, april.Marcados)
}

func TestComputeQuota_SingleDayInstallmentCountsOne(t *testing.T) {
	agg, store := newTestAggregator(t)

	putAbono(t, store, "p1", 3, leave.Installment{Inicio: "2026-03-10", Fim: "2026-03-10"})

	q, err := agg.ComputeQuota(context.Background(), leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Marcados)
}

func TestComputeQuota_DatedRecordLeavesPrevisto(t *testing.T) {
	// GIVEN: A record whose first installment has been pinned to dates
	// WHEN: Computing the quota
	// THEN: The record no longer counts toward previsto, even though a
	//       second installment is still undated

	agg, store := newTestAggregator(t)

	putAbono(t, store, "p1", 3,
		leave.Installment{Inicio: "2026-03-02", Fim: "2026-03-06", Dias: 5},
		leave.Installment{Dias: 5},
	)

	q, err := agg.ComputeQuota(context.Background(), leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Previsto)
	assert.Equal(t, 5, q.Marcados)
}

func TestComputeQuota_FeriasUsesStoredDaysVerbatim(t *testing.T) {
	// GIVEN: An undated férias record for March with no day counts
	// WHEN: Computing the March férias quota
	// THEN: Previsto is 0 - only abono falls back to the 5-day default

	agg, store := newTestAggregator(t)
	ctx := context.Background()

	putFerias(t, store, "p1", 3)

	q, err := agg.ComputeQuota(ctx, leave.TypeFerias, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 480, q.Limite)
	assert.Equal(t, 0, q.Previsto)

	// Stored counts do flow through.
	putFerias(t, store, "p2", 3, leave.Installment{Dias: 15}, leave.Installment{Dias: 15})

	q, err = agg.ComputeQuota(ctx, leave.TypeFerias, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 30, q.Previsto)
}

func TestComputeQuota_SaldoIdentity(t *testing.T) {
	agg, store := newTestAggregator(t)
	ctx := context.Background()

	putAbono(t, store, "p1", 3, leave.Installment{Inicio: "2026-03-02", Fim: "2026-03-06"})
	putAbono(t, store, "p2", 3, leave.Installment{Inicio: "2026-03-09", Fim: "2026-03-20"})

	q, err := agg.ComputeQuota(ctx, leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, q.Limite-q.Marcados, q.Saldo)
}

func TestComputeQuota_OverAllocationGoesNegative(t *testing.T) {
	// GIVEN: More marked days than the monthly ceiling
	// WHEN: Computing the quota
	// THEN: Saldo is negative, reported as-is rather than clamped

	agg, store := newTestAggregator(t)

	for i := 0; i < 3; i++ {
		putAbono(t, store, string(rune('a'+i)), 3,
			leave.Installment{Inicio: "2026-03-01", Fim: "2026-03-30"})
	}

	q, err := agg.ComputeQuota(context.Background(), leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 90, q.Marcados)
	assert.Equal(t, -10, q.Saldo)
}

// =============================================================================
// DEGRADATION TESTS
// =============================================================================

func TestComputeQuota_MalformedDates_SkippedNotFatal(t *testing.T) {
	// GIVEN: One installment with an unparseable date next to a valid one
	// WHEN: Computing the quota
	// THEN: The bad row contributes zero and the month still computes

	agg, store := newTestAggregator(t)

	putAbono(t, store, "p1", 3, leave.Installment{Inicio: "2026-13-45", Fim: "2026-03-06"})
	putAbono(t, store, "p2", 3, leave.Installment{Inicio: "2026-03-09", Fim: "2026-03-13"})

	q, err := agg.ComputeQuota(context.Background(), leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Marcados)
}

func TestComputeQuota_InvertedRange_ContributesZero(t *testing.T) {
	agg, store := newTestAggregator(t)

	putAbono(t, store, "p1", 3, leave.Installment{Inicio: "2026-03-20", Fim: "2026-03-06"})

	q, err := agg.ComputeQuota(context.Background(), leave.TypeAbono, 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Marcados)
	assert.GreaterOrEqual(t, q.Previsto, 0)
}

func TestComputeQuota_InvalidMonth_Rejected(t *testing.T) {
	agg, _ := newTestAggregator(t)

	for _, month := range []int{0, 13, -1} {
		_, err := agg.ComputeQuota(context.Background(), leave.TypeAbono, 2026, month)
		assert.True(t, leave.IsValidation(err), "month %d", month)
	}
}
