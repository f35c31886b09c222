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

func newTestService(t *testing.T) (*leave.Service, *memory.LeaveStore) {
	t.Helper()
	store := memory.NewLeaveStore()
	return leave.NewService(store, nil, zerolog.Nop()), store
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// =============================================================================
// RECORD UPSERT TESTS
// =============================================================================

func TestUpsertRecord_CreateThenUpdateKeepsID(t *testing.T) {
	// GIVEN: A registered abono record
	// WHEN: Upserting the same natural key again with a new observação
	// THEN: The same record is updated, not duplicated

	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3, Observacao: "remarcado",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "remarcado", second.Observacao)

	all, err := svc.ListForYear(ctx, leave.TypeAbono, 2026)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertRecord_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{Ano: 2026, Mes: 3})
	assert.True(t, leave.IsValidation(err), "missing person")

	_, err = svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{PersonID: "p1", Mes: 3})
	assert.True(t, leave.IsValidation(err), "missing year")

	_, err = svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{PersonID: "p1", Ano: 2026})
	assert.True(t, leave.IsValidation(err), "abono requires a target month")

	_, err = svc.UpsertRecord(ctx, leave.TypeFerias, leave.RecordParams{PersonID: "p1", Ano: 2026, MesInicio: 14})
	assert.True(t, leave.IsValidation(err), "month out of range")
}

func TestUpsertRecord_FeriasRejectsAbonoMonth(t *testing.T) {
	// Férias rows are keyed by person/year alone (mes stays 0); a stray
	// mes would split the record across two store keys.

	svc, _ := newTestService(t)

	_, err := svc.UpsertRecord(context.Background(), leave.TypeFerias, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3, MesInicio: 3,
	})
	assert.True(t, leave.IsValidation(err))
	assert.Contains(t, err.Error(), "mes")
}

// =============================================================================
// INSTALLMENT UPSERT TESTS
// =============================================================================

func TestUpsertInstallment_DatesAPlannedRecord(t *testing.T) {
	// GIVEN: An undated abono record
	// WHEN: Pinning its first parcela to a concrete range
	// THEN: The stored record carries the dates and day count

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.NoError(t, err)

	a, err := svc.UpsertInstallment(ctx, leave.TypeAbono, "p1", 2026, 3, 1, leave.InstallmentPatch{
		Inicio: strPtr("2026-03-02"),
		Fim:    strPtr("2026-03-06"),
		Dias:   intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", a.Installments[0].Inicio)
	assert.Equal(t, "2026-03-06", a.Installments[0].Fim)
	assert.Equal(t, 5, a.Installments[0].Dias)
	assert.True(t, a.HasDatedInstallment())
}

func TestUpsertInstallment_IncompleteRange_Rejected(t *testing.T) {
	// GIVEN: A patch setting only the start of parcela 2
	// WHEN: Upserting
	// THEN: A validation error naming the installment is surfaced

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.NoError(t, err)

	_, err = svc.UpsertInstallment(ctx, leave.TypeAbono, "p1", 2026, 3, 2, leave.InstallmentPatch{
		Inicio: strPtr("2026-03-02"),
	})
	require.Error(t, err)
	assert.True(t, leave.IsValidation(err))
	assert.Contains(t, err.Error(), "incomplete date range on installment 2")
}

func TestUpsertInstallment_RejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.NoError(t, err)

	_, err = svc.UpsertInstallment(ctx, leave.TypeAbono, "p1", 2026, 3, 0, leave.InstallmentPatch{})
	assert.True(t, leave.IsValidation(err), "index below range")

	_, err = svc.UpsertInstallment(ctx, leave.TypeAbono, "p1", 2026, 3, 4, leave.InstallmentPatch{})
	assert.True(t, leave.IsValidation(err), "index above range")

	_, err = svc.UpsertInstallment(ctx, leave.TypeAbono, "p1", 2026, 3, 1, leave.InstallmentPatch{
		Dias: intPtr(-2),
	})
	assert.True(t, leave.IsValidation(err), "negative day count")

	_, err = svc.UpsertInstallment(ctx, leave.TypeAbono, "p1", 2026, 3, 1, leave.InstallmentPatch{
		Inicio: strPtr("2026-03-20"),
		Fim:    strPtr("2026-03-06"),
	})
	assert.True(t, leave.IsValidation(err), "end before start")
}

func TestUpsertInstallment_UnregisteredRecord_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpsertInstallment(context.Background(), leave.TypeAbono, "ghost", 2026, 3, 1,
		leave.InstallmentPatch{Dias: intPtr(5)})
	assert.True(t, leave.IsNotFound(err))
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete_RemovesRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.UpsertRecord(ctx, leave.TypeAbono, leave.RecordParams{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, leave.TypeAbono, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Delete(ctx, leave.TypeAbono, a.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second delete is a no-op")
}
