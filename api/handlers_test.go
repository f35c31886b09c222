package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpma/roster-engine/api"
	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/events"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/live"
	"github.com/bpma/roster-engine/roster"
	"github.com/bpma/roster-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	bus := events.NewBroker()
	bus.Start()
	t.Cleanup(bus.Stop)

	alterations := memory.NewAlterationStore()
	policy := roster.NewRotationPolicy(roster.DefaultRotations(2026), nil)
	cal := calendar.NewBuiltinCalendar()

	rosterSvc := roster.NewService(alterations, policy, bus, zerolog.Nop())
	resolver := roster.NewResolver(policy, alterations, cal, zerolog.Nop())

	leaveStore := memory.NewLeaveStore()
	leaveSvc := leave.NewService(leaveStore, bus, zerolog.Nop())
	agg := leave.NewAggregator(leaveStore, leave.DefaultLimits(), zerolog.Nop())

	rosterView := live.NewRosterView(resolver, bus, zerolog.Nop())
	rosterView.Start()
	t.Cleanup(rosterView.Stop)

	quotaView := live.NewQuotaView(agg, bus, zerolog.Nop())
	quotaView.Start()
	t.Cleanup(quotaView.Stop)

	handler := &api.Handler{
		Roster:     rosterSvc,
		Resolver:   resolver,
		Leave:      leaveSvc,
		RosterView: rosterView,
		QuotaView:  quotaView,
		Calendar:   cal,
		LiveFeed:   api.NewLiveFeed(bus, zerolog.Nop()),
	}

	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// =============================================================================
// ROSTER ENDPOINT TESTS
// =============================================================================

func TestAPI_ResolveDay(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/roster/Guarda/2026-01-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decode[api.ResolutionDTO](t, resp)
	assert.Equal(t, "Bravo", dto.Team)
	assert.True(t, dto.Holiday)
	assert.False(t, dto.Overridden)
}

func TestAPI_OverrideLifecycle(t *testing.T) {
	// GIVEN: A running server
	// WHEN: PUT an override, resolve, then DELETE it
	// THEN: The override round-trips and the delete reports the match

	srv := newTestServer(t)
	url := srv.URL + "/api/roster/Guarda/2026-03-10"

	resp := doJSON(t, http.MethodPut, url, api.UpsertAlterationRequest{
		NewTeam: "Delta", Reason: "troca solicitada", CreatedBy: "sgt-ops",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	alt := decode[api.AlterationDTO](t, resp)
	assert.Equal(t, "Delta", alt.NewTeam)
	require.NotNil(t, alt.ReplacedTeam)
	assert.Equal(t, "Bravo", *alt.ReplacedTeam)

	resp = doJSON(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[api.ResolutionDTO](t, resp)
	assert.Equal(t, "Delta", res.Team)
	assert.True(t, res.Overridden)

	resp = doJSON(t, http.MethodDelete, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[api.RemoveResultDTO](t, resp).Removed)
}

func TestAPI_UpsertRejectsUnknownTeam(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/roster/Guarda/2026-03-10",
		api.UpsertAlterationRequest{NewTeam: "Echo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ResolveRange(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet,
		srv.URL+"/api/roster/GTA/?start=2026-01-01&end=2026-01-07", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	days := decode[[]api.ResolutionDTO](t, resp)
	require.Len(t, days, 7)
	assert.Equal(t, "Alfa", days[0].Team)
	assert.Equal(t, "Alfa", days[6].Team)
}

// =============================================================================
// ADMIN / HOLIDAY ENDPOINT TESTS
// =============================================================================

func TestAPI_AdminSchedule(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/admin/schedule?date=2026-01-09", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decode[api.AdminScheduleDTO](t, resp)
	assert.True(t, dto.WorkingDay)
	assert.Equal(t, "07:00h às 13:00h", dto.OfficeHours)
	assert.NotEmpty(t, dto.Section)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/schedule?date=2026-01-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	holiday := decode[api.AdminScheduleDTO](t, resp)
	assert.False(t, holiday.WorkingDay)
	assert.Empty(t, holiday.Section)
}

func TestAPI_ListHolidays(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/holidays?year=2026", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	holidays := decode[[]api.HolidayDTO](t, resp)
	assert.NotEmpty(t, holidays)
}

// =============================================================================
// LEAVE / QUOTA ENDPOINT TESTS
// =============================================================================

func TestAPI_LeaveAndQuotaFlow(t *testing.T) {
	// GIVEN: An abono record dated through the API
	// WHEN: Reading the March quota
	// THEN: The dated span shows up in marcados

	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leave/abono", api.UpsertRecordRequest{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	inicio, fim, dias := "2026-03-02", "2026-03-06", 5
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/leave/abono/p1/2026/installments/1",
		api.UpsertInstallmentRequest{Mes: 3, Inicio: &inicio, Fim: &fim, Dias: &dias})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/quotas/refetch",
		api.RefetchRequest{Type: "abono", Year: 2026, Month: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	quota := decode[api.QuotaDTO](t, resp)
	assert.Equal(t, 80, quota.Limite)
	assert.Equal(t, 5, quota.Marcados)
	assert.Equal(t, 75, quota.Saldo)
}

func TestAPI_DeleteLeaveRecomputesQuota(t *testing.T) {
	// GIVEN: A dated abono record reflected in the cached March quota
	// WHEN: DELETE by id, with no year hint in the request
	// THEN: The cached quota recomputes to empty on its own

	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leave/abono", api.UpsertRecordRequest{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	record := decode[api.AllotmentDTO](t, resp)

	inicio, fim := "2026-03-02", "2026-03-06"
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/leave/abono/p1/2026/installments/1",
		api.UpsertInstallmentRequest{Mes: 3, Inicio: &inicio, Fim: &fim})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/quotas/abono?year=2026&month=3", nil)
		return resp.StatusCode == http.StatusOK && decode[api.QuotaDTO](t, resp).Marcados == 5
	}, 2*time.Second, 10*time.Millisecond)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/leave/abono/"+record.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[api.RemoveResultDTO](t, resp).Removed)

	assert.Eventually(t, func() bool {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/quotas/abono?year=2026&month=3", nil)
		return resp.StatusCode == http.StatusOK && decode[api.QuotaDTO](t, resp).Marcados == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAPI_IncompleteInstallment_Surfaced(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/leave/abono", api.UpsertRecordRequest{
		PersonID: "p1", Ano: 2026, Mes: 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	inicio := "2026-03-02"
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/leave/abono/p1/2026/installments/2",
		api.UpsertInstallmentRequest{Mes: 3, Inicio: &inicio})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errResp := decode[api.ErrorResponse](t, resp)
	assert.Contains(t, errResp.Details, "incomplete date range on installment 2")
}

func TestAPI_QuotaValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/quotas/abono?year=2026&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/quotas/licenca?year=2026&month=3", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
