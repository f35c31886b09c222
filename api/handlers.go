/*
handlers.go - HTTP API handlers for the duty-roster engine

PURPOSE:
  Exposes the roster and leave engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Roster:
    GET    /api/roster/{unit}/{date}   Resolve one duty day
    GET    /api/roster/{unit}          Resolve a date range (?start=&end=)
    PUT    /api/roster/{unit}/{date}   Write a manual override
    DELETE /api/roster/{unit}/{date}   Remove an override

  Administrative schedule:
    GET    /api/admin/schedule          Working day, section, office hours
    GET    /api/holidays                Holiday calendar (?year=)

  Leave:
    GET    /api/leave/{type}            List a year's allotments (?year=)
    POST   /api/leave/{type}            Upsert an allotment record
    PUT    /api/leave/{type}/{person}/{year}/installments/{n}
                                        Patch one parcela
    DELETE /api/leave/{type}/{id}       Delete an allotment

  Quotas:
    GET    /api/quotas/{type}           Monthly quota (?year=&month=)
    POST   /api/quotas/refetch          Recompute bypassing the cache

  Live:
    GET    /api/live                    Websocket stream of change topics

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - live.go: Websocket feed
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/live"
	"github.com/bpma/roster-engine/roster"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Roster     *roster.Service
	Resolver   *roster.Resolver
	Leave      *leave.Service
	RosterView *live.RosterView
	QuotaView  *live.QuotaView
	Calendar   calendar.HolidayCalendar
	LiveFeed   *LiveFeed
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

// ResolveDay resolves the duty team for one (date, unit).
// GET /api/roster/{unit}/{date}
func (h *Handler) ResolveDay(w http.ResponseWriter, r *http.Request) {
	unit, err := roster.ParseUnit(chi.URLParam(r, "unit"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}

	res, err := h.Resolver.Resolve(r.Context(), d, unit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResolutionDTO(res))
}

// ResolveRange resolves every day of [start, end] for one unit.
// GET /api/roster/{unit}?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) ResolveRange(w http.ResponseWriter, r *http.Request) {
	unit, err := roster.ParseUnit(chi.URLParam(r, "unit"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	start, err := calendar.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date", err)
		return
	}
	end, err := calendar.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date", err)
		return
	}

	resolved, err := h.Resolver.ResolveRange(r.Context(), start, end, unit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]ResolutionDTO, 0, len(resolved))
	for _, res := range resolved {
		out = append(out, toResolutionDTO(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpsertAlteration writes a manual override for one (date, unit).
// PUT /api/roster/{unit}/{date}
func (h *Handler) UpsertAlteration(w http.ResponseWriter, r *http.Request) {
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}

	var req UpsertAlterationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	a, err := h.Roster.Upsert(r.Context(), d, roster.Unit(chi.URLParam(r, "unit")),
		roster.Team(req.NewTeam), req.Reason, req.CreatedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlterationDTO(*a))
}

// RemoveAlteration deletes the override for one (date, unit).
// DELETE /api/roster/{unit}/{date}
func (h *Handler) RemoveAlteration(w http.ResponseWriter, r *http.Request) {
	d, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err)
		return
	}

	removed, err := h.Roster.Remove(r.Context(), d, roster.Unit(chi.URLParam(r, "unit")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveResultDTO{Removed: removed})
}

// =============================================================================
// ADMIN SCHEDULE ENDPOINTS
// =============================================================================

// AdminSchedule reports the administrative-section view of one day.
// GET /api/admin/schedule?date=YYYY-MM-DD (defaults to today)
func (h *Handler) AdminSchedule(w http.ResponseWriter, r *http.Request) {
	d := calendar.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		var err error
		d, err = calendar.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date", err)
			return
		}
	}

	dto := AdminScheduleDTO{
		Date:       d.String(),
		WorkingDay: calendar.WorksToday(d, h.Calendar),
	}
	if dto.WorkingDay {
		dto.OfficeHours = calendar.OfficeHours(d)
		if section, ok := calendar.SectionOnDuty(d, h.Calendar); ok {
			dto.Section = section
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListHolidays returns the holiday calendar for one year.
// GET /api/holidays?year=2026
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := calendar.Today().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		var err error
		year, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year", err)
			return
		}
	}

	holidays := h.Calendar.Holidays(year)
	out := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		out = append(out, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// LEAVE ENDPOINTS
// =============================================================================

// ListLeave returns every allotment of a type for a year.
// GET /api/leave/{type}?year=2026
func (h *Handler) ListLeave(w http.ResponseWriter, r *http.Request) {
	t, err := leave.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}

	allotments, err := h.Leave.ListForYear(r.Context(), t, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]AllotmentDTO, 0, len(allotments))
	for _, a := range allotments {
		out = append(out, toAllotmentDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpsertLeaveRecord creates or updates an allotment's record fields.
// POST /api/leave/{type}
func (h *Handler) UpsertLeaveRecord(w http.ResponseWriter, r *http.Request) {
	t, err := leave.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req UpsertRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	a, err := h.Leave.UpsertRecord(r.Context(), t, leave.RecordParams{
		PersonID:   req.PersonID,
		Ano:        req.Ano,
		Mes:        req.Mes,
		MesInicio:  req.MesInicio,
		MesFim:     req.MesFim,
		Observacao: req.Observacao,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllotmentDTO(*a))
}

// UpsertLeaveInstallment patches one parcela of an allotment.
// PUT /api/leave/{type}/{person}/{year}/installments/{n}
func (h *Handler) UpsertLeaveInstallment(w http.ResponseWriter, r *http.Request) {
	t, err := leave.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid installment index", err)
		return
	}

	var req UpsertInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	a, err := h.Leave.UpsertInstallment(r.Context(), t, chi.URLParam(r, "person"),
		year, req.Mes, index, leave.InstallmentPatch{
			Inicio: req.Inicio,
			Fim:    req.Fim,
			Dias:   req.Dias,
		})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAllotmentDTO(*a))
}

// DeleteLeave removes an allotment.
// DELETE /api/leave/{type}/{id}
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	t, err := leave.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	removed, err := h.Leave.Delete(r.Context(), t, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveResultDTO{Removed: removed})
}

// =============================================================================
// QUOTA ENDPOINTS
// =============================================================================

// GetQuota returns the monthly quota for one leave type.
// GET /api/quotas/{type}?year=2026&month=3
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	t, err := leave.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	data, err := h.QuotaView.Month(r.Context(), t, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTO(t, year, month, data))
}

// RefetchQuota recomputes one quota bucket, bypassing the cache.
// POST /api/quotas/refetch
func (h *Handler) RefetchQuota(w http.ResponseWriter, r *http.Request) {
	var req RefetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	t, err := leave.ParseType(req.Type)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	data, err := h.QuotaView.Refetch(r.Context(), t, req.Year, req.Month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuotaDTO(t, req.Year, req.Month, data))
}

func toQuotaDTO(t leave.Type, year, month int, data leave.QuotaData) QuotaDTO {
	return QuotaDTO{
		Type:     string(t),
		Year:     year,
		Month:    month,
		Limite:   data.Limite,
		Previsto: data.Previsto,
		Marcados: data.Marcados,
		Saldo:    data.Saldo,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case roster.IsValidation(err) || leave.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, roster.ErrUnknownUnit):
		writeError(w, http.StatusBadRequest, "unknown unit", err)
	case roster.IsNotFound(err) || leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}
