/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the domain services, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/roster"
)

// =============================================================================
// ROSTER TYPES
// =============================================================================

// ResolutionDTO is one resolved duty day.
type ResolutionDTO struct {
	Date       string `json:"date"`
	Unit       string `json:"unit"`
	Team       string `json:"team"`
	Overridden bool   `json:"overridden"`
	Holiday    bool   `json:"holiday"`
}

func toResolutionDTO(r roster.Resolution) ResolutionDTO {
	return ResolutionDTO{
		Date:       r.Date.String(),
		Unit:       string(r.Unit),
		Team:       string(r.Team),
		Overridden: r.Overridden,
		Holiday:    r.Holiday,
	}
}

// UpsertAlterationRequest is the body of an override write.
type UpsertAlterationRequest struct {
	NewTeam   string `json:"new_team"`
	Reason    string `json:"reason,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// AlterationDTO represents a stored override in API responses.
type AlterationDTO struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Unit         string  `json:"unit"`
	ReplacedTeam *string `json:"replaced_team,omitempty"`
	NewTeam      string  `json:"new_team"`
	Reason       string  `json:"reason,omitempty"`
	CreatedBy    string  `json:"created_by,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

func toAlterationDTO(a roster.Alteration) AlterationDTO {
	dto := AlterationDTO{
		ID:        a.ID,
		Date:      a.Date.String(),
		Unit:      string(a.Unit),
		NewTeam:   string(a.NewTeam),
		Reason:    a.Reason,
		CreatedBy: a.CreatedBy,
	}
	if a.ReplacedTeam != nil {
		s := string(*a.ReplacedTeam)
		dto.ReplacedTeam = &s
	}
	if !a.CreatedAt.IsZero() {
		dto.CreatedAt = a.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// RemoveResultDTO reports whether a delete matched anything.
type RemoveResultDTO struct {
	Removed bool `json:"removed"`
}

// =============================================================================
// ADMIN SCHEDULE TYPES
// =============================================================================

// AdminScheduleDTO is the administrative-section view of one day.
type AdminScheduleDTO struct {
	Date        string `json:"date"`
	WorkingDay  bool   `json:"working_day"`
	OfficeHours string `json:"office_hours,omitempty"`
	Section     string `json:"section,omitempty"`
}

// HolidayDTO represents a calendar entry.
type HolidayDTO struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:       h.ID,
		Date:     h.Date.String(),
		Name:     h.Name,
		Optional: h.Optional,
	}
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

// InstallmentDTO is one parcela of an allotment.
type InstallmentDTO struct {
	Inicio string `json:"inicio,omitempty"`
	Fim    string `json:"fim,omitempty"`
	Dias   int    `json:"dias,omitempty"`
}

// AllotmentDTO represents a leave record in API responses.
type AllotmentDTO struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	PersonID     string           `json:"person_id"`
	Ano          int              `json:"ano"`
	Mes          int              `json:"mes,omitempty"`
	MesInicio    int              `json:"mes_inicio,omitempty"`
	MesFim       int              `json:"mes_fim,omitempty"`
	Observacao   string           `json:"observacao,omitempty"`
	Installments []InstallmentDTO `json:"installments"`
	UpdatedAt    string           `json:"updated_at,omitempty"`
}

func toAllotmentDTO(a leave.Allotment) AllotmentDTO {
	dto := AllotmentDTO{
		ID:         a.ID,
		Type:       string(a.Type),
		PersonID:   a.PersonID,
		Ano:        a.Ano,
		Mes:        a.Mes,
		MesInicio:  a.MesInicio,
		MesFim:     a.MesFim,
		Observacao: a.Observacao,
	}
	for _, inst := range a.Installments {
		dto.Installments = append(dto.Installments, InstallmentDTO{
			Inicio: inst.Inicio,
			Fim:    inst.Fim,
			Dias:   inst.Dias,
		})
	}
	if !a.UpdatedAt.IsZero() {
		dto.UpdatedAt = a.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// UpsertRecordRequest creates or updates the allotment-level fields.
type UpsertRecordRequest struct {
	PersonID   string `json:"person_id"`
	Ano        int    `json:"ano"`
	Mes        int    `json:"mes,omitempty"`
	MesInicio  int    `json:"mes_inicio,omitempty"`
	MesFim     int    `json:"mes_fim,omitempty"`
	Observacao string `json:"observacao,omitempty"`
}

// UpsertInstallmentRequest patches one parcela. Nil fields keep the
// stored value.
type UpsertInstallmentRequest struct {
	Mes    int     `json:"mes,omitempty"`
	Inicio *string `json:"inicio,omitempty"`
	Fim    *string `json:"fim,omitempty"`
	Dias   *int    `json:"dias,omitempty"`
}

// QuotaDTO is the derived monthly quota for one leave type.
type QuotaDTO struct {
	Type     string `json:"type"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Limite   int    `json:"limite"`
	Previsto int    `json:"previsto"`
	Marcados int    `json:"marcados"`
	Saldo    int    `json:"saldo"`
}

// RefetchRequest forces a quota recomputation.
type RefetchRequest struct {
	Type  string `json:"type"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
