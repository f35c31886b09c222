/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements all persistence interfaces (roster.AlterationStore,
  leave.Store, calendar.HolidayCalendar) using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  alteracoes:       Manual roster overrides, one row per (data, unidade)
  leave_allotments: Annual leave records, three parcela column groups
  holidays:         Holiday calendar, seeded from the built-in tables

UPSERT KEYS:
  alteracoes        UNIQUE(data, unidade) - the single-row invariant of
                    a roster override is enforced by the database, not
                    by application bookkeeping
  leave_allotments  UNIQUE(tipo, efetivo_id, ano, mes) - one record per
                    person per year per type (mes disambiguates abono,
                    which is month-scoped; férias rows store mes = 0)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Within one (data, unidade) key
  the mutex serializes upsert/remove, so readers never observe a torn
  write. In production with PostgreSQL, database-level concurrency
  control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

HOLIDAYS:
  The holidays table is seeded from calendar.BuiltinYears on migrate and
  loaded into memory once; the HolidayCalendar methods never hit the
  database on the hot path.

USAGE:
  store, err := sqlite.New("./data/roster.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  // store implements roster.AlterationStore and calendar.HolidayCalendar;
  // store.Leave() is the leave.Store view.

SEE ALSO:
  - roster/alteration.go: AlterationStore interface
  - leave/store.go: leave.Store interface
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/roster"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex

	holidayMu sync.RWMutex
	holidays  map[string]calendar.Holiday // by ISO date
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, holidays: make(map[string]calendar.Holiday)}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.loadHolidays(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema and seeds the holiday table.
func (s *Store) migrate() error {
	schema := `
	-- Manual roster overrides
	CREATE TABLE IF NOT EXISTS alteracoes (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		unidade TEXT NOT NULL,
		equipe_anterior TEXT,
		equipe_nova TEXT NOT NULL,
		motivo TEXT,
		criado_por TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(data, unidade)
	);

	CREATE INDEX IF NOT EXISTS idx_alteracoes_unidade_data
		ON alteracoes(unidade, data);

	-- Annual leave records (up to three parcelas each)
	CREATE TABLE IF NOT EXISTS leave_allotments (
		id TEXT PRIMARY KEY,
		tipo TEXT NOT NULL,
		efetivo_id TEXT NOT NULL,
		ano INTEGER NOT NULL,
		mes INTEGER NOT NULL DEFAULT 0,
		mes_inicio INTEGER NOT NULL DEFAULT 0,
		mes_fim INTEGER NOT NULL DEFAULT 0,
		observacao TEXT,
		parcela1_inicio TEXT, parcela1_fim TEXT, parcela1_dias INTEGER NOT NULL DEFAULT 0,
		parcela2_inicio TEXT, parcela2_fim TEXT, parcela2_dias INTEGER NOT NULL DEFAULT 0,
		parcela3_inicio TEXT, parcela3_fim TEXT, parcela3_dias INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(tipo, efetivo_id, ano, mes)
	);

	CREATE INDEX IF NOT EXISTS idx_leave_tipo_ano
		ON leave_allotments(tipo, ano);

	-- Holiday calendar
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL UNIQUE,
		nome TEXT NOT NULL,
		facultativo INTEGER NOT NULL DEFAULT 0
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.seedHolidays()
}

// seedHolidays inserts the built-in holiday tables, skipping dates an
// operator already customized.
func (s *Store) seedHolidays() error {
	builtin := calendar.NewBuiltinCalendar()
	for _, year := range calendar.BuiltinYears() {
		for _, h := range builtin.Holidays(year) {
			optional := 0
			if h.Optional {
				optional = 1
			}
			_, err := s.db.Exec(`
				INSERT INTO holidays (id, data, nome, facultativo)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(data) DO NOTHING
			`, h.ID, h.Date.String(), h.Name, optional)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) loadHolidays() error {
	rows, err := s.db.Query("SELECT id, data, nome, facultativo FROM holidays")
	if err != nil {
		return err
	}
	defer rows.Close()

	loaded := make(map[string]calendar.Holiday)
	for rows.Next() {
		var h calendar.Holiday
		var date string
		var optional int
		if err := rows.Scan(&h.ID, &date, &h.Name, &optional); err != nil {
			return err
		}
		d, err := calendar.ParseDate(date)
		if err != nil {
			continue
		}
		h.Date = d
		h.Optional = optional == 1
		loaded[date] = h
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.holidayMu.Lock()
	s.holidays = loaded
	s.holidayMu.Unlock()
	return nil
}

// =============================================================================
// ALTERATION STORE (roster.AlterationStore interface)
// =============================================================================

// Get retrieves the alteration for (date, unit), or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, d calendar.Date, u roster.Unit) (*roster.Alteration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, data, unidade, equipe_anterior, equipe_nova, motivo, criado_por, created_at
		FROM alteracoes WHERE data = ? AND unidade = ?
	`, d.String(), string(u))

	a, err := scanAlteration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Upsert writes an alteration, replacing any existing row for its
// (date, unit) key. The stored id and created_at survive a replace.
func (s *Store) Upsert(ctx context.Context, a roster.Alteration) (*roster.Alteration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var replaced any
	if a.ReplacedTeam != nil {
		replaced = string(*a.ReplacedTeam)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alteracoes (id, data, unidade, equipe_anterior, equipe_nova, motivo, criado_por, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(data, unidade) DO UPDATE SET
			equipe_anterior = excluded.equipe_anterior,
			equipe_nova = excluded.equipe_nova,
			motivo = excluded.motivo,
			criado_por = excluded.criado_por
	`,
		a.ID, a.Date.String(), string(a.Unit), replaced,
		string(a.NewTeam), a.Reason, a.CreatedBy,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, data, unidade, equipe_anterior, equipe_nova, motivo, criado_por, created_at
		FROM alteracoes WHERE data = ? AND unidade = ?
	`, a.Date.String(), string(a.Unit))
	return scanAlteration(row)
}

// Remove deletes the alteration for (date, unit). Returns false when
// nothing matched.
func (s *Store) Remove(ctx context.Context, d calendar.Date, u roster.Unit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM alteracoes WHERE data = ? AND unidade = ?",
		d.String(), string(u),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListRange returns a unit's alterations within [from, to], ascending
// by date.
func (s *Store) ListRange(ctx context.Context, u roster.Unit, from, to calendar.Date) ([]roster.Alteration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, unidade, equipe_anterior, equipe_nova, motivo, criado_por, created_at
		FROM alteracoes
		WHERE unidade = ? AND data >= ? AND data <= ?
		ORDER BY data
	`, string(u), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []roster.Alteration
	for rows.Next() {
		a, err := scanAlteration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlteration(row rowScanner) (*roster.Alteration, error) {
	var a roster.Alteration
	var date, createdAt string
	var unit, newTeam string
	var replaced, motivo, criadoPor sql.NullString

	err := row.Scan(&a.ID, &date, &unit, &replaced, &newTeam, &motivo, &criadoPor, &createdAt)
	if err != nil {
		return nil, err
	}

	d, err := calendar.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("corrupt alteration date %q: %w", date, err)
	}
	a.Date = d
	a.Unit = roster.Unit(unit)
	a.NewTeam = roster.Team(newTeam)
	if replaced.Valid {
		t := roster.Team(replaced.String)
		a.ReplacedTeam = &t
	}
	a.Reason = motivo.String
	a.CreatedBy = criadoPor.String
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// =============================================================================
// LEAVE STORE (leave.Store interface)
// =============================================================================

const leaveColumns = `id, tipo, efetivo_id, ano, mes, mes_inicio, mes_fim, observacao,
	parcela1_inicio, parcela1_fim, parcela1_dias,
	parcela2_inicio, parcela2_fim, parcela2_dias,
	parcela3_inicio, parcela3_fim, parcela3_dias,
	created_at, updated_at`

// LeaveStore is the leave.Store view of the database. A separate
// receiver keeps its Get distinct from the alteration Get.
type LeaveStore struct {
	s *Store
}

// Leave returns the leave.Store view.
func (s *Store) Leave() *LeaveStore {
	return &LeaveStore{s: s}
}

// ListForYear returns every allotment of a type for a year.
func (l *LeaveStore) ListForYear(ctx context.Context, t leave.Type, year int) ([]leave.Allotment, error) {
	s := l.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+leaveColumns+" FROM leave_allotments WHERE tipo = ? AND ano = ? ORDER BY efetivo_id, mes",
		string(t), year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Allotment
	for rows.Next() {
		a, err := scanAllotment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Get retrieves an allotment by natural key, or (nil, nil) when
// absent. mes is ignored for férias, which has one record per person
// per year.
func (l *LeaveStore) Get(ctx context.Context, t leave.Type, personID string, year, mes int) (*leave.Allotment, error) {
	s := l.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + leaveColumns + " FROM leave_allotments WHERE tipo = ? AND efetivo_id = ? AND ano = ?"
	args := []any{string(t), personID, year}
	if t == leave.TypeAbono {
		query += " AND mes = ?"
		args = append(args, mes)
	}

	a, err := scanAllotment(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Put upserts an allotment by its natural key. The stored id and
// created_at survive a replace.
func (l *LeaveStore) Put(ctx context.Context, a leave.Allotment) (*leave.Allotment, error) {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_allotments (id, tipo, efetivo_id, ano, mes, mes_inicio, mes_fim, observacao,
			parcela1_inicio, parcela1_fim, parcela1_dias,
			parcela2_inicio, parcela2_fim, parcela2_dias,
			parcela3_inicio, parcela3_fim, parcela3_dias,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tipo, efetivo_id, ano, mes) DO UPDATE SET
			mes_inicio = excluded.mes_inicio,
			mes_fim = excluded.mes_fim,
			observacao = excluded.observacao,
			parcela1_inicio = excluded.parcela1_inicio,
			parcela1_fim = excluded.parcela1_fim,
			parcela1_dias = excluded.parcela1_dias,
			parcela2_inicio = excluded.parcela2_inicio,
			parcela2_fim = excluded.parcela2_fim,
			parcela2_dias = excluded.parcela2_dias,
			parcela3_inicio = excluded.parcela3_inicio,
			parcela3_fim = excluded.parcela3_fim,
			parcela3_dias = excluded.parcela3_dias,
			updated_at = excluded.updated_at
	`,
		a.ID, string(a.Type), a.PersonID, a.Ano, a.Mes, a.MesInicio, a.MesFim, a.Observacao,
		a.Installments[0].Inicio, a.Installments[0].Fim, a.Installments[0].Dias,
		a.Installments[1].Inicio, a.Installments[1].Fim, a.Installments[1].Dias,
		a.Installments[2].Inicio, a.Installments[2].Fim, a.Installments[2].Dias,
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}

	saved, err := scanAllotment(s.db.QueryRowContext(ctx,
		"SELECT "+leaveColumns+" FROM leave_allotments WHERE tipo = ? AND efetivo_id = ? AND ano = ? AND mes = ?",
		string(a.Type), a.PersonID, a.Ano, a.Mes,
	))
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Delete removes an allotment by id and returns the removed row, or
// (nil, nil) when nothing matched.
func (l *LeaveStore) Delete(ctx context.Context, t leave.Type, id string) (*leave.Allotment, error) {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := scanAllotment(s.db.QueryRowContext(ctx,
		"SELECT "+leaveColumns+" FROM leave_allotments WHERE id = ? AND tipo = ?",
		id, string(t),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM leave_allotments WHERE id = ? AND tipo = ?",
		id, string(t),
	); err != nil {
		return nil, err
	}
	return removed, nil
}

func scanAllotment(row rowScanner) (*leave.Allotment, error) {
	var a leave.Allotment
	var tipo string
	var observacao sql.NullString
	var createdAt, updatedAt string
	inicio := make([]sql.NullString, 3)
	fim := make([]sql.NullString, 3)

	err := row.Scan(
		&a.ID, &tipo, &a.PersonID, &a.Ano, &a.Mes, &a.MesInicio, &a.MesFim, &observacao,
		&inicio[0], &fim[0], &a.Installments[0].Dias,
		&inicio[1], &fim[1], &a.Installments[1].Dias,
		&inicio[2], &fim[2], &a.Installments[2].Dias,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = leave.Type(tipo)
	a.Observacao = observacao.String
	for i := 0; i < leave.MaxInstallments; i++ {
		a.Installments[i].Inicio = inicio[i].String
		a.Installments[i].Fim = fim[i].String
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &a, nil
}

// =============================================================================
// HOLIDAY CALENDAR (calendar.HolidayCalendar interface)
// =============================================================================

// IsHoliday reports whether the date is a full holiday.
func (s *Store) IsHoliday(d calendar.Date) bool {
	s.holidayMu.RLock()
	defer s.holidayMu.RUnlock()

	h, ok := s.holidays[d.String()]
	return ok && !h.Optional
}

// IsOptionalDay reports whether the date is a ponto facultativo.
func (s *Store) IsOptionalDay(d calendar.Date) bool {
	s.holidayMu.RLock()
	defer s.holidayMu.RUnlock()

	h, ok := s.holidays[d.String()]
	return ok && h.Optional
}

// Holidays returns the calendar entries for one year, ascending.
func (s *Store) Holidays(year int) []calendar.Holiday {
	s.holidayMu.RLock()
	defer s.holidayMu.RUnlock()

	var out []calendar.Holiday
	for _, h := range s.holidays {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// PutHoliday adds or updates a calendar entry and refreshes the cache.
func (s *Store) PutHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	optional := 0
	if h.Optional {
		optional = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, data, nome, facultativo)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(data) DO UPDATE SET
			nome = excluded.nome,
			facultativo = excluded.facultativo
	`, h.ID, h.Date.String(), h.Name, optional)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.loadHolidays()
}
