package record

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rebar-inspect/internal/compliance"
)

// Store is a SQLite-backed record store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS inspection_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id TEXT UNIQUE NOT NULL,
			inspection_type TEXT NOT NULL,
			project_name TEXT,
			location TEXT,
			member_id TEXT,
			section_width INTEGER,
			section_height INTEGER,
			detected_count INTEGER,
			design_total INTEGER,
			compliance_status TEXT,
			compliance_message TEXT,
			rebar_config TEXT,
			predictions TEXT,
			hoop_path TEXT,
			spacings TEXT,
			image_url TEXT,
			inspector TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_records_type ON inspection_records(inspection_type);
		CREATE INDEX IF NOT EXISTS idx_records_created ON inspection_records(created_at);
	`)
	return err
}

// NewRecordID generates a unique human-scannable record identifier like
// IR20260830142501A3F2.
func NewRecordID(now time.Time) string {
	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("IR%s%s", now.Format("20060102150405"), strings.ToUpper(hex.EncodeToString(suffix)))
}

// Insert stores a record, assigning its record ID and timestamp when
// unset, and returns the stored row.
func (s *Store) Insert(r Record) (Record, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.RecordID == "" {
		r.RecordID = NewRecordID(r.CreatedAt)
	}

	barGroups, err := marshalJSON(r.BarGroups)
	if err != nil {
		return Record{}, err
	}
	predictions, err := marshalJSON(r.Predictions)
	if err != nil {
		return Record{}, err
	}
	hoopPath, err := marshalJSON(r.HoopPath)
	if err != nil {
		return Record{}, err
	}
	segments, err := marshalJSON(r.Segments)
	if err != nil {
		return Record{}, err
	}

	result, err := s.db.Exec(`
		INSERT INTO inspection_records (
			record_id, inspection_type, project_name, location, member_id,
			section_width, section_height, detected_count, design_total,
			compliance_status, compliance_message, rebar_config, predictions,
			hoop_path, spacings, image_url, inspector, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RecordID, r.InspectionType, r.ProjectName, r.Location, r.MemberID,
		r.SectionWidth, r.SectionHeight, r.DetectedCount, r.DesignTotal,
		string(r.Compliance.Verdict), r.Compliance.Message, barGroups, predictions,
		hoopPath, segments, r.ImageURL, r.Inspector, r.CreatedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert record: %w", err)
	}

	r.ID, err = result.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("read insert id: %w", err)
	}
	return r, nil
}

// Get returns one record by row ID.
func (s *Store) Get(id int64) (Record, error) {
	row := s.db.QueryRow(selectColumns+` FROM inspection_records WHERE id = ?`, id)
	return scanRecord(row)
}

// Delete removes a record by row ID.
func (s *Store) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM inspection_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns a page of records, newest first, optionally filtered by
// inspection type.
func (s *Store) List(f Filter) (Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}

	where := ""
	args := []any{}
	if f.InspectionType != "" {
		where = " WHERE inspection_type = ?"
		args = append(args, f.InspectionType)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM inspection_records`+where, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count records: %w", err)
	}

	listArgs := append(args, f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := s.db.Query(
		selectColumns+` FROM inspection_records`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		listArgs...,
	)
	if err != nil {
		return Page{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	page := Page{
		Records: []Record{},
		Total:   total,
		Page:    f.Page,
		PerPage: f.PerPage,
		Pages:   (total + f.PerPage - 1) / f.PerPage,
	}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return Page{}, err
		}
		page.Records = append(page.Records, r)
	}
	return page, rows.Err()
}

const selectColumns = `SELECT id, record_id, inspection_type, project_name, location, member_id,
	section_width, section_height, detected_count, design_total,
	compliance_status, compliance_message, rebar_config, predictions,
	hoop_path, spacings, image_url, inspector, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var barGroups, predictions, hoopPath, segments sql.NullString
	var verdict string
	err := row.Scan(
		&r.ID, &r.RecordID, &r.InspectionType, &r.ProjectName, &r.Location, &r.MemberID,
		&r.SectionWidth, &r.SectionHeight, &r.DetectedCount, &r.DesignTotal,
		&verdict, &r.Compliance.Message, &barGroups, &predictions,
		&hoopPath, &segments, &r.ImageURL, &r.Inspector, &r.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	r.Compliance.Verdict = compliance.Verdict(verdict)

	if err := unmarshalJSON(barGroups, &r.BarGroups); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSON(predictions, &r.Predictions); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSON(hoopPath, &r.HoopPath); err != nil {
		return Record{}, err
	}
	if err := unmarshalJSON(segments, &r.Segments); err != nil {
		return Record{}, err
	}
	return r, nil
}

func marshalJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal record field: %w", err)
	}
	if string(data) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalJSON(src sql.NullString, dst any) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(src.String), dst); err != nil {
		return fmt.Errorf("unmarshal record field: %w", err)
	}
	return nil
}
