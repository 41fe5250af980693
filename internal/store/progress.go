package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// ProgressStore persists cleaning_progress rows. A row's presence is
// the completion flag for its (week_id, area_id) key.
type ProgressStore struct {
	db *sql.DB
}

func NewProgressStore(db *sql.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

const progressCols = `week_id, area_id, completed_by, completed_at`

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.CompletionRecord, error) {
	var rec model.CompletionRecord
	var area string
	var by string
	err := scanner.Scan(&rec.WeekID, &area, &by, &rec.CompletedAt)
	if err != nil {
		return nil, err
	}
	rec.AreaID = model.AreaID(area)
	rec.CompletedBy = model.Person(by)
	return &rec, nil
}

// Complete upserts the completion row for (weekID, areaID). A repeat
// completion just refreshes completed_by and completed_at.
func (s *ProgressStore) Complete(weekID int, areaID model.AreaID, by model.Person, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO cleaning_progress (week_id, area_id, completed_by, completed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(week_id, area_id) DO UPDATE SET completed_by = excluded.completed_by, completed_at = excluded.completed_at`,
		weekID, string(areaID), string(by), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

// Uncomplete deletes the completion row for (weekID, areaID). Deleting
// a row that does not exist is a no-op.
func (s *ProgressStore) Uncomplete(weekID int, areaID model.AreaID) error {
	_, err := s.db.Exec(
		`DELETE FROM cleaning_progress WHERE week_id = ? AND area_id = ?`,
		weekID, string(areaID),
	)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

// Get returns the completion row for (weekID, areaID), or nil when the
// area is not completed.
func (s *ProgressStore) Get(weekID int, areaID model.AreaID) (*model.CompletionRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+progressCols+` FROM cleaning_progress WHERE week_id = ? AND area_id = ?`,
		weekID, string(areaID),
	)
	rec, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return rec, nil
}

// List returns every completion row.
func (s *ProgressStore) List() ([]model.CompletionRecord, error) {
	rows, err := s.db.Query(`SELECT ` + progressCols + ` FROM cleaning_progress ORDER BY week_id, area_id`)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var recs []model.CompletionRecord
	for rows.Next() {
		rec, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// LoadAll folds every completion row into the nested week→area map.
func (s *ProgressStore) LoadAll() (model.ProgressMap, error) {
	recs, err := s.List()
	if err != nil {
		return nil, err
	}
	progress := make(model.ProgressMap)
	for _, rec := range recs {
		progress.Set(rec.WeekID, rec.AreaID, true)
	}
	return progress, nil
}
