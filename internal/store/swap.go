package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// Swap lifecycle violations surfaced to handlers. Each maps to a 409.
var (
	ErrSwapNotFound     = errors.New("swap request not found")
	ErrActiveSwapExists = errors.New("an active swap request already exists for this week and area")
	ErrSwapNotPending   = errors.New("swap request is no longer pending")
	ErrSelfAccept       = errors.New("a swap request cannot be accepted by its requester")
	ErrNotRequester     = errors.New("only the original requester may cancel a swap request")
)

// SwapStore persists area_swaps rows and enforces the lifecycle:
// pending -> accepted | cancelled, both terminal, and at most one
// active request per (week_id, area_id).
type SwapStore struct {
	db *sql.DB
}

func NewSwapStore(db *sql.DB) *SwapStore {
	return &SwapStore{db: db}
}

const swapCols = `id, week_id, area_id, original_person, swapped_with, status, created_at`

func scanSwap(scanner interface{ Scan(...any) error }) (*model.SwapRequest, error) {
	var s model.SwapRequest
	var area, original, status string
	var swappedWith sql.NullString

	err := scanner.Scan(&s.ID, &s.WeekID, &area, &original, &swappedWith, &status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.AreaID = model.AreaID(area)
	s.OriginalPerson = model.Person(original)
	s.Status = model.SwapStatus(status)
	if swappedWith.Valid {
		p := model.Person(swappedWith.String)
		s.SwappedWith = &p
	}
	return &s, nil
}

// Create inserts a pending request for (weekID, areaID) by requester.
// It fails with ErrActiveSwapExists when a pending or accepted request
// already covers the key, so the overlay never has to tie-break.
func (s *SwapStore) Create(weekID int, areaID model.AreaID, requester model.Person) (*model.SwapRequest, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var active int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM area_swaps WHERE week_id = ? AND area_id = ? AND status IN ('pending', 'accepted')`,
		weekID, string(areaID),
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("count active swaps: %w", err)
	}
	if active > 0 {
		return nil, ErrActiveSwapExists
	}

	id := uuid.NewString()
	_, err = tx.Exec(
		`INSERT INTO area_swaps (id, week_id, area_id, original_person, status, created_at) VALUES (?, ?, ?, ?, 'pending', ?)`,
		id, weekID, string(areaID), string(requester), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert swap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetByID(id)
}

// GetByID returns the request with the given id, or nil if unknown.
func (s *SwapStore) GetByID(id string) (*model.SwapRequest, error) {
	row := s.db.QueryRow(`SELECT `+swapCols+` FROM area_swaps WHERE id = ?`, id)
	swap, err := scanSwap(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get swap: %w", err)
	}
	return swap, nil
}

// Accept moves a pending request to accepted and records the acceptor.
// Terminal requests are never reopened; the requester cannot accept
// their own request.
func (s *SwapStore) Accept(id string, acceptor model.Person) (*model.SwapRequest, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.Status != model.SwapPending {
		return nil, ErrSwapNotPending
	}
	if existing.OriginalPerson == acceptor {
		return nil, ErrSelfAccept
	}

	_, err = s.db.Exec(
		`UPDATE area_swaps SET swapped_with = ?, status = 'accepted' WHERE id = ? AND status = 'pending'`,
		string(acceptor), id,
	)
	if err != nil {
		return nil, fmt.Errorf("accept swap: %w", err)
	}
	return s.GetByID(id)
}

// Cancel moves a pending request to cancelled. Only the original
// requester may cancel, and terminal requests stay as they are.
func (s *SwapStore) Cancel(id string, requester model.Person) error {
	existing, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSwapNotFound
	}
	if existing.Status != model.SwapPending {
		return ErrSwapNotPending
	}
	if existing.OriginalPerson != requester {
		return ErrNotRequester
	}

	_, err = s.db.Exec(`UPDATE area_swaps SET status = 'cancelled' WHERE id = ? AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("cancel swap: %w", err)
	}
	return nil
}

// ListActive returns all pending and accepted requests, newest first.
// Cancelled requests are retained in the table but never surface here.
func (s *SwapStore) ListActive() ([]model.SwapRequest, error) {
	rows, err := s.db.Query(
		`SELECT ` + swapCols + ` FROM area_swaps WHERE status IN ('pending', 'accepted') ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active swaps: %w", err)
	}
	defer rows.Close()

	var swaps []model.SwapRequest
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}
		swaps = append(swaps, *swap)
	}
	return swaps, rows.Err()
}
