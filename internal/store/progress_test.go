package store

import (
	"testing"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/database"
	"github.com/tomthias/cleanAlbere9/internal/model"
)

func setupProgressTestDB(t *testing.T) *ProgressStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewProgressStore(db)
}

func TestCompleteCreatesSingleRecord(t *testing.T) {
	ps := setupProgressTestDB(t)

	if err := ps.Complete(3, model.AreaBagno1, model.PersonMartina, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	recs, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].WeekID != 3 || recs[0].AreaID != model.AreaBagno1 {
		t.Errorf("record keyed (%d, %s), want (3, bagno1)", recs[0].WeekID, recs[0].AreaID)
	}
	if recs[0].CompletedBy != model.PersonMartina {
		t.Errorf("completed_by = %s, want Martina", recs[0].CompletedBy)
	}
}

func TestUncompleteRemovesRecord(t *testing.T) {
	ps := setupProgressTestDB(t)

	if err := ps.Complete(3, model.AreaBagno1, model.PersonMartina, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := ps.Uncomplete(3, model.AreaBagno1); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}

	rec, err := ps.Get(3, model.AreaBagno1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Error("expected record to be gone, not flagged false")
	}

	recs, _ := ps.List()
	if len(recs) != 0 {
		t.Errorf("expected empty table, got %d rows", len(recs))
	}
}

func TestCompleteUpsertsSameKey(t *testing.T) {
	ps := setupProgressTestDB(t)

	ps.Complete(5, model.AreaCucina, model.PersonShapa, time.Now().Add(-time.Hour))
	if err := ps.Complete(5, model.AreaCucina, model.PersonMariana, time.Now()); err != nil {
		t.Fatalf("re-complete: %v", err)
	}

	recs, _ := ps.List()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record after repeat completion, got %d", len(recs))
	}
	if recs[0].CompletedBy != model.PersonMariana {
		t.Errorf("completed_by = %s, want the later Mariana", recs[0].CompletedBy)
	}
}

func TestUncompleteMissingIsNoop(t *testing.T) {
	ps := setupProgressTestDB(t)

	if err := ps.Uncomplete(42, model.AreaCestino); err != nil {
		t.Fatalf("uncomplete missing row: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	ps := setupProgressTestDB(t)

	rec, err := ps.Get(99, model.AreaBagno2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Error("expected nil for missing completion")
	}
}

func TestLoadAllFoldsByWeekThenArea(t *testing.T) {
	ps := setupProgressTestDB(t)

	ps.Complete(1, model.AreaCucina, model.PersonShapa, time.Now())
	ps.Complete(1, model.AreaCestino, model.PersonMattia, time.Now())
	ps.Complete(2, model.AreaBagno1, model.PersonMartina, time.Now())

	progress, err := ps.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}

	if !progress.Completed(1, model.AreaCucina) {
		t.Error("(1, cucina) should be completed")
	}
	if !progress.Completed(1, model.AreaCestino) {
		t.Error("(1, cestino) should be completed")
	}
	if !progress.Completed(2, model.AreaBagno1) {
		t.Error("(2, bagno1) should be completed")
	}
	if progress.Completed(1, model.AreaBagno1) {
		t.Error("(1, bagno1) should be absent")
	}
	if progress.Completed(3, model.AreaCucina) {
		t.Error("week 3 should be absent")
	}
}

func TestLoadAllEmptyTable(t *testing.T) {
	ps := setupProgressTestDB(t)

	progress, err := ps.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if progress == nil {
		t.Fatal("empty table should yield an empty map, not nil")
	}
	if len(progress) != 0 {
		t.Errorf("expected empty map, got %d weeks", len(progress))
	}
}
