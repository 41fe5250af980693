package model

import "time"

// CompletionRecord marks one area done for one week. The existence of
// the row is the completion flag; un-completing deletes the row.
type CompletionRecord struct {
	WeekID      int       `json:"week_id"`
	AreaID      AreaID    `json:"area_id"`
	CompletedBy Person    `json:"completed_by"`
	CompletedAt time.Time `json:"completed_at"`
}

// ProgressMap is the in-memory completion state, keyed by week id then
// area id. Absent entries mean "not completed".
type ProgressMap map[int]map[AreaID]bool

// Completed reports whether the given (week, area) is marked done.
func (p ProgressMap) Completed(weekID int, areaID AreaID) bool {
	return p[weekID][areaID]
}

// Set marks or unmarks a (week, area). Unmarking removes the entry so
// an empty week folds back to absence.
func (p ProgressMap) Set(weekID int, areaID AreaID, done bool) {
	if done {
		if p[weekID] == nil {
			p[weekID] = make(map[AreaID]bool)
		}
		p[weekID][areaID] = true
		return
	}
	delete(p[weekID], areaID)
	if len(p[weekID]) == 0 {
		delete(p, weekID)
	}
}

// Clone returns a deep copy, used to snapshot state before an
// optimistic update.
func (p ProgressMap) Clone() ProgressMap {
	out := make(ProgressMap, len(p))
	for wk, areas := range p {
		m := make(map[AreaID]bool, len(areas))
		for a, v := range areas {
			m[a] = v
		}
		out[wk] = m
	}
	return out
}

// Equal reports element-wise equality with other.
func (p ProgressMap) Equal(other ProgressMap) bool {
	if len(p) != len(other) {
		return false
	}
	for wk, areas := range p {
		o, ok := other[wk]
		if !ok || len(areas) != len(o) {
			return false
		}
		for a, v := range areas {
			if o[a] != v {
				return false
			}
		}
	}
	return true
}
