package rotation

import "github.com/tomthias/cleanAlbere9/internal/model"

// ApplyActiveSwaps returns a copy of weeks with every accepted swap's
// replacement person substituted for the base assignee. The input is
// never mutated: the base calendar stays available for eligibility
// checks (the original person of a swap is always the rotation value,
// not an earlier overlay result).
//
// Only accepted swaps change assignments; pending ones are display
// metadata until someone accepts. Swaps are expected in the
// newest-first order the store returns, and the first accepted match
// for a (week, area) wins, so a duplicate accepted row can never make
// two clients disagree.
func ApplyActiveSwaps(weeks []Week, swaps []model.SwapRequest) []Week {
	type key struct {
		weekID int
		areaID model.AreaID
	}

	replacements := make(map[key]model.Person)
	for _, s := range swaps {
		if s.Status != model.SwapAccepted || s.SwappedWith == nil {
			continue
		}
		k := key{s.WeekID, s.AreaID}
		if _, ok := replacements[k]; !ok {
			replacements[k] = *s.SwappedWith
		}
	}

	out := make([]Week, len(weeks))
	for i, w := range weeks {
		assignees := make(map[model.AreaID]model.Person, len(w.Assignees))
		for area, person := range w.Assignees {
			if repl, ok := replacements[key{w.ID, area}]; ok {
				assignees[area] = repl
			} else {
				assignees[area] = person
			}
		}
		w.Assignees = assignees
		out[i] = w
	}
	return out
}

// PendingSwap returns the newest pending request for (weekID, areaID),
// or nil. Used to badge a card while a swap is awaiting acceptance.
func PendingSwap(swaps []model.SwapRequest, weekID int, areaID model.AreaID) *model.SwapRequest {
	for i := range swaps {
		s := &swaps[i]
		if s.Status == model.SwapPending && s.WeekID == weekID && s.AreaID == areaID {
			return s
		}
	}
	return nil
}
