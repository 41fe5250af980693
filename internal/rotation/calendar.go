package rotation

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// Patterns maps each area to its cyclic assignee sequence. Week i of
// the calendar draws patterns[area][i % len(patterns[area])].
type Patterns map[model.AreaID][]model.Person

// DefaultPatterns is the house rotation in force since the epoch.
// Mariana is excluded from cucina and cestino; the bathrooms are split
// into fixed pairs.
var DefaultPatterns = Patterns{
	model.AreaCucina:             {model.PersonShapa, model.PersonMattia, model.PersonMartina},
	model.AreaCestino:            {model.PersonMattia, model.PersonMartina, model.PersonShapa},
	model.AreaBagno1:             {model.PersonMattia, model.PersonMartina},
	model.AreaBagno2:             {model.PersonShapa, model.PersonMariana},
	model.AreaIngressoLavanderia: {model.PersonMartina, model.PersonMariana, model.PersonShapa, model.PersonMattia},
}

// Epoch is the start of week 1: Sunday 9 February 2025.
var Epoch = time.Date(2025, time.February, 9, 0, 0, 0, 0, time.Local)

// HorizonWeeks is the fixed number of weeks generated from the epoch.
const HorizonWeeks = 105

// Week is one generated rotation week. Weeks are value records; they
// are never persisted and are regenerated identically from the epoch
// and patterns on every client.
type Week struct {
	ID        int       `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Assignees map[model.AreaID]model.Person `json:"assignees"`
}

// Assignee returns the base rotation assignee for the given area.
func (w Week) Assignee(area model.AreaID) model.Person {
	return w.Assignees[area]
}

// Generate builds the ordered week sequence. Week ids are 1-based;
// the pattern index for week id n is n-1. Each week runs from midnight
// on its start day through 23:59:59 six days later, so a wall-clock
// "now" always falls inside exactly one week.
//
// Generate is pure: identical inputs yield identical output.
func Generate(epoch time.Time, patterns Patterns, horizonWeeks int) []Week {
	weeks := make([]Week, 0, horizonWeeks)
	for i := 0; i < horizonWeeks; i++ {
		start := epoch.AddDate(0, 0, 7*i)
		end := start.AddDate(0, 0, 6)
		end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())

		assignees := make(map[model.AreaID]model.Person, len(patterns))
		for area, cycle := range patterns {
			assignees[area] = cycle[i%len(cycle)]
		}

		weeks = append(weeks, Week{
			ID:        i + 1,
			StartDate: start,
			EndDate:   end,
			Assignees: assignees,
		})
	}
	return weeks
}

var (
	weeksOnce sync.Once
	weeks     []Week
)

// Weeks returns the memoized production calendar (default epoch,
// default patterns, full horizon). The slice is shared; callers must
// treat it as read-only and overlay swaps with ApplyActiveSwaps.
func Weeks() []Week {
	weeksOnce.Do(func() {
		weeks = Generate(Epoch, DefaultPatterns, HorizonWeeks)
	})
	return weeks
}

// IsCurrentWeek reports whether now falls inside the inclusive
// [start, end] range.
func IsCurrentWeek(start, end, now time.Time) bool {
	return !now.Before(start) && !now.After(end)
}

// CurrentWeek finds the week containing now in the production
// calendar. ok is false when now is outside the generated horizon.
func CurrentWeek(now time.Time) (Week, bool) {
	for _, w := range Weeks() {
		if IsCurrentWeek(w.StartDate, w.EndDate, now) {
			return w, true
		}
	}
	return Week{}, false
}

var monthsIt = [...]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"}

// FormatRange renders a week's date span in the short form used on
// cards, e.g. "9 feb - 15 feb 2025" or "Feb 9 - Feb 15 2025".
func FormatRange(start, end time.Time, lang model.Language) string {
	if lang == model.LangEnglish {
		return fmt.Sprintf("%s %d - %s %d %d",
			start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day(), end.Year())
	}
	return fmt.Sprintf("%d %s - %d %s %d",
		start.Day(), monthsIt[start.Month()-1], end.Day(), monthsIt[end.Month()-1], end.Year())
}
