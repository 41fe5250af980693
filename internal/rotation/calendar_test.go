package rotation

import (
	"testing"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

func TestGenerateDeterminism(t *testing.T) {
	a := Generate(Epoch, DefaultPatterns, HorizonWeeks)
	b := Generate(Epoch, DefaultPatterns, HorizonWeeks)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].StartDate.Equal(b[i].StartDate) || !a[i].EndDate.Equal(b[i].EndDate) {
			t.Errorf("week %d dates differ", a[i].ID)
		}
		for _, area := range model.AreaIDs {
			if a[i].Assignees[area] != b[i].Assignees[area] {
				t.Errorf("week %d area %s: %s vs %s", a[i].ID, area, a[i].Assignees[area], b[i].Assignees[area])
			}
		}
	}
}

func TestGenerateHorizon(t *testing.T) {
	weeks := Weeks()
	if len(weeks) != HorizonWeeks {
		t.Fatalf("expected %d weeks, got %d", HorizonWeeks, len(weeks))
	}
	if weeks[0].ID != 1 {
		t.Errorf("first week id = %d, want 1", weeks[0].ID)
	}
	if weeks[len(weeks)-1].ID != HorizonWeeks {
		t.Errorf("last week id = %d, want %d", weeks[len(weeks)-1].ID, HorizonWeeks)
	}
}

func TestCyclicAssignment(t *testing.T) {
	weeks := Generate(Epoch, DefaultPatterns, HorizonWeeks)

	for _, area := range model.AreaIDs {
		cycle := DefaultPatterns[area]
		for i, w := range weeks {
			want := cycle[i%len(cycle)]
			if got := w.Assignee(area); got != want {
				t.Fatalf("week %d area %s: assignee = %s, want %s", w.ID, area, got, want)
			}
		}
	}
}

// Week id n uses pattern index n-1: the cucina cycle
// [Shapa, Mattia, Martina] puts Shapa on weeks 1 and 4.
func TestCucinaConcreteWeeks(t *testing.T) {
	weeks := Weeks()

	cases := []struct {
		weekID int
		want   model.Person
	}{
		{1, model.PersonShapa},
		{2, model.PersonMattia},
		{3, model.PersonMartina},
		{4, model.PersonShapa},
	}
	for _, tc := range cases {
		got := weeks[tc.weekID-1].Assignee(model.AreaCucina)
		if got != tc.want {
			t.Errorf("week %d cucina = %s, want %s", tc.weekID, got, tc.want)
		}
	}
}

func TestWeekDateArithmetic(t *testing.T) {
	weeks := Generate(Epoch, DefaultPatterns, 10)

	for i, w := range weeks {
		wantEnd := w.StartDate.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		if !w.EndDate.Equal(wantEnd) {
			t.Errorf("week %d end = %v, want %v", w.ID, w.EndDate, wantEnd)
		}
		if i > 0 {
			wantStart := weeks[i-1].StartDate.AddDate(0, 0, 7)
			if !w.StartDate.Equal(wantStart) {
				t.Errorf("week %d start = %v, want %v", w.ID, w.StartDate, wantStart)
			}
		}
	}
}

func TestEpochIsSunday(t *testing.T) {
	if Epoch.Weekday() != time.Sunday {
		t.Fatalf("epoch weekday = %s, want Sunday", Epoch.Weekday())
	}
	first := Weeks()[0]
	if !first.StartDate.Equal(Epoch) {
		t.Errorf("week 1 start = %v, want %v", first.StartDate, Epoch)
	}
}

func TestIsCurrentWeek(t *testing.T) {
	w := Weeks()[0]

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"start boundary", w.StartDate, true},
		{"mid week", w.StartDate.AddDate(0, 0, 3), true},
		{"end boundary", w.EndDate, true},
		{"just before start", w.StartDate.Add(-time.Second), false},
		{"just after end", w.EndDate.Add(time.Second), false},
	}
	for _, tc := range cases {
		if got := IsCurrentWeek(w.StartDate, w.EndDate, tc.now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCurrentWeek(t *testing.T) {
	// Wednesday of week 2
	now := Epoch.AddDate(0, 0, 10)
	w, ok := CurrentWeek(now)
	if !ok {
		t.Fatal("expected a current week")
	}
	if w.ID != 2 {
		t.Errorf("week id = %d, want 2", w.ID)
	}

	// Before the epoch there is no week
	if _, ok := CurrentWeek(Epoch.Add(-time.Hour)); ok {
		t.Error("expected no week before the epoch")
	}

	// Past the horizon there is no week
	past := Epoch.AddDate(0, 0, 7*HorizonWeeks)
	if _, ok := CurrentWeek(past); ok {
		t.Error("expected no week past the horizon")
	}
}

func TestFormatRange(t *testing.T) {
	w := Weeks()[0]

	if got := FormatRange(w.StartDate, w.EndDate, model.LangItalian); got != "9 feb - 15 feb 2025" {
		t.Errorf("it range = %q", got)
	}
	if got := FormatRange(w.StartDate, w.EndDate, model.LangEnglish); got != "Feb 9 - Feb 15 2025" {
		t.Errorf("en range = %q", got)
	}
}
