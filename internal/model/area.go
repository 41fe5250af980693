package model

import "fmt"

// AreaID identifies one of the five cleaning zones.
type AreaID string

const (
	AreaCucina             AreaID = "cucina"
	AreaCestino            AreaID = "cestino"
	AreaBagno1             AreaID = "bagno1"
	AreaBagno2             AreaID = "bagno2"
	AreaIngressoLavanderia AreaID = "ingressoLavanderia"
)

// AreaIDs lists every zone in display order.
var AreaIDs = []AreaID{AreaCucina, AreaCestino, AreaBagno1, AreaBagno2, AreaIngressoLavanderia}

// Valid reports whether id is one of the known zones.
func (id AreaID) Valid() bool {
	switch id {
	case AreaCucina, AreaCestino, AreaBagno1, AreaBagno2, AreaIngressoLavanderia:
		return true
	}
	return false
}

// ParseAreaID converts a wire/config string into an AreaID.
func ParseAreaID(s string) (AreaID, error) {
	id := AreaID(s)
	if !id.Valid() {
		return "", fmt.Errorf("unknown area %q", s)
	}
	return id, nil
}

// Language selects between the two supported display languages.
type Language string

const (
	LangItalian Language = "it"
	LangEnglish Language = "en"
)

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LangItalian || l == LangEnglish
}

// SubTasks holds the fixed checklist for an area in both languages.
type SubTasks struct {
	It []string
	En []string
}

// For returns the checklist for the given language, defaulting to Italian.
func (s SubTasks) For(lang Language) []string {
	if lang == LangEnglish {
		return s.En
	}
	return s.It
}

// Area is the static configuration for a cleaning zone.
type Area struct {
	ID       AreaID
	Label    string // Italian display label
	LabelEn  string
	IconName string
	Tasks    SubTasks
}

// Name returns the display label for the given language.
func (a Area) Name(lang Language) string {
	if lang == LangEnglish {
		return a.LabelEn
	}
	return a.Label
}

// Areas is the full zone configuration in display order.
var Areas = []Area{
	{
		ID: AreaCucina, Label: "Cucina", LabelEn: "Kitchen", IconName: "Utensils",
		Tasks: SubTasks{
			It: []string{"Piani di lavoro", "Pulire lavandino", "Fai la lavastoviglie / togli le posate", "Tavolo", "Scopa e straccio"},
			En: []string{"Countertops", "Clean sink", "Dishwasher / Cutlery", "Table", "Mop and broom"},
		},
	},
	{
		ID: AreaCestino, Label: "Cestino", LabelEn: "Trash Bin", IconName: "Trash2",
		Tasks: SubTasks{
			It: []string{"Butta Umido", "Butta Plastica/Imballaggi", "Butta Carta", "Butta Indifferenziato", "Butta Vetro"},
			En: []string{"Organic waste", "Plastic/Packaging", "Paper", "General waste", "Glass"},
		},
	},
	{
		ID: AreaBagno1, Label: "Bagno 1", LabelEn: "Bathroom 1", IconName: "Bath",
		Tasks: SubTasks{
			It: []string{"Sanitari", "Swiffer", "Straccio"},
			En: []string{"Sanitaryware", "Swiffer", "Mop"},
		},
	},
	{
		ID: AreaBagno2, Label: "Bagno 2", LabelEn: "Bathroom 2", IconName: "ShowerHead",
		Tasks: SubTasks{
			It: []string{"Sanitari", "Swiffer", "Straccio"},
			En: []string{"Sanitaryware", "Swiffer", "Mop"},
		},
	},
	{
		ID: AreaIngressoLavanderia, Label: "Ingresso + Lavanderia", LabelEn: "Hall + Laundry", IconName: "WashingMachine",
		Tasks: SubTasks{
			It: []string{"Scopa", "Swiffer", "Straccio"},
			En: []string{"Broom", "Swiffer", "Mop"},
		},
	},
}

// AreaByID resolves the static configuration for a zone.
func AreaByID(id AreaID) (Area, bool) {
	for _, a := range Areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}
