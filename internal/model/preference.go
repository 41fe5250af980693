package model

import "time"

// Theme selects the display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a supported theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Preferences is one flatmate's stored preference row. One row per
// person, created on first save and upserted afterwards.
type Preferences struct {
	UserName    Person            `json:"user_name"`
	DisplayName string            `json:"display_name,omitempty"`
	AvatarEmoji string            `json:"avatar_emoji,omitempty"`
	Colors      map[Person]string `json:"color_preference"`
	Theme       Theme             `json:"theme_preference"`
	Language    Language          `json:"language_preference"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Profile is the public slice of a preference row shown on cards for
// every flatmate, not just the active one.
type Profile struct {
	DisplayName string `json:"display_name"`
	AvatarEmoji string `json:"avatar_emoji"`
}

// DefaultColors returns the built-in colour-category assignment used
// until a flatmate picks their own.
func DefaultColors() map[Person]string {
	return map[Person]string{
		PersonMattia:  "blue",
		PersonMartina: "rose",
		PersonShapa:   "emerald",
		PersonMariana: "violet",
	}
}

// DefaultPreferences returns the preferences applied before any remote
// row exists for the given flatmate.
func DefaultPreferences(user Person) Preferences {
	return Preferences{
		UserName: user,
		Colors:   DefaultColors(),
		Theme:    ThemeLight,
		Language: LangItalian,
	}
}
