package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// PreferenceStore persists user_preferences rows, one per flatmate.
type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

const preferenceCols = `user_name, display_name, avatar_emoji, color_preference, theme_preference, language_preference, updated_at`

func scanPreferences(scanner interface{ Scan(...any) error }) (*model.Preferences, error) {
	var p model.Preferences
	var user, theme, lang, colorsJSON string
	err := scanner.Scan(&user, &p.DisplayName, &p.AvatarEmoji, &colorsJSON, &theme, &lang, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.UserName = model.Person(user)
	p.Theme = model.Theme(theme)
	p.Language = model.Language(lang)

	p.Colors = make(map[model.Person]string)
	if err := json.Unmarshal([]byte(colorsJSON), &p.Colors); err != nil {
		return nil, fmt.Errorf("decode color preference: %w", err)
	}
	return &p, nil
}

// Upsert creates or replaces the row for p.UserName and stamps
// updated_at.
func (s *PreferenceStore) Upsert(p model.Preferences) (*model.Preferences, error) {
	if !p.UserName.Valid() {
		return nil, fmt.Errorf("unknown person %q", p.UserName)
	}

	colorsJSON, err := json.Marshal(p.Colors)
	if err != nil {
		return nil, fmt.Errorf("encode color preference: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO user_preferences (user_name, display_name, avatar_emoji, color_preference, theme_preference, language_preference, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_name) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_emoji = excluded.avatar_emoji,
			color_preference = excluded.color_preference,
			theme_preference = excluded.theme_preference,
			language_preference = excluded.language_preference,
			updated_at = excluded.updated_at`,
		string(p.UserName), p.DisplayName, p.AvatarEmoji, string(colorsJSON),
		string(p.Theme), string(p.Language), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}
	return s.GetByUser(p.UserName)
}

// GetByUser returns the row for user, or nil when the flatmate has
// never saved preferences. Absence is not an error.
func (s *PreferenceStore) GetByUser(user model.Person) (*model.Preferences, error) {
	row := s.db.QueryRow(
		`SELECT `+preferenceCols+` FROM user_preferences WHERE user_name = ?`,
		string(user),
	)
	p, err := scanPreferences(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// ListProfiles returns the display name and avatar for every flatmate,
// falling back to the bare person name where no row exists.
func (s *PreferenceStore) ListProfiles() (map[model.Person]model.Profile, error) {
	profiles := make(map[model.Person]model.Profile, len(model.People))
	for _, person := range model.People {
		profiles[person] = model.Profile{DisplayName: string(person), AvatarEmoji: "👤"}
	}

	rows, err := s.db.Query(`SELECT user_name, display_name, avatar_emoji FROM user_preferences`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user, name, avatar string
		if err := rows.Scan(&user, &name, &avatar); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		person := model.Person(user)
		if !person.Valid() {
			continue
		}
		prof := profiles[person]
		if name != "" {
			prof.DisplayName = name
		}
		if avatar != "" {
			prof.AvatarEmoji = avatar
		}
		profiles[person] = prof
	}
	return profiles, rows.Err()
}

// SetPIN stores a bcrypt hash guarding user selection for the given
// flatmate. The row is created with defaults if it does not exist yet.
func (s *PreferenceStore) SetPIN(user model.Person, hashedPIN string) error {
	if _, err := s.ensureRow(user); err != nil {
		return err
	}
	_, err := s.db.Exec(`UPDATE user_preferences SET pin = ? WHERE user_name = ?`, hashedPIN, string(user))
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// ClearPIN removes the PIN gate for the given flatmate.
func (s *PreferenceStore) ClearPIN(user model.Person) error {
	_, err := s.db.Exec(`UPDATE user_preferences SET pin = NULL WHERE user_name = ?`, string(user))
	if err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	return nil
}

// GetPINHash returns the stored bcrypt hash, or "" when no PIN is set.
func (s *PreferenceStore) GetPINHash(user model.Person) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM user_preferences WHERE user_name = ?`, string(user)).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pin: %w", err)
	}
	if !pin.Valid {
		return "", nil
	}
	return pin.String, nil
}

func (s *PreferenceStore) ensureRow(user model.Person) (*model.Preferences, error) {
	existing, err := s.GetByUser(user)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.Upsert(model.DefaultPreferences(user))
}
