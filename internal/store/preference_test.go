package store

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomthias/cleanAlbere9/internal/database"
	"github.com/tomthias/cleanAlbere9/internal/model"
)

func setupPreferenceTestDB(t *testing.T) *PreferenceStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPreferenceStore(db)
}

func TestPreferencesUpsertRoundTrip(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	in := model.Preferences{
		UserName:    model.PersonMattia,
		DisplayName: "Matti",
		AvatarEmoji: "🎸",
		Colors: map[model.Person]string{
			model.PersonMattia:  "indigo",
			model.PersonMartina: "rose",
			model.PersonShapa:   "emerald",
			model.PersonMariana: "violet",
		},
		Theme:    model.ThemeDark,
		Language: model.LangEnglish,
	}

	saved, err := ps.Upsert(in)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.DisplayName != "Matti" {
		t.Errorf("display_name = %q, want Matti", saved.DisplayName)
	}
	if saved.Theme != model.ThemeDark {
		t.Errorf("theme = %s, want dark", saved.Theme)
	}
	if saved.Language != model.LangEnglish {
		t.Errorf("language = %s, want en", saved.Language)
	}
	if saved.Colors[model.PersonMattia] != "indigo" {
		t.Errorf("colors[Mattia] = %q, want indigo", saved.Colors[model.PersonMattia])
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("updated_at should be stamped")
	}
}

func TestPreferencesUpsertReplaces(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	ps.Upsert(model.DefaultPreferences(model.PersonShapa))

	updated := model.DefaultPreferences(model.PersonShapa)
	updated.Theme = model.ThemeDark
	updated.Colors[model.PersonShapa] = "amber"
	if _, err := ps.Upsert(updated); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := ps.GetByUser(model.PersonShapa)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Theme != model.ThemeDark {
		t.Errorf("theme = %s, want dark", got.Theme)
	}
	if got.Colors[model.PersonShapa] != "amber" {
		t.Errorf("colors[Shapa] = %q, want amber", got.Colors[model.PersonShapa])
	}
}

func TestPreferencesGetNotFound(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	got, err := ps.GetByUser(model.PersonMariana)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil for a flatmate who never saved preferences")
	}
}

func TestPreferencesRejectsUnknownPerson(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	_, err := ps.Upsert(model.Preferences{UserName: "Nessuno"})
	if err == nil {
		t.Fatal("expected error for unknown person")
	}
}

func TestListProfilesDefaultsAndOverrides(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	prefs := model.DefaultPreferences(model.PersonMartina)
	prefs.DisplayName = "Marti"
	prefs.AvatarEmoji = "🌸"
	ps.Upsert(prefs)

	profiles, err := ps.ListProfiles()
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != len(model.People) {
		t.Fatalf("expected %d profiles, got %d", len(model.People), len(profiles))
	}
	if profiles[model.PersonMartina].DisplayName != "Marti" {
		t.Errorf("Martina display name = %q, want Marti", profiles[model.PersonMartina].DisplayName)
	}
	if profiles[model.PersonMartina].AvatarEmoji != "🌸" {
		t.Errorf("Martina avatar = %q, want 🌸", profiles[model.PersonMartina].AvatarEmoji)
	}
	// Flatmates without a row fall back to their name
	if profiles[model.PersonShapa].DisplayName != "Shapa" {
		t.Errorf("Shapa display name = %q, want Shapa", profiles[model.PersonShapa].DisplayName)
	}
}

func TestPINLifecycle(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	// Setting a PIN for a flatmate with no row creates one
	if err := ps.SetPIN(model.PersonMariana, string(hash)); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	stored, err := ps.GetPINHash(model.PersonMariana)
	if err != nil {
		t.Fatalf("get pin: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte("1234")) != nil {
		t.Error("stored hash does not match PIN")
	}

	if err := ps.ClearPIN(model.PersonMariana); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	stored, _ = ps.GetPINHash(model.PersonMariana)
	if stored != "" {
		t.Error("expected empty hash after clear")
	}
}

func TestGetPINHashNoRow(t *testing.T) {
	ps := setupPreferenceTestDB(t)

	hash, err := ps.GetPINHash(model.PersonMattia)
	if err != nil {
		t.Fatalf("get pin: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}
}
