package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

func tempCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return c
}

func TestGetMissingKey(t *testing.T) {
	c := tempCache(t)

	var s string
	if c.Get(KeyTheme, &s) {
		t.Error("expected miss for unset key")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c := tempCache(t)

	if err := c.Set(KeyTheme, "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var theme string
	if !c.Get(KeyTheme, &theme) {
		t.Fatal("expected hit")
	}
	if theme != "dark" {
		t.Errorf("theme = %q, want dark", theme)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	progress := model.ProgressMap{3: {model.AreaBagno1: true}}
	if err := c.Set(KeyProgress, progress); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set(KeyCurrentUser, model.PersonShapa); err != nil {
		t.Fatalf("set user: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	var gotProgress model.ProgressMap
	if !reopened.Get(KeyProgress, &gotProgress) {
		t.Fatal("expected progress to survive reopen")
	}
	if !gotProgress.Completed(3, model.AreaBagno1) {
		t.Error("(3, bagno1) should be completed after reopen")
	}

	var user model.Person
	if !reopened.Get(KeyCurrentUser, &user) || user != model.PersonShapa {
		t.Errorf("user = %q, want Shapa", user)
	}
}

func TestDelete(t *testing.T) {
	c := tempCache(t)

	c.Set(KeyCurrentUser, model.PersonMattia)
	if err := c.Delete(KeyCurrentUser); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var user model.Person
	if c.Get(KeyCurrentUser, &user) {
		t.Error("expected miss after delete")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("not json{"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("open corrupt cache: %v", err)
	}

	var s string
	if c.Get(KeyTheme, &s) {
		t.Error("corrupt cache should start empty")
	}
}

func TestOpenMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "cache.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// First write creates the directory
	if err := c.Set(KeyTheme, "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
}
