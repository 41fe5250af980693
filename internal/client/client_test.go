package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/tomthias/cleanAlbere9/internal/database"
	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/server"
)

// setupClient runs the real backend on a test listener so the client
// is exercised against the actual routes and status codes.
func setupClient(t *testing.T) *Client {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := server.New(db, nil, slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return New(ts.URL)
}

func TestProgressRoundTrip(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	recs, err := c.LoadProgress(ctx)
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty progress, got %d records", len(recs))
	}

	if err := c.SetProgress(ctx, 3, model.AreaBagno1, true, model.PersonMattia); err != nil {
		t.Fatalf("set progress: %v", err)
	}
	recs, err = c.LoadProgress(ctx)
	if err != nil {
		t.Fatalf("reload progress: %v", err)
	}
	if len(recs) != 1 || recs[0].WeekID != 3 || recs[0].AreaID != model.AreaBagno1 {
		t.Fatalf("unexpected records: %+v", recs)
	}

	if err := c.SetProgress(ctx, 3, model.AreaBagno1, false, model.PersonMattia); err != nil {
		t.Fatalf("unset progress: %v", err)
	}
	recs, _ = c.LoadProgress(ctx)
	if len(recs) != 0 {
		t.Fatalf("expected record removed, got %+v", recs)
	}
}

func TestPreferencesAbsentIsNil(t *testing.T) {
	c := setupClient(t)

	prefs, err := c.LoadPreferences(context.Background(), model.PersonShapa)
	if err != nil {
		t.Fatalf("load preferences: %v", err)
	}
	if prefs != nil {
		t.Fatalf("expected nil for never-saved flatmate, got %+v", prefs)
	}
}

func TestPreferencesSaveLoad(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	in := model.DefaultPreferences(model.PersonMartina)
	in.Theme = model.ThemeDark
	in.DisplayName = "Marti"
	if err := c.SavePreferences(ctx, in); err != nil {
		t.Fatalf("save preferences: %v", err)
	}

	out, err := c.LoadPreferences(ctx, model.PersonMartina)
	if err != nil {
		t.Fatalf("load preferences: %v", err)
	}
	if out == nil || out.Theme != model.ThemeDark || out.DisplayName != "Marti" {
		t.Fatalf("unexpected preferences: %+v", out)
	}

	profiles, err := c.LoadProfiles(ctx)
	if err != nil {
		t.Fatalf("load profiles: %v", err)
	}
	if profiles[model.PersonMartina].DisplayName != "Marti" {
		t.Errorf("expected profile override, got %+v", profiles[model.PersonMartina])
	}
	if profiles[model.PersonMattia].DisplayName != "Mattia" {
		t.Errorf("expected default profile, got %+v", profiles[model.PersonMattia])
	}
}

func TestSwapLifecycle(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	swap, err := c.CreateSwap(ctx, 5, model.AreaCucina, model.PersonShapa)
	if err != nil {
		t.Fatalf("create swap: %v", err)
	}
	if swap.Status != model.SwapPending {
		t.Fatalf("expected pending, got %q", swap.Status)
	}

	// A second active swap for the same cell is a conflict.
	if _, err := c.CreateSwap(ctx, 5, model.AreaCucina, model.PersonMattia); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The requester accepting their own swap is a conflict.
	if _, err := c.AcceptSwap(ctx, swap.ID, model.PersonShapa); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for self-accept, got %v", err)
	}

	accepted, err := c.AcceptSwap(ctx, swap.ID, model.PersonMariana)
	if err != nil {
		t.Fatalf("accept swap: %v", err)
	}
	if accepted.Status != model.SwapAccepted || accepted.SwappedWith == nil || *accepted.SwappedWith != model.PersonMariana {
		t.Fatalf("unexpected accepted swap: %+v", accepted)
	}

	// Terminal swaps cannot be cancelled.
	if err := c.CancelSwap(ctx, swap.ID, model.PersonShapa); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict cancelling accepted swap, got %v", err)
	}

	swaps, err := c.LoadActiveSwaps(ctx)
	if err != nil {
		t.Fatalf("list swaps: %v", err)
	}
	if len(swaps) != 1 || swaps[0].Status != model.SwapAccepted {
		t.Fatalf("unexpected active swaps: %+v", swaps)
	}
}

func TestStatusSentinels(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	// Missing swap id maps to ErrNotFound.
	if err := c.CancelSwap(ctx, "no-such-swap", model.PersonMattia); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Wrong PIN maps to ErrUnauthorized, which VerifyPIN absorbs.
	if err := c.SetPIN(ctx, model.PersonShapa, "1234"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	if err := c.do(ctx, "POST", "/api/preferences/Shapa/pin/verify", map[string]string{"pin": "9999"}, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPINVerify(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()

	// No PIN set: anyone may select this flatmate.
	ok, err := c.VerifyPIN(ctx, model.PersonMariana, "")
	if err != nil {
		t.Fatalf("verify without pin: %v", err)
	}
	if !ok {
		t.Error("expected verification to pass with no PIN set")
	}

	if err := c.SetPIN(ctx, model.PersonMariana, "4321"); err != nil {
		t.Fatalf("set pin: %v", err)
	}

	ok, err = c.VerifyPIN(ctx, model.PersonMariana, "0000")
	if err != nil {
		t.Fatalf("verify wrong pin: %v", err)
	}
	if ok {
		t.Error("expected wrong PIN rejected")
	}

	ok, err = c.VerifyPIN(ctx, model.PersonMariana, "4321")
	if err != nil {
		t.Fatalf("verify right pin: %v", err)
	}
	if !ok {
		t.Error("expected right PIN accepted")
	}

	if err := c.ClearPIN(ctx, model.PersonMariana); err != nil {
		t.Fatalf("clear pin: %v", err)
	}
	ok, _ = c.VerifyPIN(ctx, model.PersonMariana, "")
	if !ok {
		t.Error("expected verification to pass after PIN cleared")
	}
}
