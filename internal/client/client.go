package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/model"
)

// Sentinel errors for backend responses callers branch on; match with
// errors.Is.
var (
	// ErrConflict is returned when the backend rejects a mutation
	// because the lifecycle does not allow it (duplicate active swap,
	// terminal swap, self-accept).
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned for a 404 response.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned for a 401 response (wrong PIN).
	ErrUnauthorized = errors.New("unauthorized")
)

// Client talks to the flatmate backend over its JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL (e.g.
// "http://localhost:8484").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		json.NewDecoder(resp.Body).Decode(&ae)
		msg := ae.Error
		if msg == "" {
			msg = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusConflict:
			return fmt.Errorf("%s %s: %s: %w", method, path, msg, ErrConflict)
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %s: %w", method, path, msg, ErrNotFound)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s %s: %s: %w", method, path, msg, ErrUnauthorized)
		}
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// LoadProgress fetches every completion record.
func (c *Client) LoadProgress(ctx context.Context) ([]model.CompletionRecord, error) {
	var recs []model.CompletionRecord
	if err := c.do(ctx, http.MethodGet, "/api/progress", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SetProgress completes or un-completes one (week, area).
func (c *Client) SetProgress(ctx context.Context, weekID int, areaID model.AreaID, completed bool, by model.Person) error {
	body := map[string]any{
		"week_id":      weekID,
		"area_id":      string(areaID),
		"completed":    completed,
		"completed_by": string(by),
	}
	return c.do(ctx, http.MethodPut, "/api/progress", body, nil)
}

// LoadPreferences fetches one flatmate's preference row. A flatmate
// who never saved yields (nil, nil), distinguished from a transport
// failure.
func (c *Client) LoadPreferences(ctx context.Context, user model.Person) (*model.Preferences, error) {
	var prefs model.Preferences
	err := c.do(ctx, http.MethodGet, "/api/preferences/"+string(user), nil, &prefs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

// SavePreferences upserts one flatmate's preference row.
func (c *Client) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	body := map[string]any{
		"display_name":        prefs.DisplayName,
		"avatar_emoji":        prefs.AvatarEmoji,
		"color_preference":    prefs.Colors,
		"theme_preference":    string(prefs.Theme),
		"language_preference": string(prefs.Language),
	}
	return c.do(ctx, http.MethodPut, "/api/preferences/"+string(prefs.UserName), body, nil)
}

// LoadProfiles fetches every flatmate's display name and avatar.
func (c *Client) LoadProfiles(ctx context.Context) (map[model.Person]model.Profile, error) {
	var profiles map[model.Person]model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// LoadActiveSwaps fetches all pending and accepted swap requests,
// newest first.
func (c *Client) LoadActiveSwaps(ctx context.Context) ([]model.SwapRequest, error) {
	var swaps []model.SwapRequest
	if err := c.do(ctx, http.MethodGet, "/api/swaps", nil, &swaps); err != nil {
		return nil, err
	}
	return swaps, nil
}

// CreateSwap opens a pending request for (weekID, areaID).
func (c *Client) CreateSwap(ctx context.Context, weekID int, areaID model.AreaID, requester model.Person) (*model.SwapRequest, error) {
	body := map[string]any{
		"week_id":         weekID,
		"area_id":         string(areaID),
		"original_person": string(requester),
	}
	var swap model.SwapRequest
	if err := c.do(ctx, http.MethodPost, "/api/swaps", body, &swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

// AcceptSwap accepts a pending request as acceptor.
func (c *Client) AcceptSwap(ctx context.Context, id string, acceptor model.Person) (*model.SwapRequest, error) {
	var swap model.SwapRequest
	err := c.do(ctx, http.MethodPost, "/api/swaps/"+id+"/accept", map[string]string{"person": string(acceptor)}, &swap)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// CancelSwap cancels a pending request as its requester.
func (c *Client) CancelSwap(ctx context.Context, id string, requester model.Person) error {
	return c.do(ctx, http.MethodPost, "/api/swaps/"+id+"/cancel", map[string]string{"person": string(requester)}, nil)
}

// VerifyPIN checks a PIN for user selection. A flatmate with no PIN
// always verifies.
func (c *Client) VerifyPIN(ctx context.Context, user model.Person, pin string) (bool, error) {
	err := c.do(ctx, http.MethodPost, "/api/preferences/"+string(user)+"/pin/verify", map[string]string{"pin": pin}, nil)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetPIN stores a PIN gating user selection.
func (c *Client) SetPIN(ctx context.Context, user model.Person, pin string) error {
	return c.do(ctx, http.MethodPost, "/api/preferences/"+string(user)+"/pin", map[string]string{"pin": pin}, nil)
}

// ClearPIN removes the PIN gate.
func (c *Client) ClearPIN(ctx context.Context, user model.Person) error {
	return c.do(ctx, http.MethodDelete, "/api/preferences/"+string(user)+"/pin", nil, nil)
}
