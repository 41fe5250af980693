// Package sync coordinates local state with the flatmate backend. It
// keeps an in-memory copy of progress, preferences and swaps, applies
// mutations optimistically, and falls back to the file cache when the
// backend is unreachable.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tomthias/cleanAlbere9/internal/cache"
	"github.com/tomthias/cleanAlbere9/internal/model"
	"github.com/tomthias/cleanAlbere9/internal/rotation"
)

// prefPushDelay is how long a preference edit waits for further edits
// before it is pushed.
const prefPushDelay = time.Second

// Remote is the backend surface the coordinator depends on.
type Remote interface {
	LoadProgress(ctx context.Context) ([]model.CompletionRecord, error)
	SetProgress(ctx context.Context, weekID int, areaID model.AreaID, completed bool, by model.Person) error
	LoadPreferences(ctx context.Context, user model.Person) (*model.Preferences, error)
	SavePreferences(ctx context.Context, prefs model.Preferences) error
	LoadProfiles(ctx context.Context) (map[model.Person]model.Profile, error)
	LoadActiveSwaps(ctx context.Context) ([]model.SwapRequest, error)
	CreateSwap(ctx context.Context, weekID int, areaID model.AreaID, requester model.Person) (*model.SwapRequest, error)
	AcceptSwap(ctx context.Context, id string, acceptor model.Person) (*model.SwapRequest, error)
	CancelSwap(ctx context.Context, id string, requester model.Person) error
}

// pushState gates preference pushes. Edits made before the initial
// load finishes are never pushed, so a slow load cannot clobber the
// remote row with half-applied defaults.
type pushState int

const (
	pushIdle pushState = iota
	pushLoading
	pushReady
)

// Coordinator owns the client-side state for one flatmate.
type Coordinator struct {
	remote Remote
	cache  *cache.Cache
	user   model.Person
	logger *slog.Logger

	mu         sync.Mutex
	progress   model.ProgressMap
	prefs      model.Preferences
	swaps      []model.SwapRequest
	profiles   map[model.Person]model.Profile
	state      pushState
	prefDirty  bool
	prefTimer  *time.Timer
	online     bool
	syncing    int
	lastSynced time.Time

	keysMu sync.Mutex
	keys   map[string]*sync.Mutex
}

// New creates a Coordinator for user. Call Load before mutating.
func New(remote Remote, c *cache.Cache, user model.Person, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		remote:   remote,
		cache:    c,
		user:     user,
		logger:   logger,
		progress: model.ProgressMap{},
		prefs:    model.DefaultPreferences(user),
		keys:     make(map[string]*sync.Mutex),
	}
}

// keyLock serializes writes per (week, area) so two rapid toggles on
// the same cell cannot interleave their remote calls.
func (c *Coordinator) keyLock(weekID int, areaID model.AreaID) *sync.Mutex {
	key := fmt.Sprintf("%d/%s", weekID, areaID)
	c.keysMu.Lock()
	defer c.keysMu.Unlock()
	m, ok := c.keys[key]
	if !ok {
		m = &sync.Mutex{}
		c.keys[key] = m
	}
	return m
}

// Load performs the startup sequence: progress, then the user's
// preferences, then active swaps, then profiles. Each stage falls back
// to the cache on failure; a successful remote read always wins over
// whatever the cache holds.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = pushLoading
	c.mu.Unlock()

	var firstErr error

	if recs, err := c.remote.LoadProgress(ctx); err != nil {
		firstErr = err
		c.logger.Warn("progress load failed, using cache", "error", err)
		var cached model.ProgressMap
		if c.cache.Get(cache.KeyProgress, &cached) && cached != nil {
			c.setProgress(cached, false)
		}
	} else {
		progress := model.ProgressMap{}
		for _, rec := range recs {
			progress.Set(rec.WeekID, rec.AreaID, true)
		}
		c.setProgress(progress, true)
	}

	if prefs, err := c.remote.LoadPreferences(ctx, c.user); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		c.logger.Warn("preferences load failed, using cache", "error", err)
		c.loadPrefsFromCache()
	} else if prefs != nil {
		c.mu.Lock()
		c.prefs = *prefs
		c.mu.Unlock()
		c.cachePrefs()
	}

	if swaps, err := c.remote.LoadActiveSwaps(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		c.logger.Warn("swaps load failed", "error", err)
	} else {
		c.mu.Lock()
		c.swaps = swaps
		c.mu.Unlock()
	}

	if profiles, err := c.remote.LoadProfiles(ctx); err != nil {
		c.logger.Warn("profiles load failed", "error", err)
	} else {
		c.mu.Lock()
		c.profiles = profiles
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.state = pushReady
	c.online = firstErr == nil
	if firstErr == nil {
		c.lastSynced = time.Now()
	}
	dirty := c.prefDirty
	c.mu.Unlock()
	// Edits made while loading were held back; push them now.
	if dirty {
		c.schedulePrefPush()
	}
	return firstErr
}

func (c *Coordinator) setProgress(p model.ProgressMap, fromRemote bool) {
	c.mu.Lock()
	c.progress = p
	c.mu.Unlock()
	if fromRemote {
		c.cache.Set(cache.KeyProgress, p)
	}
}

func (c *Coordinator) loadPrefsFromCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var theme model.Theme
	if c.cache.Get(cache.KeyTheme, &theme) {
		c.prefs.Theme = theme
	}
	var colors map[model.Person]string
	if c.cache.Get(cache.KeyColors, &colors) && colors != nil {
		c.prefs.Colors = colors
	}
}

func (c *Coordinator) cachePrefs() {
	c.mu.Lock()
	theme := c.prefs.Theme
	colors := c.prefs.Colors
	c.mu.Unlock()
	c.cache.Set(cache.KeyTheme, theme)
	c.cache.Set(cache.KeyColors, colors)
}

// Toggle flips the completion state of one (week, area) and pushes it.
// The flip is applied locally first; if the push fails the previous
// state is restored in full and the error returned.
func (c *Coordinator) Toggle(ctx context.Context, weekID int, areaID model.AreaID) error {
	// Without an identified user the toggle is a quiet no-op.
	if !c.user.Valid() {
		return nil
	}
	lock := c.keyLock(weekID, areaID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	snapshot := c.progress.Clone()
	completed := !c.progress.Completed(weekID, areaID)
	c.progress.Set(weekID, areaID, completed)
	current := c.progress.Clone()
	c.syncing++
	c.mu.Unlock()
	c.cache.Set(cache.KeyProgress, current)

	if err := c.remote.SetProgress(ctx, weekID, areaID, completed, c.user); err != nil {
		c.mu.Lock()
		c.progress = snapshot
		c.online = false
		c.syncing--
		c.mu.Unlock()
		c.cache.Set(cache.KeyProgress, snapshot)
		return fmt.Errorf("toggle week %d %s: %w", weekID, areaID, err)
	}

	c.mu.Lock()
	c.online = true
	c.syncing--
	c.lastSynced = time.Now()
	c.mu.Unlock()
	return nil
}

// Syncing reports whether any write is in flight.
func (c *Coordinator) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing > 0
}

// SetTheme records a theme change and schedules a push.
func (c *Coordinator) SetTheme(theme model.Theme) {
	c.mu.Lock()
	c.prefs.Theme = theme
	c.mu.Unlock()
	c.cache.Set(cache.KeyTheme, theme)
	c.schedulePrefPush()
}

// SetColor records a color change for one flatmate and schedules a
// push.
func (c *Coordinator) SetColor(person model.Person, color string) {
	c.mu.Lock()
	if c.prefs.Colors == nil {
		c.prefs.Colors = model.DefaultColors()
	}
	c.prefs.Colors[person] = color
	colors := c.prefs.Colors
	c.mu.Unlock()
	c.cache.Set(cache.KeyColors, colors)
	c.schedulePrefPush()
}

// SetLanguage records a language change and schedules a push.
func (c *Coordinator) SetLanguage(lang model.Language) {
	c.mu.Lock()
	c.prefs.Language = lang
	c.mu.Unlock()
	c.schedulePrefPush()
}

// SetDisplayName records a display name change and schedules a push.
func (c *Coordinator) SetDisplayName(name, emoji string) {
	c.mu.Lock()
	c.prefs.DisplayName = name
	if emoji != "" {
		c.prefs.AvatarEmoji = emoji
	}
	c.mu.Unlock()
	c.schedulePrefPush()
}

// schedulePrefPush arms the debounce timer. Edits within the window
// collapse into one push. Nothing is pushed until the initial load has
// finished.
func (c *Coordinator) schedulePrefPush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefDirty = true
	if c.state != pushReady {
		return
	}
	if c.prefTimer != nil {
		c.prefTimer.Stop()
	}
	c.prefTimer = time.AfterFunc(prefPushDelay, c.flushPreferences)
}

func (c *Coordinator) flushPreferences() {
	c.mu.Lock()
	if !c.prefDirty || c.state != pushReady {
		c.mu.Unlock()
		return
	}
	c.prefDirty = false
	prefs := c.prefs
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.remote.SavePreferences(ctx, prefs); err != nil {
		c.logger.Warn("preference push failed", "error", err)
		c.mu.Lock()
		c.prefDirty = true
		c.online = false
		c.mu.Unlock()
		return
	}
	c.mu.Lock()
	c.online = true
	c.lastSynced = time.Now()
	c.mu.Unlock()
}

// FlushPreferences pushes any pending preference edits immediately.
// Used on shutdown so the debounce window does not swallow the last
// edit.
func (c *Coordinator) FlushPreferences() {
	c.mu.Lock()
	if c.prefTimer != nil {
		c.prefTimer.Stop()
		c.prefTimer = nil
	}
	c.mu.Unlock()
	c.flushPreferences()
}

// RequestSwap opens a swap for (weekID, areaID) and refreshes the
// local swap list.
func (c *Coordinator) RequestSwap(ctx context.Context, weekID int, areaID model.AreaID) (*model.SwapRequest, error) {
	swap, err := c.remote.CreateSwap(ctx, weekID, areaID, c.user)
	if err != nil {
		return nil, err
	}
	c.ReloadSwaps(ctx)
	return swap, nil
}

// AcceptSwap accepts a pending swap and refreshes the local swap list.
func (c *Coordinator) AcceptSwap(ctx context.Context, id string) (*model.SwapRequest, error) {
	swap, err := c.remote.AcceptSwap(ctx, id, c.user)
	if err != nil {
		return nil, err
	}
	c.ReloadSwaps(ctx)
	return swap, nil
}

// CancelSwap cancels a pending swap and refreshes the local swap list.
func (c *Coordinator) CancelSwap(ctx context.Context, id string) error {
	if err := c.remote.CancelSwap(ctx, id, c.user); err != nil {
		return err
	}
	c.ReloadSwaps(ctx)
	return nil
}

// ReloadProgress re-reads all completion records. Change notifications
// carry no payload, so the full set is fetched again.
func (c *Coordinator) ReloadProgress(ctx context.Context) {
	recs, err := c.remote.LoadProgress(ctx)
	if err != nil {
		c.logger.Warn("progress reload failed", "error", err)
		c.mu.Lock()
		c.online = false
		c.mu.Unlock()
		return
	}
	progress := model.ProgressMap{}
	for _, rec := range recs {
		progress.Set(rec.WeekID, rec.AreaID, true)
	}
	c.setProgress(progress, true)
	c.mu.Lock()
	c.online = true
	c.lastSynced = time.Now()
	c.mu.Unlock()
}

// ReloadSwaps re-reads the active swap list.
func (c *Coordinator) ReloadSwaps(ctx context.Context) {
	swaps, err := c.remote.LoadActiveSwaps(ctx)
	if err != nil {
		c.logger.Warn("swaps reload failed", "error", err)
		return
	}
	c.mu.Lock()
	c.swaps = swaps
	c.mu.Unlock()
}

// ReloadPreferences re-reads the user's preferences and the profile
// list. Local edits still waiting in the debounce window are kept.
func (c *Coordinator) ReloadPreferences(ctx context.Context) {
	c.mu.Lock()
	dirty := c.prefDirty
	c.mu.Unlock()
	if dirty {
		return
	}
	prefs, err := c.remote.LoadPreferences(ctx, c.user)
	if err != nil {
		c.logger.Warn("preferences reload failed", "error", err)
		return
	}
	if prefs != nil {
		c.mu.Lock()
		c.prefs = *prefs
		c.mu.Unlock()
		c.cachePrefs()
	}
	if profiles, err := c.remote.LoadProfiles(ctx); err == nil {
		c.mu.Lock()
		c.profiles = profiles
		c.mu.Unlock()
	}
}

// EffectiveWeeks returns the rotation calendar with accepted swaps
// applied.
func (c *Coordinator) EffectiveWeeks() []rotation.Week {
	c.mu.Lock()
	swaps := c.swaps
	c.mu.Unlock()
	return rotation.ApplyActiveSwaps(rotation.Weeks(), swaps)
}

// Progress returns a copy of the completion state.
func (c *Coordinator) Progress() model.ProgressMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Clone()
}

// Preferences returns the user's current preferences.
func (c *Coordinator) Preferences() model.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Swaps returns the active swap list, newest first.
func (c *Coordinator) Swaps() []model.SwapRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.SwapRequest, len(c.swaps))
	copy(out, c.swaps)
	return out
}

// Profiles returns every flatmate's display name and avatar.
func (c *Coordinator) Profiles() map[model.Person]model.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[model.Person]model.Profile, len(c.profiles))
	for k, v := range c.profiles {
		out[k] = v
	}
	return out
}

// Online reports whether the last remote call succeeded.
func (c *Coordinator) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// LastSynced reports when the last successful remote call finished.
func (c *Coordinator) LastSynced() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSynced
}
