// Package cli implements the flatmate subcommands.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tomthias/cleanAlbere9/internal/cache"
	"github.com/tomthias/cleanAlbere9/internal/client"
	"github.com/tomthias/cleanAlbere9/internal/config"
	"github.com/tomthias/cleanAlbere9/internal/logging"
	"github.com/tomthias/cleanAlbere9/internal/model"
	flatsync "github.com/tomthias/cleanAlbere9/internal/sync"
)

// session bundles what every client command needs.
type session struct {
	cfg    *config.Config
	user   model.Person
	coord  *flatsync.Coordinator
	cache  *cache.Cache
	api    *client.Client
	logger *slog.Logger
}

// newSession loads config, resolves the current user, opens the cache
// and runs the coordinator's initial load. Commands that only read can
// pass needUser=false and still work without an identity.
func newSession(ctx context.Context, needUser bool) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFile)

	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// The cached user survives restarts; config overrides it.
	user, err := cfg.User()
	if err != nil {
		var cached model.Person
		if c.Get(cache.KeyCurrentUser, &cached) && cached.Valid() {
			user = cached
		} else if needUser {
			return nil, err
		}
	}

	api := client.New(cfg.ServerURL)
	coord := flatsync.New(api, c, user, logger)
	if err := coord.Load(ctx); err != nil {
		// Cached state keeps read commands useful offline; mutations
		// will surface their own errors.
		fmt.Println("warning: backend unreachable, showing cached state")
	}

	return &session{cfg: cfg, user: user, coord: coord, cache: c, api: api, logger: logger}, nil
}
