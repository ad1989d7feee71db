package backend

import (
	"fmt"

	"github.com/harubang/fengshui-site/auth"
	"github.com/harubang/fengshui-site/internal/config"
	"github.com/harubang/fengshui-site/internal/storage/sqlite"
	"github.com/harubang/fengshui-site/profiles"
)

// newClient is the production constructor: a SQLite-backed store, the token
// creator keyed by the deployment secret, and the auth service publishing on
// a fresh broadcaster.
func newClient(cfg config.Config) (*Client, error) {
	store, err := sqlite.Open(cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tokens, err := auth.NewTokenCreator(cfg.GetSessionSecret(), cfg.GetServiceURL(), cfg.GetAccessTokenExpiry())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("token creator: %w", err)
	}

	events := auth.NewBroadcaster()
	service, err := auth.NewService(
		auth.Repos{Users: store.Users(), Sessions: store.Sessions()},
		tokens,
		events,
		auth.WithProfileProvisioner(profiles.NewProvisioner(store.Profiles())),
		auth.WithRefreshExpiry(cfg.GetRefreshTokenExpiry()),
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("auth service: %w", err)
	}

	return &Client{
		Auth:      service,
		Events:    events,
		Profiles:  store.Profiles(),
		Posts:     store.Posts(),
		Notices:   store.Notices(),
		Questions: store.Questions(),
		Reviews:   store.Reviews(),
		closer:    store,
	}, nil
}
