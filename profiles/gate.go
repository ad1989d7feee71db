package profiles

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/harubang/fengshui-site/auth"
)

// SessionSource supplies the current session for the request at hand.
// CurrentSession returns (nil, nil) when no session exists.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*auth.Session, error)
}

// Gate decides whether a user may view privileged management views. It reads
// the admin flag fresh on every evaluation - no caching - so revocation takes
// effect on the next check. The gate is one layer of enforcement; route-level
// session checks in the server middleware are the other.
type Gate struct {
	sessions SessionSource
	repo     Repo
}

func NewGate(sessions SessionSource, repo Repo) *Gate {
	return &Gate{sessions: sessions, repo: repo}
}

// IsAdmin reports whether userID currently holds the admin capability.
// Any failure along the way - no session, query error, missing row, absent
// flag - answers false.
func (g *Gate) IsAdmin(ctx context.Context, userID string) bool {
	session, err := g.sessions.CurrentSession(ctx)
	if err != nil || session == nil {
		return false
	}

	profile, err := g.repo.GetByID(ctx, userID)
	if err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Admin gate: profile lookup failed")
		return false
	}
	if profile == nil {
		return false
	}
	return profile.IsAdmin
}
