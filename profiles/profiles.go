package profiles

import (
	"context"
	"time"
)

// Profile is the application-level record extending a user identity,
// one-to-one by ID. IsAdmin is the capability flag consulted by the admin
// gate.
type Profile struct {
	ID        string    `json:"id"` // Same value as the user's ID
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Repo defines the interface for profile storage operations.
type Repo interface {
	// Upsert creates or updates a profile
	Upsert(ctx context.Context, profile *Profile) error

	// GetByID retrieves a profile by user ID
	GetByID(ctx context.Context, id string) (*Profile, error)

	// List returns profiles ordered by creation time
	List(ctx context.Context, offset, limit int) ([]*Profile, error)

	// SetAdmin flips the admin capability flag
	SetAdmin(ctx context.Context, id string, isAdmin bool) error

	// Count returns the total number of profiles
	Count(ctx context.Context) (int, error)
}

// Provisioner creates a profile on first sign-in when none exists yet. An
// existing profile keeps its admin flag and display fields.
type Provisioner struct {
	repo    Repo
	nowTime func() time.Time
}

func NewProvisioner(repo Repo) *Provisioner {
	return &Provisioner{repo: repo, nowTime: time.Now}
}

func (p *Provisioner) EnsureProfile(ctx context.Context, userID, email, fullName string) error {
	if existing, err := p.repo.GetByID(ctx, userID); err == nil && existing != nil {
		return nil
	}
	now := p.nowTime()
	return p.repo.Upsert(ctx, &Profile{
		ID:        userID,
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
