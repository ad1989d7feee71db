package backend

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/harubang/fengshui-site/internal/config"
	apperrors "github.com/harubang/fengshui-site/internal/errors"
)

// State tracks the factory's lifecycle as a single tagged value rather than
// separate flags, so callers can never observe an inconsistent combination.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Constructor builds the client handle. Swappable for tests.
type Constructor func(cfg config.Config) (*Client, error)

// Factory lazily constructs and memoizes the process-wide client handle.
//
// Contract:
//   - Once ready, Get always returns the identity-same handle; construction
//     runs at most once.
//   - While construction is in flight, concurrent callers get nil instead of
//     blocking; they are expected to retry.
//   - Missing configuration and construction failure are both terminal: Get
//     returns nil for the process lifetime unless Reset is called. This is
//     acceptable because configuration is static for a process's lifetime.
type Factory struct {
	cfg       config.Config
	construct Constructor

	mu     sync.Mutex
	state  State
	client *Client
	err    error
}

// FactoryOption defines a function type to modify the Factory instance.
type FactoryOption func(*Factory)

// WithConstructor overrides how the handle is built (primarily for testing).
func WithConstructor(construct Constructor) FactoryOption {
	return func(f *Factory) {
		f.construct = construct
	}
}

func NewFactory(cfg config.Config, options ...FactoryOption) *Factory {
	f := &Factory{
		cfg:       cfg,
		construct: newClient,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Get returns the client handle, or nil when none is available: construction
// in flight, configuration missing, or a prior attempt failed.
func (f *Factory) Get() *Client {
	f.mu.Lock()

	switch f.state {
	case StateReady:
		f.mu.Unlock()
		return f.client
	case StateInitializing:
		f.mu.Unlock()
		log.Debug().Msg("Backend client requested while construction in flight")
		return nil
	case StateFailed:
		f.mu.Unlock()
		return nil
	}

	// First caller: validate configuration before attempting construction.
	if f.cfg.GetServiceURL() == "" || f.cfg.GetAnonKey() == "" {
		f.state = StateFailed
		f.err = apperrors.ErrConfiguration
		f.mu.Unlock()
		log.Error().Msg("Backend client unavailable: service URL or anon key not configured")
		return nil
	}

	f.state = StateInitializing
	f.mu.Unlock()

	client, err := f.build()

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.err = apperrors.Wrapf(apperrors.ErrConstruction, "%s", err)
		log.Error().Err(err).Msg("Backend client construction failed")
		return nil
	}
	f.state = StateReady
	f.client = client
	log.Info().Msg("Backend client ready")
	return f.client
}

// build runs the constructor, converting a panic into an error so a broken
// constructor degrades into the same terminal failure path.
func (f *Factory) build() (client *Client, err error) {
	defer func() {
		if r := recover(); r != nil {
			client = nil
			err = fmt.Errorf("constructor panic: %v", r)
		}
	}()
	return f.construct(f.cfg)
}

// Err returns the cached terminal error, if any.
func (f *Factory) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// State returns the current lifecycle state.
func (f *Factory) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset clears a failed state so the next Get attempts construction again.
// This is the only path out of StateFailed.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateFailed {
		f.state = StateUninitialized
		f.err = nil
	}
}

// Close releases the constructed client, if any.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
