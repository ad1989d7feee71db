package oauthflow

import (
	"errors"
	"sync"
	"time"
)

// maxFlowAge bounds how long a started sign-in flow stays redeemable.
const maxFlowAge = 10 * time.Minute

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu    sync.RWMutex
	flows map[string]*FlowState
}

// NewInMemoryRepo creates a new in-memory sign-in flow repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		flows: make(map[string]*FlowState),
	}
}

// Upsert stores or updates a sign-in flow state
func (r *InMemoryRepo) Upsert(state string, flow *FlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flow == nil {
		return errors.New("flow cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Create a copy to prevent external modifications
	r.flows[state] = &FlowState{
		CodeVerifier: flow.CodeVerifier,
		Nonce:        flow.Nonce,
		ReturnURL:    flow.ReturnURL,
		CreatedAt:    flow.CreatedAt,
	}

	return nil
}

// Get retrieves a sign-in flow state by state parameter. Flows older than
// maxFlowAge are treated as missing.
func (r *InMemoryRepo) Get(state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, exists := r.flows[state]
	if !exists {
		return nil, errors.New("state not found")
	}
	if time.Since(flow.CreatedAt) > maxFlowAge {
		return nil, errors.New("state expired")
	}

	// Return a copy to prevent external modifications
	return &FlowState{
		CodeVerifier: flow.CodeVerifier,
		Nonce:        flow.Nonce,
		ReturnURL:    flow.ReturnURL,
		CreatedAt:    flow.CreatedAt,
	}, nil
}

// Delete removes a sign-in flow state
func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.flows, state)
	return nil
}
