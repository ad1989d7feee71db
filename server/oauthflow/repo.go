package oauthflow

import "time"

// FlowState holds the per-flow secrets created when a social sign-in is
// started. It is looked up by the opaque state parameter on callback and
// deleted after a single use.
type FlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flow *FlowState) error
	Get(state string) (*FlowState, error)
	Delete(state string) error
}
