// Package registry manages agent records and primary/mirror pairings.
package registry

import (
	"fmt"

	"github.com/dialectiq/dialectiq/internal/store"
)

// Registry creates and mutates agents and pairs. Agents are never deleted
// in normal operation; lifecycle toggles and instruction replacement are
// the only mutations.
type Registry struct {
	store *store.Store
}

// New creates a Registry.
func New(st *store.Store) *Registry {
	return &Registry{store: st}
}

// CreateAgent registers a new agent in a domain with the given role.
func (r *Registry) CreateAgent(name, domain, role, instruction string) (*store.AgentRecord, error) {
	if role != store.RolePrimary && role != store.RoleMirror {
		return nil, fmt.Errorf("invalid agent role %q", role)
	}
	return r.store.CreateAgent(name, domain, role, instruction)
}

// CreatePairedAgents creates a primary/mirror pair for a domain in one call,
// instantiating both agent records and the pairing.
func (r *Registry) CreatePairedAgents(domain, strategy string) (*store.PairRecord, error) {
	primary, err := r.store.CreateAgent(domain+"-proponent", domain, store.RolePrimary, defaultPrimaryInstruction(domain))
	if err != nil {
		return nil, err
	}
	mirror, err := r.store.CreateAgent(domain+"-challenger", domain, store.RoleMirror, defaultMirrorInstruction(domain))
	if err != nil {
		return nil, err
	}
	return r.store.CreatePair(primary.ID, mirror.ID, domain, strategy)
}

// PairAgents pairs two existing agents. Both must resolve; the pair is
// immutable once created.
func (r *Registry) PairAgents(primaryID, mirrorID int64, domain, strategy string) (*store.PairRecord, error) {
	if _, err := r.store.GetAgent(primaryID); err != nil {
		return nil, fmt.Errorf("primary agent %d: %w", primaryID, err)
	}
	if _, err := r.store.GetAgent(mirrorID); err != nil {
		return nil, fmt.Errorf("mirror agent %d: %w", mirrorID, err)
	}
	return r.store.CreatePair(primaryID, mirrorID, domain, strategy)
}

// GetAgent returns an agent by id.
func (r *Registry) GetAgent(id int64) (*store.AgentRecord, error) {
	return r.store.GetAgent(id)
}

// GetPair returns a pair by id.
func (r *Registry) GetPair(id int64) (*store.PairRecord, error) {
	return r.store.GetPair(id)
}

// ListAgents returns agents, optionally filtered by domain.
func (r *Registry) ListAgents(domain string) ([]*store.AgentRecord, error) {
	return r.store.ListAgents(domain)
}

// ListPairs returns pairs, optionally filtered by domain.
func (r *Registry) ListPairs(domain string) ([]*store.PairRecord, error) {
	return r.store.ListPairs(domain)
}

// SetStatus toggles the agent lifecycle status.
func (r *Registry) SetStatus(id int64, status string) error {
	switch status {
	case store.AgentActive, store.AgentInactive, store.AgentTraining:
	default:
		return fmt.Errorf("invalid agent status %q", status)
	}
	return r.store.UpdateAgentStatus(id, status)
}

// ReplaceInstruction swaps the agent's system instruction. Used by the
// training subsystem after a retraining pass.
func (r *Registry) ReplaceInstruction(id int64, instruction string) error {
	return r.store.UpdateAgentInstruction(id, instruction)
}

func defaultPrimaryInstruction(domain string) string {
	return fmt.Sprintf("You are a %s domain expert. Propose well-argued positions, "+
		"defend them with evidence, and refine them under challenge.", domain)
}

func defaultMirrorInstruction(domain string) string {
	return fmt.Sprintf("You are a critical %s domain expert. Challenge every claim "+
		"put to you, find weaknesses, and argue the strongest counter-position.", domain)
}
