package registry

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dialectiq/dialectiq/internal/store"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st)
}

func TestCreateAgentValidatesRole(t *testing.T) {
	r := newRegistry(t)

	if _, err := r.CreateAgent("a", "biology", "referee", "i"); err == nil {
		t.Error("invalid role accepted")
	}
	a, err := r.CreateAgent("a", "biology", store.RoleMirror, "i")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Role != store.RoleMirror {
		t.Errorf("role = %q", a.Role)
	}
}

func TestCreatePairedAgents(t *testing.T) {
	r := newRegistry(t)

	pair, err := r.CreatePairedAgents("biology", "adversarial")
	if err != nil {
		t.Fatalf("create paired: %v", err)
	}

	primary, err := r.GetAgent(pair.PrimaryAgentID)
	if err != nil {
		t.Fatalf("get primary: %v", err)
	}
	mirror, err := r.GetAgent(pair.MirrorAgentID)
	if err != nil {
		t.Fatalf("get mirror: %v", err)
	}

	if primary.Name != "biology-proponent" || primary.Role != store.RolePrimary {
		t.Errorf("primary = %q/%q", primary.Name, primary.Role)
	}
	if mirror.Name != "biology-challenger" || mirror.Role != store.RoleMirror {
		t.Errorf("mirror = %q/%q", mirror.Name, mirror.Role)
	}
	if !strings.Contains(primary.Instruction, "biology") {
		t.Errorf("primary instruction not domain-specific: %q", primary.Instruction)
	}
	if !strings.Contains(mirror.Instruction, "Challenge") {
		t.Errorf("mirror instruction not adversarial: %q", mirror.Instruction)
	}
}

func TestPairAgentsRequiresBoth(t *testing.T) {
	r := newRegistry(t)

	a, err := r.CreateAgent("a", "chem", store.RolePrimary, "i")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.PairAgents(a.ID, 999, "chem", ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("pairing with missing mirror: err = %v, want ErrNotFound", err)
	}

	b, err := r.CreateAgent("b", "chem", store.RoleMirror, "i")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pair, err := r.PairAgents(a.ID, b.ID, "chem", "")
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	if pair.Strategy != "adversarial" {
		t.Errorf("default strategy = %q", pair.Strategy)
	}
}

func TestSetStatusValidation(t *testing.T) {
	r := newRegistry(t)

	a, err := r.CreateAgent("a", "chem", store.RolePrimary, "i")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.SetStatus(a.ID, "retired"); err == nil {
		t.Error("invalid status accepted")
	}
	if err := r.SetStatus(a.ID, store.AgentInactive); err != nil {
		t.Errorf("valid status rejected: %v", err)
	}
}
