package knowledge

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dialectiq/dialectiq/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st), st
}

func TestSupersedeLineage(t *testing.T) {
	svc, _ := newTestService(t)

	rootID, err := svc.CreateEntry("biology", "crispr", "v1 insight", 70,
		[]int64{1}, []int64{1, 2}, []string{"biology", "debate"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	v2, err := svc.Supersede(rootID, "v2 insight", 80, nil, nil)
	if err != nil {
		t.Fatalf("supersede v1: %v", err)
	}
	v3, err := svc.Supersede(v2, "v3 insight", 90, nil, nil)
	if err != nil {
		t.Fatalf("supersede v2: %v", err)
	}

	// Lineage is the same, root first, from any member.
	for _, id := range []int64{rootID, v2, v3} {
		lineage, err := svc.GetLineage(id)
		if err != nil {
			t.Fatalf("lineage from %d: %v", id, err)
		}
		if len(lineage) != 3 {
			t.Fatalf("lineage from %d: len = %d, want 3", id, len(lineage))
		}
		wantIDs := []int64{rootID, v2, v3}
		for i, e := range lineage {
			if e.ID != wantIDs[i] {
				t.Errorf("lineage[%d].ID = %d, want %d", i, e.ID, wantIDs[i])
			}
			if e.Version != i+1 {
				t.Errorf("lineage[%d].Version = %d, want %d", i, e.Version, i+1)
			}
		}
	}

	head, err := svc.Head(rootID)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ID != v3 || head.Insight != "v3 insight" {
		t.Errorf("head = %d %q, want %d v3 insight", head.ID, head.Insight, v3)
	}

	// Domain, topic and tags carry over; sources do not.
	got, err := svc.Get(v3)
	if err != nil {
		t.Fatalf("get v3: %v", err)
	}
	if got.Domain != "biology" || got.Topic != "crispr" {
		t.Errorf("v3 domain/topic = %q/%q", got.Domain, got.Topic)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "biology" {
		t.Errorf("v3 tags = %v", got.Tags)
	}
	if len(got.Sources) != 0 {
		t.Errorf("v3 sources = %v, want empty", got.Sources)
	}
}

func TestSupersedeMissingEntry(t *testing.T) {
	svc, st := newTestService(t)

	if _, err := svc.Supersede(404, "x", 50, nil, nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("supersede missing: err = %v, want ErrNotFound", err)
	}
	// Nothing was created.
	n, err := st.CountKnowledgeInDomain("biology")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("entries created on failed supersede: %d", n)
	}
}

func TestLineageCycleDetected(t *testing.T) {
	svc, st := newTestService(t)

	// Two entries pointing at each other. Not producible through the
	// service API, only by corrupted data.
	one, two := int64(1), int64(2)
	id1, err := st.InsertKnowledge(&store.KnowledgeRecord{
		Domain: "physics", Topic: "t", Insight: "a",
		Sources: "[]", Contributors: "[]", Tags: "[]", Version: 1, Supersedes: &two,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertKnowledge(&store.KnowledgeRecord{
		Domain: "physics", Topic: "t", Insight: "b",
		Sources: "[]", Contributors: "[]", Tags: "[]", Version: 2, Supersedes: &one,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := svc.GetLineage(id1); !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("cyclic lineage err = %v, want ErrDataIntegrity", err)
	}
}

func TestTopInsightsExcludesSupersedingVersions(t *testing.T) {
	svc, _ := newTestService(t)

	rootID, err := svc.CreateEntry("chem", "catalysis", "old", 95, nil, nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Supersede(rootID, "new", 99, nil, nil); err != nil {
		t.Fatalf("supersede: %v", err)
	}
	freshID, err := svc.CreateEntry("chem", "synthesis routes", "fresh", 60, nil, nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	top, err := svc.TopInsights("chem", 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	// The v2 entry carries a supersedes pointer, so only the two roots
	// match, including the stale superseded one.
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].ID != rootID || top[1].ID != freshID {
		t.Errorf("top ids = [%d %d], want [%d %d]", top[0].ID, top[1].ID, rootID, freshID)
	}
}

func TestSearchByText(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateEntry("biology", "CRISPR applications", "gene editing is maturing", 80, nil, nil, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	hits, err := svc.SearchByText("GENE EDITING")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("len(hits) = %d, want 1", len(hits))
	}
}

func TestStatsAndDomains(t *testing.T) {
	svc, _ := newTestService(t)

	for _, d := range []string{"biology", "physics", "physics"} {
		if _, err := svc.CreateEntry(d, "t", "i", 75, nil, nil, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	stats, err := svc.StatsByDomain()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}
	domains, err := svc.Domains()
	if err != nil {
		t.Fatalf("domains: %v", err)
	}
	if len(domains) != 2 {
		t.Errorf("domains = %v", domains)
	}
}
