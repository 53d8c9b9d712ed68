package dialogue

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dialectiq/dialectiq/internal/gateway"
	"github.com/dialectiq/dialectiq/internal/knowledge"
	"github.com/dialectiq/dialectiq/internal/metrics"
	"github.com/dialectiq/dialectiq/internal/registry"
	"github.com/dialectiq/dialectiq/internal/store"
)

// scriptedGateway counts calls and replies deterministically. failAt, when
// non-zero, makes that call (1-based) and all later calls fail.
type scriptedGateway struct {
	calls  int
	failAt int
}

func (g *scriptedGateway) Invoke(ctx context.Context, messages []gateway.Message) (*gateway.Reply, error) {
	g.calls++
	if g.failAt != 0 && g.calls >= g.failAt {
		return nil, gateway.WrapErr(errors.New("model unavailable"))
	}
	return &gateway.Reply{Content: fmt.Sprintf("reply %d", g.calls)}, nil
}

func (g *scriptedGateway) DefaultModel() string { return "test-model" }

type fixture struct {
	store     *store.Store
	knowledge *knowledge.Service
	engine    *Engine
	gateway   *scriptedGateway
	pair      *store.PairRecord
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := registry.New(st)
	pair, err := reg.CreatePairedAgents("biology", "adversarial")
	if err != nil {
		t.Fatalf("create pair: %v", err)
	}

	gw := &scriptedGateway{}
	ks := knowledge.NewService(st)
	return &fixture{
		store:     st,
		knowledge: ks,
		engine:    NewEngine(st, gw, ks, metrics.New(st)),
		gateway:   gw,
		pair:      pair,
	}
}

func TestRunDebateMessageShape(t *testing.T) {
	f := newFixture(t)

	rounds := 2
	result, err := f.engine.RunDebate(context.Background(), f.pair.ID, "CRISPR ethics", rounds)
	if err != nil {
		t.Fatalf("debate: %v", err)
	}

	// Opening thesis, two antithesis/rebuttal rounds, closing synthesis.
	wantMessages := 2*rounds + 2
	if len(result.Messages) != wantMessages {
		t.Fatalf("len(messages) = %d, want %d", len(result.Messages), wantMessages)
	}
	wantTags := []string{
		store.TagThesis,
		store.TagAntithesis, store.TagThesis,
		store.TagAntithesis, store.TagThesis,
		store.TagSynthesis,
	}
	for i, m := range result.Messages {
		if m.Tag != wantTags[i] {
			t.Errorf("messages[%d].Tag = %q, want %q", i, m.Tag, wantTags[i])
		}
	}

	if result.Dialogue.Status != store.DialogueCompleted {
		t.Errorf("dialogue status = %q, want completed", result.Dialogue.Status)
	}
	if result.Dialogue.TraceID == "" {
		t.Error("trace id empty")
	}
	// The synthesis message is recorded under the primary agent.
	last := result.Messages[len(result.Messages)-1]
	if last.AgentID != f.pair.PrimaryAgentID {
		t.Errorf("synthesis agent = %d, want primary %d", last.AgentID, f.pair.PrimaryAgentID)
	}
}

func TestRunDebateKnowledgeEntry(t *testing.T) {
	f := newFixture(t)

	result, err := f.engine.RunDebate(context.Background(), f.pair.ID, "CRISPR ethics", 1)
	if err != nil {
		t.Fatalf("debate: %v", err)
	}

	entry, err := f.knowledge.Get(result.KnowledgeID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.Domain != "biology" {
		t.Errorf("domain = %q, want biology", entry.Domain)
	}
	if entry.Confidence != 85 {
		t.Errorf("confidence = %v, want 85", entry.Confidence)
	}
	if entry.Version != 1 || entry.Supersedes != nil {
		t.Errorf("entry is not a lineage root: version=%d supersedes=%v", entry.Version, entry.Supersedes)
	}
	wantTags := []string{"biology", "debate", "synthesis"}
	if len(entry.Tags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", entry.Tags, wantTags)
	}
	for i := range wantTags {
		if entry.Tags[i] != wantTags[i] {
			t.Errorf("tags[%d] = %q, want %q", i, entry.Tags[i], wantTags[i])
		}
	}
	if len(entry.Sources) != 1 || entry.Sources[0] != result.Dialogue.ID {
		t.Errorf("sources = %v, want [%d]", entry.Sources, result.Dialogue.ID)
	}
	if len(entry.Contributors) != 2 {
		t.Errorf("contributors = %v, want both agents", entry.Contributors)
	}

	// The synthesis content is what was stored as the insight.
	last := result.Messages[len(result.Messages)-1]
	if entry.Insight != last.Content {
		t.Errorf("insight = %q, want synthesis %q", entry.Insight, last.Content)
	}
}

func TestRunDebateGatewayFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.gateway.failAt = 3 // fail on the first rebuttal

	_, err := f.engine.RunDebate(context.Background(), f.pair.ID, "CRISPR ethics", 2)
	if err == nil {
		t.Fatal("debate succeeded despite gateway failure")
	}
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		t.Errorf("err = %v, want gateway.Error", err)
	}

	// The dialogue is left uncompleted and no knowledge entry was created.
	dlg, err := f.store.GetDialogue(1)
	if err != nil {
		t.Fatalf("get dialogue: %v", err)
	}
	if dlg.Status != store.DialogueActive || dlg.CompletedAt != nil {
		t.Errorf("aborted dialogue: status=%q completed_at=%v", dlg.Status, dlg.CompletedAt)
	}
	n, err := f.store.CountKnowledgeInDomain("biology")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("knowledge entries after abort = %d, want 0", n)
	}

	// Messages up to the failure point are retained.
	msgs, err := f.store.ListMessages(dlg.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("len(messages) = %d, want 2", len(msgs))
	}
}

func TestRunDebateMetrics(t *testing.T) {
	f := newFixture(t)
	tracker := metrics.New(f.store)

	if _, err := f.engine.RunDebate(context.Background(), f.pair.ID, "topic", 1); err != nil {
		t.Fatalf("debate: %v", err)
	}

	for _, id := range []int64{f.pair.PrimaryAgentID, f.pair.MirrorAgentID} {
		m, err := tracker.Today(id)
		if err != nil {
			t.Fatalf("today(%d): %v", id, err)
		}
		if m.DialoguesParticipated != 1 || m.KnowledgeContributions != 1 {
			t.Errorf("agent %d metrics = %+v", id, m)
		}
	}
}

func TestRunResearch(t *testing.T) {
	f := newFixture(t)
	tracker := metrics.New(f.store)

	result, err := f.engine.RunResearch(context.Background(), f.pair.ID, "what limits enzyme stability")
	if err != nil {
		t.Fatalf("research: %v", err)
	}

	wantTags := []string{store.TagQuestion, store.TagAnswer, store.TagObservation}
	if len(result.Messages) != len(wantTags) {
		t.Fatalf("len(messages) = %d, want %d", len(result.Messages), len(wantTags))
	}
	for i, m := range result.Messages {
		if m.Tag != wantTags[i] {
			t.Errorf("messages[%d].Tag = %q, want %q", i, m.Tag, wantTags[i])
		}
	}
	if result.Dialogue.Kind != store.KindResearch {
		t.Errorf("kind = %q, want research", result.Dialogue.Kind)
	}

	entry, err := f.knowledge.Get(result.KnowledgeID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.Confidence != 80 {
		t.Errorf("confidence = %v, want 80", entry.Confidence)
	}
	if len(entry.Tags) != 3 || entry.Tags[1] != "research" {
		t.Errorf("tags = %v", entry.Tags)
	}

	primary, _ := tracker.Today(f.pair.PrimaryAgentID)
	mirror, _ := tracker.Today(f.pair.MirrorAgentID)
	if primary.QuestionsAsked != 1 || primary.QuestionsAnswered != 0 {
		t.Errorf("primary metrics = %+v", primary)
	}
	if mirror.QuestionsAnswered != 1 || mirror.QuestionsAsked != 0 {
		t.Errorf("mirror metrics = %+v", mirror)
	}
}

func TestRunDebateUnknownPair(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RunDebate(context.Background(), 999, "topic", 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if f.gateway.calls != 0 {
		t.Errorf("gateway called %d times for unknown pair", f.gateway.calls)
	}
}
