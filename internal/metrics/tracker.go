// Package metrics tracks per-agent daily activity counters.
package metrics

import (
	"log/slog"
	"time"

	"github.com/dialectiq/dialectiq/internal/store"
)

// Tracker increments per-(agent, day) counters. Rows are created lazily on
// the first increment of a day and updated in place afterwards. The
// read-then-write is not guarded; concurrent runs touching the same agent
// and day can race, which matches the rest of the pipeline's store access.
type Tracker struct {
	store *store.Store
	now   func() time.Time
}

// New creates a Tracker using the real clock.
func New(st *store.Store) *Tracker {
	return &Tracker{store: st, now: time.Now}
}

// NewWithClock creates a Tracker with an injected clock for tests.
func NewWithClock(st *store.Store, now func() time.Time) *Tracker {
	return &Tracker{store: st, now: now}
}

// Delta describes counter increments to apply in one call.
type Delta struct {
	DialoguesParticipated  int
	KnowledgeContributions int
	QuestionsAsked         int
	QuestionsAnswered      int
	DebatesWon             int
}

// Record applies the delta to today's row for the agent. Failures are
// logged and swallowed — metric bookkeeping never aborts a dialogue run.
func (t *Tracker) Record(agentID int64, d Delta) {
	day := t.now().Format("2006-01-02")

	m, ok, err := t.store.GetAgentMetric(agentID, day)
	if err != nil {
		slog.Warn("metrics: read failed", "agent", agentID, "day", day, "error", err)
		return
	}
	if !ok {
		m = &store.MetricRecord{AgentID: agentID, Day: day}
		applyDelta(m, d)
		if err := t.store.InsertAgentMetric(m); err != nil {
			slog.Warn("metrics: insert failed", "agent", agentID, "day", day, "error", err)
		}
		return
	}
	applyDelta(m, d)
	if err := t.store.UpdateAgentMetric(m); err != nil {
		slog.Warn("metrics: update failed", "agent", agentID, "day", day, "error", err)
	}
}

// Today returns today's counters for the agent, zeroed if absent.
func (t *Tracker) Today(agentID int64) (*store.MetricRecord, error) {
	day := t.now().Format("2006-01-02")
	m, ok, err := t.store.GetAgentMetric(agentID, day)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &store.MetricRecord{AgentID: agentID, Day: day}, nil
	}
	return m, nil
}

func applyDelta(m *store.MetricRecord, d Delta) {
	m.DialoguesParticipated += d.DialoguesParticipated
	m.KnowledgeContributions += d.KnowledgeContributions
	m.QuestionsAsked += d.QuestionsAsked
	m.QuestionsAnswered += d.QuestionsAnswered
	m.DebatesWon += d.DebatesWon
}
